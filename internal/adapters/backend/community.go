package backend

import (
	"context"
	"encoding/json"

	"github.com/alejandrodnm/xtrader/internal/domain"
)

const (
	tradersPath     = "/copy-trading/traders"
	strategiesPath  = "/marketplace/strategies"
	leaderboardPath = "/community/leaderboard"
)

// FetchTopTraders devuelve los traders destacados de copy-trading.
func (c *Client) FetchTopTraders(ctx context.Context) ([]domain.Trader, error) {
	var raw []traderDTO
	if err := c.getList(ctx, "FetchTopTraders", tradersPath, "traders", &raw); err != nil {
		return nil, err
	}
	out := make([]domain.Trader, 0, len(raw))
	for _, t := range raw {
		out = append(out, mapTrader(t))
	}
	return out, nil
}

// FetchStrategies devuelve las estrategias del marketplace.
func (c *Client) FetchStrategies(ctx context.Context) ([]domain.Strategy, error) {
	var raw []strategyDTO
	if err := c.getList(ctx, "FetchStrategies", strategiesPath, "strategies", &raw); err != nil {
		return nil, err
	}
	out := make([]domain.Strategy, 0, len(raw))
	for _, s := range raw {
		out = append(out, mapStrategy(s))
	}
	return out, nil
}

// FetchLeaderboard devuelve el ranking de la comunidad.
func (c *Client) FetchLeaderboard(ctx context.Context) ([]domain.LeaderboardRow, error) {
	var raw []leaderboardDTO
	if err := c.getList(ctx, "FetchLeaderboard", leaderboardPath, "leaderboard", &raw); err != nil {
		return nil, err
	}
	out := make([]domain.LeaderboardRow, 0, len(raw))
	for i, r := range raw {
		out = append(out, mapLeaderboardRow(r, i))
	}
	return out, nil
}

// getList hace el GET y desenvuelve la lista bajo key si hace falta.
func (c *Client) getList(ctx context.Context, op, path, key string, out any) error {
	var raw json.RawMessage
	if err := c.get(ctx, op, path, &raw); err != nil {
		return err
	}
	if err := unwrapList(raw, key, out); err != nil {
		return c.fail(op, "GET", path, 200, err)
	}
	return nil
}
