package backend

import (
	"context"
	"net/url"

	"github.com/alejandrodnm/xtrader/internal/domain"
)

const createBotPath = "/bot/create"

// CreateBot crea un bot parado a partir de un template.
func (c *Client) CreateBot(ctx context.Context, userID string, tpl domain.BotTemplate, cfg domain.BotConfig) (domain.Bot, error) {
	body := createBotRequest{
		UserID:   userID,
		Name:     tpl.Name,
		Strategy: botStrategyDTO{Type: tpl.ID},
		Config: botConfigDTO{
			MaxTrades:  cfg.MaxTrades,
			StopLoss:   cfg.StopLoss.InexactFloat64(),
			TakeProfit: cfg.TakeProfit.InexactFloat64(),
			Stake:      cfg.Stake.InexactFloat64(),
		},
	}
	var resp createBotResponse
	if err := c.post(ctx, "CreateBot", createBotPath, body, &resp); err != nil {
		return domain.Bot{}, err
	}
	if !resp.Success || resp.Bot.BotID == "" {
		return domain.Bot{}, c.fail("CreateBot", "POST", createBotPath, 200, domain.ErrRejected)
	}
	return mapBot(resp.Bot, tpl.ID), nil
}

// StartBot arranca el loop del bot en el backend.
func (c *Client) StartBot(ctx context.Context, botID string) error {
	return c.botCommand(ctx, "StartBot", botID, "start")
}

// StopBot para el bot.
func (c *Client) StopBot(ctx context.Context, botID string) error {
	return c.botCommand(ctx, "StopBot", botID, "stop")
}

func (c *Client) botCommand(ctx context.Context, op, botID, cmd string) error {
	path := "/bot/" + url.PathEscape(botID) + "/" + cmd
	var resp successResponse
	if err := c.post(ctx, op, path, struct{}{}, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return c.fail(op, "POST", path, 200, domain.ErrRejected)
	}
	return nil
}

// FetchBotStats devuelve estado y estadísticas del bot.
func (c *Client) FetchBotStats(ctx context.Context, botID string) (domain.Bot, error) {
	var resp botDTO
	if err := c.get(ctx, "FetchBotStats", "/bot/"+url.PathEscape(botID)+"/stats", &resp); err != nil {
		return domain.Bot{}, err
	}
	if resp.BotID == "" {
		resp.BotID = botID
	}
	return mapBot(resp, ""), nil
}

// FetchBotLogs devuelve las últimas entradas del log del bot.
func (c *Client) FetchBotLogs(ctx context.Context, botID string) ([]domain.BotLogEntry, error) {
	var resp botLogsResponse
	if err := c.get(ctx, "FetchBotLogs", "/bot/"+url.PathEscape(botID)+"/logs", &resp); err != nil {
		return nil, err
	}
	out := make([]domain.BotLogEntry, 0, len(resp.Logs))
	for _, l := range resp.Logs {
		out = append(out, mapBotLog(l))
	}
	return out, nil
}
