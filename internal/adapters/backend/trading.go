package backend

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/alejandrodnm/xtrader/internal/domain"
)

const (
	buyPath  = "/trade/buy"
	sellPath = "/trade/sell"
)

// Buy compra un contrato. Un success=false del backend se devuelve como
// *Error envolviendo domain.ErrRejected.
func (c *Client) Buy(ctx context.Context, req domain.TradeRequest) (domain.TradeResult, error) {
	body := buyRequest{
		ClientID:     req.ClientID,
		UserID:       req.UserID,
		Symbol:       req.Symbol,
		ContractType: req.ContractType,
		Stake:        req.Stake.InexactFloat64(),
		Duration:     req.Duration,
		DurationUnit: req.DurationUnit,
	}

	var resp buyResponse
	if err := c.post(ctx, "Buy", buyPath, body, &resp); err != nil {
		return domain.TradeResult{}, err
	}
	if !resp.Success {
		return domain.TradeResult{}, c.fail("Buy", "POST", buyPath, 200, domain.ErrRejected)
	}

	res := domain.TradeResult{Success: true}
	if resp.Contract != nil {
		ct := mapContract(*resp.Contract)
		if ct.Symbol == "" {
			ct.Symbol = req.Symbol
		}
		if ct.ContractType == "" {
			ct.ContractType = req.ContractType
		}
		if ct.Stake.IsZero() {
			ct.Stake = req.Stake
		}
		res.Contract = &ct
	}
	return res, nil
}

// Sell cierra un contrato antes de su vencimiento.
func (c *Client) Sell(ctx context.Context, userID, contractID string) error {
	if contractID == "" {
		return c.fail("Sell", "POST", sellPath, 0, errors.New("contract id required"))
	}
	var resp successResponse
	if err := c.post(ctx, "Sell", sellPath, sellRequest{UserID: userID, ContractID: contractID}, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return c.fail("Sell", "POST", sellPath, 200, domain.ErrRejected)
	}
	return nil
}

// FetchActiveContracts devuelve los contratos abiertos del usuario, en el
// orden en que los devuelve el backend (orden de compra).
func (c *Client) FetchActiveContracts(ctx context.Context, userID string) ([]domain.Contract, error) {
	var resp activeContractsResponse
	if err := c.get(ctx, "FetchActiveContracts", "/trade/active/"+url.PathEscape(userID), &resp); err != nil {
		return nil, err
	}
	out := make([]domain.Contract, 0, len(resp.Contracts))
	for _, raw := range resp.Contracts {
		ct := mapContract(raw)
		if ct.ID == "" {
			return nil, c.fail("FetchActiveContracts", "GET", "/trade/active", 200, fmt.Errorf("contract without id"))
		}
		out = append(out, ct)
	}
	return out, nil
}
