package backend

import (
	"context"
	"net/url"

	"github.com/alejandrodnm/xtrader/internal/domain"
	"github.com/shopspring/decimal"
)

const authPath = "/auth/deriv"

// Authenticate envía el token del broker. Con success=true el token queda
// guardado y se envía en las requests siguientes.
func (c *Client) Authenticate(ctx context.Context, token, userID string) (domain.AuthResult, error) {
	var resp authResponse
	if err := c.post(ctx, "Authenticate", authPath, authRequest{Token: token, UserID: userID}, &resp); err != nil {
		return domain.AuthResult{}, err
	}

	res := domain.AuthResult{
		Success: resp.Success,
		UserID:  firstNonEmpty(resp.UserID, userID),
		Token:   firstNonEmpty(resp.Token, token),
		Message: resp.Message,
	}
	if res.Success {
		c.SetToken(res.Token)
	}
	return res, nil
}

// Forget descarta el token local. El backend no tiene endpoint de logout.
func (c *Client) Forget() {
	c.SetToken("")
}

// FetchAccount devuelve el balance y los contadores de la cuenta.
func (c *Client) FetchAccount(ctx context.Context, userID string) (domain.Account, error) {
	var resp accountResponse
	if err := c.get(ctx, "FetchAccount", "/account/"+url.PathEscape(userID), &resp); err != nil {
		return domain.Account{}, err
	}
	currency := resp.Currency
	if currency == "" {
		currency = "USD"
	}
	return domain.Account{
		UserID:          userID,
		Balance:         resp.Balance,
		Currency:        currency,
		ActiveContracts: resp.ActiveContracts,
		TotalTrades:     resp.TotalTrades,
	}, nil
}

// FetchCapitalProtector consulta si el backend recomienda parar de operar.
func (c *Client) FetchCapitalProtector(ctx context.Context, userID string) (domain.CapitalProtector, error) {
	var resp capitalProtectorResponse
	if err := c.get(ctx, "FetchCapitalProtector", "/risk/capital-protector/"+url.PathEscape(userID), &resp); err != nil {
		return domain.CapitalProtector{}, err
	}
	return mapProtector(resp), nil
}

// FetchRiskMeter devuelve el % del balance que arriesga el stake dado.
func (c *Client) FetchRiskMeter(ctx context.Context, userID string, stake decimal.Decimal) (domain.RiskMeter, error) {
	q := url.Values{"stake": {stake.String()}}
	var resp riskMeterResponse
	if err := c.get(ctx, "FetchRiskMeter", "/risk/meter/"+url.PathEscape(userID)+"?"+q.Encode(), &resp); err != nil {
		return domain.RiskMeter{}, err
	}
	return mapMeter(resp), nil
}
