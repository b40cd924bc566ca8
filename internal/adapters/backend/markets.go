package backend

import (
	"context"
	"net/url"
	"time"

	"github.com/alejandrodnm/xtrader/internal/domain"
	"github.com/shopspring/decimal"
)

const livePricesPath = "/markets/live"

// FetchLivePrices devuelve el último precio de cada mercado.
func (c *Client) FetchLivePrices(ctx context.Context) (map[string]decimal.Decimal, error) {
	var resp livePricesResponse
	if err := c.get(ctx, "FetchLivePrices", livePricesPath, &resp); err != nil {
		return nil, err
	}
	if resp.Prices == nil {
		resp.Prices = map[string]decimal.Decimal{}
	}
	return resp.Prices, nil
}

// FetchSignal obtiene la señal del símbolo. La variante (smart/advanced)
// viene de la configuración del cliente.
func (c *Client) FetchSignal(ctx context.Context, symbol string) (domain.Signal, error) {
	path := "/signals/" + url.PathEscape(symbol)
	if c.signalVariant != "" {
		path += "/" + c.signalVariant
	}
	var resp signalResponse
	if err := c.get(ctx, "FetchSignal", path, &resp); err != nil {
		return domain.Signal{}, err
	}
	return mapSignal(symbol, resp, time.Now()), nil
}

// FetchDigitAnalytics obtiene la frecuencia de último dígito del símbolo.
func (c *Client) FetchDigitAnalytics(ctx context.Context, symbol string) (domain.DigitAnalytics, error) {
	var resp digitsResponse
	if err := c.get(ctx, "FetchDigitAnalytics", "/analytics/"+url.PathEscape(symbol)+"/digits", &resp); err != nil {
		return domain.DigitAnalytics{}, err
	}
	return mapDigits(symbol, resp, time.Now()), nil
}

// FetchProbability estima la probabilidad histórica de un tipo de contrato.
func (c *Client) FetchProbability(ctx context.Context, symbol, contractType string) (domain.Probability, error) {
	q := url.Values{"contract_type": {contractType}}
	var resp probabilityResponse
	path := "/analytics/" + url.PathEscape(symbol) + "/probability?" + q.Encode()
	if err := c.get(ctx, "FetchProbability", path, &resp); err != nil {
		return domain.Probability{}, err
	}
	return domain.Probability{
		Symbol:       firstNonEmpty(resp.Symbol, symbol),
		ContractType: firstNonEmpty(resp.ContractType, contractType),
		Probability:  resp.Probability,
		Confidence:   resp.Confidence,
		SampleSize:   resp.SampleSize,
	}, nil
}

// FetchHeatmap obtiene las filas over/under de los últimos ticks del símbolo.
func (c *Client) FetchHeatmap(ctx context.Context, symbol string) ([]domain.HeatmapRow, error) {
	var resp heatmapResponse
	if err := c.get(ctx, "FetchHeatmap", "/analytics/"+url.PathEscape(symbol)+"/heatmap", &resp); err != nil {
		return nil, err
	}
	rows := make([]domain.HeatmapRow, 0, len(resp.Heatmap))
	for _, r := range resp.Heatmap {
		rows = append(rows, domain.HeatmapRow{
			Row:    r.Row,
			Digits: r.Digits,
			Over:   r.OverCount,
			Under:  r.UnderCount,
		})
	}
	return rows, nil
}
