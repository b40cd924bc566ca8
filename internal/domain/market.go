package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultMarket es el mercado seleccionado al arrancar.
const DefaultMarket = "R_100"

// Market es un índice sintético operable en el backend.
type Market struct {
	Symbol string
	Label  string
}

// Markets lista los índices que el backend analiza.
var Markets = []Market{
	{Symbol: "R_10", Label: "Volatility 10"},
	{Symbol: "R_25", Label: "Volatility 25"},
	{Symbol: "R_50", Label: "Volatility 50"},
	{Symbol: "R_75", Label: "Volatility 75"},
	{Symbol: "R_100", Label: "Volatility 100"},
	{Symbol: "BOOM500", Label: "Boom 500"},
	{Symbol: "CRASH500", Label: "Crash 500"},
}

// LookupMarket devuelve el mercado con el símbolo dado.
func LookupMarket(symbol string) (Market, bool) {
	for _, m := range Markets {
		if m.Symbol == symbol {
			return m, true
		}
	}
	return Market{}, false
}

// MarketQuote es el último precio conocido de un símbolo. Se sobreescribe en
// cada tick; no se guarda histórico.
type MarketQuote struct {
	Symbol        string
	Price         decimal.Decimal
	ChangePercent decimal.Decimal
	At            time.Time
}

// NewQuote construye el quote calculando la variación respecto al anterior,
// siempre que el anterior sea del mismo símbolo y tenga precio > 0.
func NewQuote(symbol string, price decimal.Decimal, prev *MarketQuote, at time.Time) MarketQuote {
	q := MarketQuote{Symbol: symbol, Price: price, At: at}
	if prev != nil && prev.Symbol == symbol && prev.Price.IsPositive() {
		q.ChangePercent = price.Sub(prev.Price).
			Div(prev.Price).
			Mul(decimal.NewFromInt(100)).
			Round(4)
	}
	return q
}

// Tick es un precio recibido por el stream del backend.
type Tick struct {
	Symbol string
	Quote  decimal.Decimal
	Epoch  int64
}
