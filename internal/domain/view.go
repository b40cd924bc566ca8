package domain

import (
	"maps"
	"slices"

	"github.com/shopspring/decimal"
)

// ViewState es el agregado que muestra el dashboard. Solo lo muta el reducer
// del orquestador; fuera de él se trabaja siempre sobre copias (Clone).
type ViewState struct {
	// Version crece con cada acción aplicada.
	Version uint64

	Auth    AuthState
	Session Session

	SelectedMarket string
	// MarketGen crece con cada cambio de mercado; los resultados con una
	// generación anterior se descartan.
	MarketGen uint64
	Stake     decimal.Decimal
	// SessionGen crece en cada login y logout; los datos de cuenta pedidos
	// en otra sesión se descartan.
	SessionGen uint64

	Account Account
	Quote   *MarketQuote
	Prices  map[string]decimal.Decimal

	Signal        *Signal
	SignalLoading bool
	Analytics     *DigitAnalytics
	Probability   *Probability

	Contracts []Contract
	Protector CapitalProtector
	Meter     RiskMeter

	TopTraders  []Trader
	Strategies  []Strategy
	Leaderboard []LeaderboardRow

	Bot     *Bot
	BotLogs []BotLogEntry

	Notification Notification
}

// NewViewState devuelve el estado inicial para el mercado y stake dados.
func NewViewState(market string, stake decimal.Decimal) ViewState {
	return ViewState{
		SelectedMarket: market,
		Stake:          stake,
		Prices:         map[string]decimal.Decimal{},
	}
}

// Payout es el pago potencial con el stake actual.
func (v ViewState) Payout() decimal.Decimal {
	return Payout(v.Stake)
}

// Clone devuelve una copia profunda.
func (v ViewState) Clone() ViewState {
	c := v
	c.Prices = maps.Clone(v.Prices)
	if v.Quote != nil {
		q := *v.Quote
		c.Quote = &q
	}
	if v.Signal != nil {
		s := *v.Signal
		s.Factors = slices.Clone(v.Signal.Factors)
		c.Signal = &s
	}
	if v.Analytics != nil {
		a := *v.Analytics
		a.Hot = slices.Clone(v.Analytics.Hot)
		a.Cold = slices.Clone(v.Analytics.Cold)
		a.Patterns = slices.Clone(v.Analytics.Patterns)
		a.LastDigits = slices.Clone(v.Analytics.LastDigits)
		a.Heatmap = slices.Clone(v.Analytics.Heatmap)
		for i := range a.Heatmap {
			a.Heatmap[i].Digits = slices.Clone(a.Heatmap[i].Digits)
		}
		c.Analytics = &a
	}
	if v.Probability != nil {
		p := *v.Probability
		c.Probability = &p
	}
	if v.Bot != nil {
		b := *v.Bot
		c.Bot = &b
	}
	c.Contracts = slices.Clone(v.Contracts)
	c.TopTraders = slices.Clone(v.TopTraders)
	c.Strategies = slices.Clone(v.Strategies)
	c.Leaderboard = slices.Clone(v.Leaderboard)
	c.BotLogs = slices.Clone(v.BotLogs)
	return c
}
