// Package fallback entrega los datos de ejemplo que el dashboard muestra
// cuando el backend no responde.
package fallback

import (
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/alejandrodnm/xtrader/internal/domain"
	"github.com/shopspring/decimal"
)

var traders = []domain.Trader{
	{ID: "1", Username: "ProTrader99", WinRate: 78.5, Followers: 1250, Profit: decimal.RequireFromString("15420.50"), RiskScore: 3},
	{ID: "2", Username: "SignalMaster", WinRate: 72.3, Followers: 890, Profit: decimal.RequireFromString("8930.25"), RiskScore: 5},
}

var strategies = []domain.Strategy{
	{ID: "ema", Name: "EMA Crossover", Author: "ProTrader99", Description: "Buy when EMA(20) crosses above EMA(50)",
		Price: decimal.RequireFromString("29.99"), WinRate: 58, Subscribers: 340, Risk: "Medium"},
	{ID: "rsi", Name: "RSI Mean Reversion", Author: "SignalMaster", Description: "Buy oversold, sell overbought",
		Price: decimal.RequireFromString("19.99"), WinRate: 62, Subscribers: 512, Risk: "Low"},
	{ID: "martingale", Name: "Martingale", Author: "DigitHunter", Description: "Double stake after loss",
		Price: decimal.RequireFromString("9.99"), WinRate: 55, Subscribers: 128, Risk: "High"},
}

var leaderboard = []domain.LeaderboardRow{
	{Rank: 1, Username: "ProTrader99", Profit: decimal.RequireFromString("15420.50"), WinRate: 78.5, Trades: 1420},
	{Rank: 2, Username: "SignalMaster", Profit: decimal.RequireFromString("8930.25"), WinRate: 72.3, Trades: 980},
	{Rank: 3, Username: "DigitHunter", Profit: decimal.RequireFromString("6210.00"), WinRate: 69.8, Trades: 1105},
	{Rank: 4, Username: "VolatilityKing", Profit: decimal.RequireFromString("4875.75"), WinRate: 66.1, Trades: 760},
	{Rank: 5, Username: "TickSniper", Profit: decimal.RequireFromString("3120.40"), WinRate: 64.4, Trades: 655},
}

// Snapshot fijo de 100 ticks.
var digitFrequency = [10]int{11, 9, 12, 8, 10, 13, 7, 10, 9, 11}

var lastDigits = []int{5, 2, 0, 9, 5, 3, 7, 2, 4, 5, 1, 8, 0, 6, 2, 5, 9, 3, 2, 0}

// Provider implementa ports.FallbackProvider. La única parte no fija es la
// dirección de la señal, que sale de un generador con semilla.
type Provider struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// New crea un Provider con la semilla dada. La misma semilla produce la misma
// secuencia de señales.
func New(seed uint64) *Provider {
	return &Provider{
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		now: time.Now,
	}
}

func (p *Provider) Traders() []domain.Trader {
	return slices.Clone(traders)
}

func (p *Provider) Strategies() []domain.Strategy {
	return slices.Clone(strategies)
}

func (p *Provider) Leaderboard() []domain.LeaderboardRow {
	return slices.Clone(leaderboard)
}

// Signal devuelve una señal CALL o PUT con confianza baja y Fallback=true.
func (p *Provider) Signal(symbol string) domain.Signal {
	p.mu.Lock()
	call := p.rng.IntN(2) == 0
	confidence := 0.55 + float64(p.rng.IntN(20))/100
	p.mu.Unlock()

	pred := domain.PredictionPut
	if call {
		pred = domain.PredictionCall
	}
	return domain.Signal{
		Symbol:     symbol,
		Prediction: pred,
		Confidence: confidence,
		Reason:     "Offline estimate, backend unavailable",
		Factors: []domain.Factor{
			{Name: "RSI", Value: 50, Label: "50.0", Weight: 0.4},
			{Name: "Trend", Label: "neutral", Weight: 0.6},
		},
		DurationTicks: domain.DefaultDuration,
		StakeHint:     domain.MinStake,
		Fallback:      true,
		FetchedAt:     p.now(),
	}
}

// DigitAnalytics devuelve el snapshot fijo para el símbolo.
func (p *Provider) DigitAnalytics(symbol string) domain.DigitAnalytics {
	a := domain.DigitAnalytics{
		Symbol:     symbol,
		Frequency:  digitFrequency,
		LastDigits: slices.Clone(lastDigits),
		Heatmap:    domain.BuildHeatmap(lastDigits),
		Fallback:   true,
		At:         p.now(),
	}
	for d, n := range digitFrequency {
		a.TotalTicks += n
		if d%2 == 0 {
			a.Even += n
		} else {
			a.Odd += n
		}
		if d > 5 {
			a.Over += n
		} else if d < 5 {
			a.Under += n
		}
	}
	for d, n := range digitFrequency {
		a.Percentages[d] = float64(n) / float64(a.TotalTicks) * 100
	}
	a.Hot, a.Cold = domain.HotCold(a.Frequency)
	return a
}
