package ports

import "github.com/alejandrodnm/xtrader/internal/domain"

// FallbackProvider entrega datos de ejemplo cuando una llamada remota falla.
// Cada llamada devuelve copias nuevas que el caller puede modificar.
type FallbackProvider interface {
	Traders() []domain.Trader
	Strategies() []domain.Strategy
	Leaderboard() []domain.LeaderboardRow
	Signal(symbol string) domain.Signal
	DigitAnalytics(symbol string) domain.DigitAnalytics
}
