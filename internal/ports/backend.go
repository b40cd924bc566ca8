package ports

import (
	"context"

	"github.com/alejandrodnm/xtrader/internal/domain"
	"github.com/shopspring/decimal"
)

// Authenticator abre la sesión contra el backend.
type Authenticator interface {
	// Authenticate envía el token de la API del broker. Solo un resultado con
	// Success=true autoriza la sesión.
	Authenticate(ctx context.Context, token, userID string) (domain.AuthResult, error)
	// Forget descarta las credenciales locales al cerrar la sesión.
	Forget()
}

// AccountProvider obtiene el estado de la cuenta del usuario.
type AccountProvider interface {
	FetchAccount(ctx context.Context, userID string) (domain.Account, error)
	FetchActiveContracts(ctx context.Context, userID string) ([]domain.Contract, error)
}

// RiskProvider consulta los endpoints de gestión de riesgo.
type RiskProvider interface {
	FetchCapitalProtector(ctx context.Context, userID string) (domain.CapitalProtector, error)
	FetchRiskMeter(ctx context.Context, userID string, stake decimal.Decimal) (domain.RiskMeter, error)
}

// MarketFeed obtiene los precios vivos de todos los mercados.
type MarketFeed interface {
	FetchLivePrices(ctx context.Context) (map[string]decimal.Decimal, error)
}

// SignalProvider obtiene la señal de trading para un símbolo.
type SignalProvider interface {
	FetchSignal(ctx context.Context, symbol string) (domain.Signal, error)
}

// AnalyticsProvider obtiene las estadísticas de dígitos de un símbolo.
type AnalyticsProvider interface {
	FetchDigitAnalytics(ctx context.Context, symbol string) (domain.DigitAnalytics, error)
	FetchProbability(ctx context.Context, symbol, contractType string) (domain.Probability, error)
	// FetchHeatmap devuelve las últimas filas over/under de diez dígitos.
	FetchHeatmap(ctx context.Context, symbol string) ([]domain.HeatmapRow, error)
}

// TradeExecutor compra y vende contratos.
type TradeExecutor interface {
	Buy(ctx context.Context, req domain.TradeRequest) (domain.TradeResult, error)
	Sell(ctx context.Context, userID, contractID string) error
}

// CommunityProvider obtiene las listas de la comunidad (copy-trading,
// marketplace y ranking).
type CommunityProvider interface {
	FetchTopTraders(ctx context.Context) ([]domain.Trader, error)
	FetchStrategies(ctx context.Context) ([]domain.Strategy, error)
	FetchLeaderboard(ctx context.Context) ([]domain.LeaderboardRow, error)
}

// BotController maneja los bots que corren en el backend.
type BotController interface {
	CreateBot(ctx context.Context, userID string, tpl domain.BotTemplate, cfg domain.BotConfig) (domain.Bot, error)
	StartBot(ctx context.Context, botID string) error
	StopBot(ctx context.Context, botID string) error
	FetchBotStats(ctx context.Context, botID string) (domain.Bot, error)
	FetchBotLogs(ctx context.Context, botID string) ([]domain.BotLogEntry, error)
}

// Backend es el cliente remoto completo que consume el dashboard.
type Backend interface {
	Authenticator
	AccountProvider
	RiskProvider
	MarketFeed
	SignalProvider
	AnalyticsProvider
	TradeExecutor
	CommunityProvider
	BotController
}
