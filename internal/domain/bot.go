package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BotTemplate is a ready-made strategy a bot can be created from.
type BotTemplate struct {
	ID          string
	Name        string
	Description string
	WinRate     string
	Risk        string
}

// BotTemplates are the strategies offered by the bot builder.
var BotTemplates = []BotTemplate{
	{
		ID:          "ema",
		Name:        "EMA Crossover",
		Description: "Buy when EMA(20) crosses above EMA(50)",
		WinRate:     "58%",
		Risk:        "Medium",
	},
	{
		ID:          "rsi",
		Name:        "RSI Mean Reversion",
		Description: "Buy oversold, sell overbought",
		WinRate:     "62%",
		Risk:        "Low",
	},
	{
		ID:          "martingale",
		Name:        "Martingale",
		Description: "Double stake after loss",
		WinRate:     "55%",
		Risk:        "High",
	},
}

// TemplateByID returns the template with the given id.
func TemplateByID(id string) (BotTemplate, error) {
	for _, t := range BotTemplates {
		if t.ID == id {
			return t, nil
		}
	}
	return BotTemplate{}, ErrUnknownTemplate
}

// BotStatus mirrors the backend bot lifecycle.
type BotStatus string

const (
	BotRunning BotStatus = "RUNNING"
	BotPaused  BotStatus = "PAUSED"
	BotStopped BotStatus = "STOPPED"
	BotError   BotStatus = "ERROR"
)

// BotConfig holds the stop conditions sent on bot creation.
type BotConfig struct {
	MaxTrades  int
	StopLoss   decimal.Decimal // negative
	TakeProfit decimal.Decimal
	Stake      decimal.Decimal
}

// DefaultBotConfig matches the backend defaults.
func DefaultBotConfig() BotConfig {
	return BotConfig{
		MaxTrades:  100,
		StopLoss:   decimal.NewFromInt(-50),
		TakeProfit: decimal.NewFromInt(100),
		Stake:      decimal.NewFromInt(1),
	}
}

// BotStats aggregates results of a running bot.
type BotStats struct {
	Trades int
	Wins   int
	Losses int
	Profit decimal.Decimal
}

// WinRate returns wins/trades in percent, 0 with no trades.
func (s BotStats) WinRate() float64 {
	if s.Trades == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Trades) * 100
}

// Bot is a backend-hosted trading bot.
type Bot struct {
	ID         string
	TemplateID string
	Name       string
	Status     BotStatus
	Stats      BotStats
}

// BotLogEntry is one line of the bot execution log.
type BotLogEntry struct {
	Time   time.Time
	Event  string // TRADE, STOP_LOSS_HIT, TAKE_PROFIT_HIT
	Stake  decimal.Decimal
	Result string
	Profit decimal.Decimal
}
