package notify_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alejandrodnm/xtrader/internal/adapters/notify"
	"github.com/alejandrodnm/xtrader/internal/domain"
	"github.com/alejandrodnm/xtrader/internal/ports"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.Notifier = (*notify.Console)(nil)

func makeView() domain.ViewState {
	v := domain.NewViewState("R_100", decimal.NewFromInt(10))
	v.Auth = domain.Authenticated
	v.Session = domain.Session{UserID: "alice", Connected: true}
	v.Account = domain.Account{Balance: decimal.RequireFromString("10000"), Currency: "USD", TotalTrades: 3}
	v.Quote = &domain.MarketQuote{Symbol: "R_100", Price: decimal.RequireFromString("1234.56"), ChangePercent: decimal.RequireFromString("0.12")}
	v.Signal = &domain.Signal{Symbol: "R_100", Prediction: domain.PredictionCall, Confidence: 0.72, Reason: "Uptrend", Fallback: true}
	v.Contracts = []domain.Contract{{ID: "c-1", Symbol: "R_100", ContractType: "CALL", Stake: decimal.NewFromInt(10), Payout: decimal.RequireFromString("19.5")}}
	v.TopTraders = []domain.Trader{{Username: "ProTrader99", WinRate: 78.5, Followers: 1250, Profit: decimal.RequireFromString("15420.5"), RiskScore: 3}}
	v.Leaderboard = []domain.LeaderboardRow{{Rank: 1, Username: "TickSniper", Profit: decimal.NewFromInt(10), Trades: 4}}
	v.Meter = domain.RiskMeter{Percentage: decimal.NewFromInt(1), Level: domain.RiskLow}
	return v
}

func TestConsole_Show(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf, false)

	at := time.Date(2024, 5, 1, 10, 11, 12, 0, time.Local)
	err := c.Show(context.Background(), domain.Notification{Message: "Trade placed", Severity: domain.SeveritySuccess, ShownAt: at})
	require.NoError(t, err)
	assert.Equal(t, "[10:11:12] ✔ Trade placed\n", buf.String())
}

func TestConsole_Show_ErrorIcon(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf, false)

	require.NoError(t, c.Show(context.Background(), domain.Notification{Message: "boom", Severity: domain.SeverityError}))
	assert.Contains(t, buf.String(), "✖ boom")
}

func TestConsole_PrintDashboard_Compact(t *testing.T) {
	var buf bytes.Buffer
	notify.NewConsoleWriter(&buf, false).PrintDashboard(makeView())

	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "\n"), "modo compacto es una línea")
	assert.Contains(t, out, "R_100 1234.56 (+0.12%)")
	assert.Contains(t, out, "stake $10.00 → $19.50")
	assert.Contains(t, out, "CALL 72% [offline]")
	assert.Contains(t, out, "open 1")
}

func TestConsole_PrintDashboard_Table(t *testing.T) {
	var buf bytes.Buffer
	notify.NewConsoleWriter(&buf, true).PrintDashboard(makeView())

	out := buf.String()
	assert.Contains(t, out, "user:alice")
	assert.Contains(t, out, "payout $19.50")
	assert.Contains(t, out, "c-1")
	assert.Contains(t, out, "ProTrader99")
	assert.Contains(t, out, "TickSniper")
	assert.Contains(t, out, "Uptrend")
}

func TestConsole_PrintTrades(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf, true)

	c.PrintTrades(nil)
	assert.Contains(t, buf.String(), "No trades recorded yet.")

	buf.Reset()
	c.PrintTrades([]domain.TradeRecord{
		{Action: "buy", Symbol: "R_50", Direction: "PUT", Stake: decimal.NewFromInt(1), ContractID: "9", Success: true, At: time.Now()},
		{Action: "sell", Symbol: "R_50", Error: strings.Repeat("x", 60), At: time.Now()},
	})
	out := buf.String()
	assert.Contains(t, out, "R_50")
	assert.Contains(t, out, "OK")
	assert.Contains(t, out, "...")
}

func TestConsole_PrintBot(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf, true)

	c.PrintBot(domain.Bot{ID: "bot_1", Name: "Martingale", Status: domain.BotRunning,
		Stats: domain.BotStats{Trades: 4, Wins: 3, Profit: decimal.RequireFromString("1.85")}},
		[]domain.BotLogEntry{{Event: "TRADE", Result: "WIN", Stake: decimal.NewFromInt(1), Profit: decimal.RequireFromString("0.95")}})

	out := buf.String()
	assert.Contains(t, out, "Martingale (bot_1)")
	assert.Contains(t, out, "win:75.0%")
	assert.Contains(t, out, "TRADE")
}

func TestConsole_PrintTemplates(t *testing.T) {
	var buf bytes.Buffer
	notify.NewConsoleWriter(&buf, true).PrintTemplates(domain.BotTemplates)
	out := buf.String()
	for _, tpl := range domain.BotTemplates {
		assert.Contains(t, out, tpl.Name)
	}
}
