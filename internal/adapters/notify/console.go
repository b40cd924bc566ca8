package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/alejandrodnm/xtrader/internal/domain"
	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"
)

// Console implementa ports.Notifier y pinta el dashboard en texto.
type Console struct {
	mu    sync.Mutex
	out   io.Writer
	table bool
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole(table bool) *Console {
	return &Console{out: os.Stdout, table: table}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, table bool) *Console {
	return &Console{out: w, table: table}
}

// Show imprime la notificación en una línea.
func (c *Console) Show(_ context.Context, n domain.Notification) error {
	at := n.ShownAt
	if at.IsZero() {
		at = time.Now()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintf(c.out, "[%s] %s %s\n", at.Format("15:04:05"), n.Severity.Icon(), n.Message)
	return err
}

// PrintDashboard imprime el estado en el modo configurado.
func (c *Console) PrintDashboard(v domain.ViewState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.table {
		c.printFull(v)
	} else {
		c.printCompact(v)
	}
}

// printCompact imprime lo esencial en una línea.
func (c *Console) printCompact(v domain.ViewState) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %s %s", time.Now().Format("15:04:05"), v.SelectedMarket, quoteLabel(v.Quote))
	fmt.Fprintf(&sb, " | bal %s", money(v.Account.Balance))
	fmt.Fprintf(&sb, " | stake %s → %s", money(v.Stake), money(v.Payout()))
	if v.Signal != nil {
		fmt.Fprintf(&sb, " | %s", signalLabel(*v.Signal))
	}
	fmt.Fprintf(&sb, " | open %d", len(v.Contracts))
	if v.Meter.Level != "" {
		fmt.Fprintf(&sb, " | risk %s", v.Meter.Level)
	}
	if v.Protector.Active {
		sb.WriteString(" | !! PROTECTOR")
	}
	fmt.Fprintln(c.out, sb.String())
}

// printFull imprime el dashboard completo con tablas.
func (c *Console) printFull(v domain.ViewState) {
	fmt.Fprintf(c.out, "\n[%s] %s — %s  user:%s\n",
		time.Now().Format("15:04:05"), v.SelectedMarket, v.Auth, v.Session.UserID)
	fmt.Fprintf(c.out, "  Price:   %s\n", quoteLabel(v.Quote))
	fmt.Fprintf(c.out, "  Balance: %s %s  (%d trades)\n", money(v.Account.Balance), v.Account.Currency, v.Account.TotalTrades)
	fmt.Fprintf(c.out, "  Stake:   %s  payout %s\n", money(v.Stake), money(v.Payout()))
	if v.Meter.Level != "" {
		fmt.Fprintf(c.out, "  Risk:    %s (%s%% of balance)\n", v.Meter.Level, v.Meter.Percentage.StringFixed(2))
	}
	if v.Protector.Active {
		fmt.Fprintf(c.out, "  ⚠ Capital protector: %s (%d losses in a row, %s today)\n",
			v.Protector.Reason, v.Protector.ConsecutiveLosses, money(v.Protector.TotalLossToday))
	}
	if v.Signal != nil {
		c.printSignal(*v.Signal)
	}
	if v.Analytics != nil {
		c.printAnalytics(*v.Analytics)
	}

	if len(v.Contracts) > 0 {
		fmt.Fprintln(c.out, "\n  Open contracts")
		table := tablewriter.NewWriter(c.out)
		table.Header("ID", "Market", "Type", "Stake", "Payout", "P/L")
		for _, ct := range v.Contracts {
			table.Append(ct.ID, ct.Symbol, ct.ContractType, money(ct.Stake), money(ct.Payout), money(ct.Profit))
		}
		table.Render()
	}

	if len(v.TopTraders) > 0 {
		fmt.Fprintln(c.out, "\n  Top traders")
		table := tablewriter.NewWriter(c.out)
		table.Header("Trader", "Win%", "Followers", "Profit", "Risk")
		for _, t := range v.TopTraders {
			table.Append(t.Username, fmt.Sprintf("%.1f", t.WinRate), fmt.Sprintf("%d", t.Followers),
				money(t.Profit), fmt.Sprintf("%d/10", t.RiskScore))
		}
		table.Render()
	}

	if len(v.Leaderboard) > 0 {
		fmt.Fprintln(c.out, "\n  Leaderboard")
		table := tablewriter.NewWriter(c.out)
		table.Header("#", "Trader", "Profit", "Win%", "Trades")
		for _, r := range v.Leaderboard {
			table.Append(fmt.Sprintf("%d", r.Rank), r.Username, money(r.Profit),
				fmt.Sprintf("%.1f", r.WinRate), fmt.Sprintf("%d", r.Trades))
		}
		table.Render()
	}

	if v.Bot != nil {
		c.printBot(*v.Bot, v.BotLogs)
	}
	fmt.Fprintln(c.out)
}

// PrintSignal imprime una señal con sus factores.
func (c *Console) PrintSignal(s domain.Signal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.printSignal(s)
}

func (c *Console) printSignal(s domain.Signal) {
	fmt.Fprintf(c.out, "  Signal:  %s\n", signalLabel(s))
	if s.Reason != "" {
		fmt.Fprintf(c.out, "           %s\n", s.Reason)
	}
	for _, f := range s.Factors {
		fmt.Fprintf(c.out, "           - %s: %s (w %.2f)\n", f.Name, f.Label, f.Weight)
	}
}

func (c *Console) printAnalytics(a domain.DigitAnalytics) {
	src := ""
	if a.Fallback {
		src = " [offline]"
	}
	fmt.Fprintf(c.out, "  Digits:  hot %v cold %v  even/odd %d/%d  over/under %d/%d  (%d ticks)%s\n",
		a.Hot, a.Cold, a.Even, a.Odd, a.Over, a.Under, a.TotalTicks, src)
}

// PrintTrades imprime el histórico del journal.
func (c *Console) PrintTrades(recs []domain.TradeRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(recs) == 0 {
		fmt.Fprintln(c.out, "\n  No trades recorded yet.")
		return
	}
	table := tablewriter.NewWriter(c.out)
	table.Header("Time", "Action", "Market", "Dir", "Stake", "Contract", "Result")
	for _, r := range recs {
		result := "OK"
		if !r.Success {
			result = truncate(r.Error, 40)
		}
		table.Append(r.At.Local().Format("01-02 15:04:05"), r.Action, r.Symbol, r.Direction,
			money(r.Stake), r.ContractID, result)
	}
	table.Render()
}

// PrintBot imprime el estado de un bot y su log.
func (c *Console) PrintBot(b domain.Bot, logs []domain.BotLogEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.printBot(b, logs)
}

func (c *Console) printBot(b domain.Bot, logs []domain.BotLogEntry) {
	fmt.Fprintf(c.out, "\n  Bot %s (%s) — %s  trades:%d win:%.1f%% P/L:%s\n",
		b.Name, b.ID, b.Status, b.Stats.Trades, b.Stats.WinRate(), money(b.Stats.Profit))
	if len(logs) == 0 {
		return
	}
	table := tablewriter.NewWriter(c.out)
	table.Header("Time", "Event", "Stake", "Result", "P/L")
	for _, l := range logs {
		table.Append(l.Time.Format("15:04:05"), l.Event, money(l.Stake), l.Result, money(l.Profit))
	}
	table.Render()
}

// PrintTemplates lista los templates de bot disponibles.
func (c *Console) PrintTemplates(tpls []domain.BotTemplate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	table := tablewriter.NewWriter(c.out)
	table.Header("ID", "Name", "Description", "Win rate", "Risk")
	for _, t := range tpls {
		table.Append(t.ID, t.Name, t.Description, t.WinRate, t.Risk)
	}
	table.Render()
}

// --- helpers ---

func quoteLabel(q *domain.MarketQuote) string {
	if q == nil {
		return "-"
	}
	return fmt.Sprintf("%s (%s%%)", q.Price.String(), signed(q.ChangePercent))
}

func signalLabel(s domain.Signal) string {
	label := fmt.Sprintf("%s %d%%", s.Prediction, s.ConfidencePct())
	if s.Fallback {
		label += " [offline]"
	}
	return label
}

func money(d decimal.Decimal) string {
	return domain.FormatUSD(d)
}

func signed(d decimal.Decimal) string {
	if d.IsPositive() {
		return "+" + d.StringFixed(2)
	}
	return d.StringFixed(2)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
