package dashboard_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/alejandrodnm/xtrader/internal/adapters/fallback"
	"github.com/alejandrodnm/xtrader/internal/application/dashboard"
	"github.com/alejandrodnm/xtrader/internal/domain"
	"github.com/alejandrodnm/xtrader/internal/ports"
	"github.com/shopspring/decimal"
)

var errBackendDown = errors.New("backend down")

// --- mocks ---

// mockBackend implementa ports.Backend. Los campos *Err hacen fallar la
// llamada correspondiente; calls cuenta las llamadas por operación.
type mockBackend struct {
	mu    sync.Mutex
	calls map[string]int

	auth    domain.AuthResult
	authErr error

	account     domain.Account
	accountErr  error
	accountHook func() // se ejecuta dentro de FetchAccount
	contracts   []domain.Contract
	prices      map[string]decimal.Decimal
	pricesErr   error
	signal      domain.Signal
	signalErr   error
	signalHook  func() // se ejecuta dentro de FetchSignal
	analytics   domain.DigitAnalytics
	analyticErr error
	heatmap     []domain.HeatmapRow
	heatmapErr  error
	probability domain.Probability
	probErr     error

	buyResult domain.TradeResult
	buyErr    error
	lastBuy   domain.TradeRequest
	sellErr   error

	traders       []domain.Trader
	tradersErr    error
	strategies    []domain.Strategy
	strategiesErr error
	board         []domain.LeaderboardRow
	boardErr      error

	bot      domain.Bot
	botErr   error
	botStats domain.Bot
	botLogs  []domain.BotLogEntry
}

func newMockBackend() *mockBackend {
	return &mockBackend{
		calls:  map[string]int{},
		auth:   domain.AuthResult{Success: true, UserID: "user-1", Token: "session-token"},
		prices: map[string]decimal.Decimal{"R_100": decimal.RequireFromString("1234.56")},
		account: domain.Account{
			UserID:   "user-1",
			Balance:  decimal.NewFromInt(1000),
			Currency: "USD",
		},
		signal: domain.Signal{Symbol: "R_100", Prediction: domain.PredictionOver, Confidence: 0.7},
	}
}

func (m *mockBackend) count(op string) {
	m.mu.Lock()
	m.calls[op]++
	m.mu.Unlock()
}

func (m *mockBackend) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

func (m *mockBackend) set(fn func(m *mockBackend)) {
	m.mu.Lock()
	fn(m)
	m.mu.Unlock()
}

func (m *mockBackend) Authenticate(_ context.Context, _, _ string) (domain.AuthResult, error) {
	m.count("Authenticate")
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.auth, m.authErr
}

func (m *mockBackend) Forget() { m.count("Forget") }

func (m *mockBackend) FetchAccount(_ context.Context, _ string) (domain.Account, error) {
	m.count("FetchAccount")
	m.mu.Lock()
	hook, acc, err := m.accountHook, m.account, m.accountErr
	m.mu.Unlock()
	if hook != nil {
		hook()
	}
	return acc, err
}

func (m *mockBackend) FetchActiveContracts(_ context.Context, _ string) ([]domain.Contract, error) {
	m.count("FetchActiveContracts")
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Contract(nil), m.contracts...), nil
}

func (m *mockBackend) FetchCapitalProtector(_ context.Context, _ string) (domain.CapitalProtector, error) {
	m.count("FetchCapitalProtector")
	return domain.CapitalProtector{}, nil
}

func (m *mockBackend) FetchRiskMeter(_ context.Context, _ string, stake decimal.Decimal) (domain.RiskMeter, error) {
	m.count("FetchRiskMeter")
	return domain.RiskMeter{Stake: stake, Level: domain.RiskLow}, nil
}

func (m *mockBackend) FetchLivePrices(_ context.Context) (map[string]decimal.Decimal, error) {
	m.count("FetchLivePrices")
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pricesErr != nil {
		return nil, m.pricesErr
	}
	out := make(map[string]decimal.Decimal, len(m.prices))
	for k, v := range m.prices {
		out[k] = v
	}
	return out, nil
}

func (m *mockBackend) FetchSignal(_ context.Context, symbol string) (domain.Signal, error) {
	m.count("FetchSignal")
	m.mu.Lock()
	hook, sig, err := m.signalHook, m.signal, m.signalErr
	m.mu.Unlock()
	if hook != nil {
		hook()
	}
	sig.Symbol = symbol
	return sig, err
}

func (m *mockBackend) FetchDigitAnalytics(_ context.Context, symbol string) (domain.DigitAnalytics, error) {
	m.count("FetchDigitAnalytics")
	m.mu.Lock()
	defer m.mu.Unlock()
	a := m.analytics
	a.Symbol = symbol
	return a, m.analyticErr
}

func (m *mockBackend) FetchHeatmap(_ context.Context, _ string) ([]domain.HeatmapRow, error) {
	m.count("FetchHeatmap")
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.heatmap, m.heatmapErr
}

func (m *mockBackend) FetchProbability(_ context.Context, symbol, contractType string) (domain.Probability, error) {
	m.count("FetchProbability")
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.probability
	p.Symbol, p.ContractType = symbol, contractType
	return p, m.probErr
}

func (m *mockBackend) Buy(_ context.Context, req domain.TradeRequest) (domain.TradeResult, error) {
	m.count("Buy")
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastBuy = req
	return m.buyResult, m.buyErr
}

func (m *mockBackend) Sell(_ context.Context, _, _ string) error {
	m.count("Sell")
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sellErr
}

func (m *mockBackend) FetchTopTraders(_ context.Context) ([]domain.Trader, error) {
	m.count("FetchTopTraders")
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.traders, m.tradersErr
}

func (m *mockBackend) FetchStrategies(_ context.Context) ([]domain.Strategy, error) {
	m.count("FetchStrategies")
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.strategies, m.strategiesErr
}

func (m *mockBackend) FetchLeaderboard(_ context.Context) ([]domain.LeaderboardRow, error) {
	m.count("FetchLeaderboard")
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.board, m.boardErr
}

func (m *mockBackend) CreateBot(_ context.Context, _ string, tpl domain.BotTemplate, _ domain.BotConfig) (domain.Bot, error) {
	m.count("CreateBot")
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.bot
	if b.ID == "" {
		b.ID = "bot-1"
	}
	return b, m.botErr
}

func (m *mockBackend) StartBot(_ context.Context, _ string) error {
	m.count("StartBot")
	return m.botErr
}

func (m *mockBackend) StopBot(_ context.Context, _ string) error {
	m.count("StopBot")
	return m.botErr
}

func (m *mockBackend) FetchBotStats(_ context.Context, _ string) (domain.Bot, error) {
	m.count("FetchBotStats")
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.botStats, nil
}

func (m *mockBackend) FetchBotLogs(_ context.Context, _ string) ([]domain.BotLogEntry, error) {
	m.count("FetchBotLogs")
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.botLogs, nil
}

var _ ports.Backend = (*mockBackend)(nil)

// mockNotifier guarda todo lo que se mostró.
type mockNotifier struct {
	mu    sync.Mutex
	shown []domain.Notification
}

func (m *mockNotifier) Show(_ context.Context, n domain.Notification) error {
	m.mu.Lock()
	m.shown = append(m.shown, n)
	m.mu.Unlock()
	return nil
}

func (m *mockNotifier) BySeverity(sev domain.Severity) []domain.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Notification
	for _, n := range m.shown {
		if n.Severity == sev {
			out = append(out, n)
		}
	}
	return out
}

func (m *mockNotifier) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.shown)
}

// mockJournal guarda en memoria.
type mockJournal struct {
	mu      sync.Mutex
	trades  []domain.TradeRecord
	signals []domain.Signal
	notes   []domain.Notification
}

func (m *mockJournal) RecordTrade(_ context.Context, rec domain.TradeRecord) error {
	m.mu.Lock()
	m.trades = append(m.trades, rec)
	m.mu.Unlock()
	return nil
}

func (m *mockJournal) RecordSignal(_ context.Context, sig domain.Signal) error {
	m.mu.Lock()
	m.signals = append(m.signals, sig)
	m.mu.Unlock()
	return nil
}

func (m *mockJournal) RecordNotification(_ context.Context, n domain.Notification) error {
	m.mu.Lock()
	m.notes = append(m.notes, n)
	m.mu.Unlock()
	return nil
}

func (m *mockJournal) RecentTrades(_ context.Context, _ int) ([]domain.TradeRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.TradeRecord(nil), m.trades...), nil
}

func (m *mockJournal) Close() error { return nil }

func (m *mockJournal) Trades() []domain.TradeRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.TradeRecord(nil), m.trades...)
}

// mockStream implementa ports.TickStream con un canal controlado por el test.
type mockStream struct {
	mu         sync.Mutex
	events     chan ports.StreamEvent
	subscribed []string
	connectErr error
	closed     bool
}

func newMockStream() *mockStream {
	return &mockStream{events: make(chan ports.StreamEvent, 8)}
}

func (m *mockStream) Connect(_ context.Context, _ string) error { return m.connectErr }

func (m *mockStream) SubscribeTicks(symbol string) error {
	m.mu.Lock()
	m.subscribed = append(m.subscribed, symbol)
	m.mu.Unlock()
	return nil
}

func (m *mockStream) Events() <-chan ports.StreamEvent { return m.events }

func (m *mockStream) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.events)
	}
	return nil
}

func (m *mockStream) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *mockStream) Subscribed() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.subscribed...)
}

// --- helpers ---

// testConfig usa intervalos largos: tras el primer tick inmediato los
// pollers no vuelven a correr durante el test.
func testConfig() dashboard.Config {
	return dashboard.Config{
		Market:            "R_100",
		Stake:             decimal.NewFromInt(10),
		PriceInterval:     time.Hour,
		AccountInterval:   time.Hour,
		AnalyticsInterval: time.Hour,
		CommunityInterval: time.Hour,
		NotifyDismiss:     time.Hour,
	}
}

type fixture struct {
	dash     *dashboard.Dashboard
	backend  *mockBackend
	notifier *mockNotifier
	journal  *mockJournal
	stream   *mockStream
}

func newFixture(cfg dashboard.Config) *fixture {
	f := &fixture{
		backend:  newMockBackend(),
		notifier: &mockNotifier{},
		journal:  &mockJournal{},
		stream:   newMockStream(),
	}
	f.dash = dashboard.New(cfg, dashboard.Deps{
		Backend:  f.backend,
		Fallback: fallback.New(42),
		Notifier: f.notifier,
		Journal:  f.journal,
		Stream:   f.stream,
	})
	return f
}
