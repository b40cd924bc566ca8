// Package dashboard orquesta el cliente de trading: sesión, pollers,
// notificaciones y acciones del usuario sobre un único ViewState.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alejandrodnm/xtrader/internal/domain"
	"github.com/alejandrodnm/xtrader/internal/ports"
	"github.com/shopspring/decimal"
)

// Nombres de los pollers.
const (
	PollerPrice     = "price"
	PollerAccount   = "account"
	PollerAnalytics = "analytics"
	PollerCommunity = "community"
)

// Config contiene la configuración del dashboard.
type Config struct {
	Market string
	Stake  decimal.Decimal

	PriceInterval     time.Duration
	AccountInterval   time.Duration
	AnalyticsInterval time.Duration
	CommunityInterval time.Duration

	NotifyDismiss time.Duration

	// ManualRefresh deja los pollers sin armar tras el login; el caller
	// refresca con RefreshAll.
	ManualRefresh bool
}

// DefaultConfig devuelve los intervalos por defecto.
func DefaultConfig() Config {
	return Config{
		Market:            domain.DefaultMarket,
		Stake:             decimal.NewFromInt(10),
		PriceInterval:     2 * time.Second,
		AccountInterval:   5 * time.Second,
		AnalyticsInterval: 10 * time.Second,
		CommunityInterval: 60 * time.Second,
		NotifyDismiss:     DefaultDismiss,
	}
}

// Deps son los adapters que usa el dashboard. Journal, Notifier, Metrics y
// Stream son opcionales.
type Deps struct {
	Backend  ports.Backend
	Fallback ports.FallbackProvider
	Notifier ports.Notifier
	Journal  ports.Journal
	Metrics  ports.Metrics
	Stream   ports.TickStream
}

// Dashboard es el orquestador del cliente.
type Dashboard struct {
	backend  ports.Backend
	fallback ports.FallbackProvider
	journal  ports.Journal
	metrics  ports.Metrics
	stream   ports.TickStream

	store   *Store
	notes   *Notifications
	gate    *Gate
	pollers *PollerSet
	manual  bool

	// lifecycle serializa Login/Logout/SelectMarket.
	lifecycle    sync.Mutex
	streamCancel context.CancelFunc
	streamDone   chan struct{}
}

// New crea un Dashboard con todas las dependencias inyectadas.
func New(cfg Config, deps Deps) *Dashboard {
	def := DefaultConfig()
	if cfg.Market == "" {
		cfg.Market = def.Market
	}
	if cfg.Stake.IsZero() {
		cfg.Stake = def.Stake
	}
	if cfg.PriceInterval <= 0 {
		cfg.PriceInterval = def.PriceInterval
	}
	if cfg.AccountInterval <= 0 {
		cfg.AccountInterval = def.AccountInterval
	}
	if cfg.AnalyticsInterval <= 0 {
		cfg.AnalyticsInterval = def.AnalyticsInterval
	}
	if cfg.CommunityInterval <= 0 {
		cfg.CommunityInterval = def.CommunityInterval
	}
	if deps.Metrics == nil {
		deps.Metrics = ports.NopMetrics{}
	}

	store := NewStore(domain.NewViewState(cfg.Market, cfg.Stake))
	d := &Dashboard{
		backend:  deps.Backend,
		fallback: deps.Fallback,
		journal:  deps.Journal,
		metrics:  deps.Metrics,
		stream:   deps.Stream,
		store:    store,
		notes:    NewNotifications(store, deps.Notifier, deps.Journal, cfg.NotifyDismiss),
		gate:     &Gate{},
		manual:   cfg.ManualRefresh,
	}
	d.pollers = NewPollerSet(
		NewPoller(PollerPrice, cfg.PriceInterval, d.pollPrices, d.metrics),
		NewPoller(PollerAccount, cfg.AccountInterval, d.pollAccount, d.metrics),
		NewPoller(PollerAnalytics, cfg.AnalyticsInterval, d.pollAnalytics, d.metrics),
		NewPoller(PollerCommunity, cfg.CommunityInterval, d.pollCommunity, d.metrics),
	)
	return d
}

// Snapshot devuelve una copia del estado actual.
func (d *Dashboard) Snapshot() domain.ViewState {
	return d.store.Snapshot()
}

// Notify muestra una notificación.
func (d *Dashboard) Notify(ctx context.Context, message string, sev domain.Severity) {
	d.notes.Notify(ctx, message, sev)
}

// Login autentica contra el backend. Solo success=true abre la sesión;
// cualquier otro resultado vuelve a Unauthenticated con una notificación de
// error. Al autenticar: fetch de cuenta, stream y pollers. Los pollers viven
// hasta Logout, Close o la cancelación de ctx.
func (d *Dashboard) Login(ctx context.Context, token, userID string) error {
	d.lifecycle.Lock()
	defer d.lifecycle.Unlock()

	if err := d.gate.Begin(); err != nil {
		return fmt.Errorf("dashboard.Login: %w", err)
	}
	if token == "" {
		d.gate.Reset()
		d.notes.Notify(ctx, "Please enter your API token", domain.SeverityError)
		return fmt.Errorf("dashboard.Login: %w", domain.ErrTokenRequired)
	}
	d.store.Dispatch(AuthChanged{State: domain.Authenticating})

	res, err := d.backend.Authenticate(ctx, token, userID)
	if err != nil || !res.Success {
		d.gate.Reset()
		d.store.Dispatch(AuthChanged{State: domain.Unauthenticated})
		msg := "Authentication failed"
		switch {
		case err != nil:
			msg = "Authentication failed: " + err.Error()
			slog.Warn("authentication failed", "user", userID, "err", err)
		case res.Message != "":
			msg = "Authentication failed: " + res.Message
		}
		d.notes.Notify(ctx, msg, domain.SeverityError)
		if err == nil {
			err = domain.ErrAuthRejected
		}
		return fmt.Errorf("dashboard.Login: %w", err)
	}

	if !d.gate.Succeed() {
		return fmt.Errorf("dashboard.Login: %w", domain.ErrNotConnected)
	}
	session := domain.Session{Token: res.Token, UserID: res.UserID, Connected: true}
	d.store.Dispatch(SessionStarted{Session: session})
	slog.Info("session authenticated", "user", session.UserID)
	d.notes.Notify(ctx, "Connected as "+session.UserID, domain.SeveritySuccess)

	d.refreshAccount(ctx)
	d.connectStream(ctx, session.UserID)
	if !d.manual {
		d.pollers.Start(ctx)
	}
	return nil
}

// Logout para los pollers, cierra el stream y borra la sesión.
func (d *Dashboard) Logout(ctx context.Context) {
	d.lifecycle.Lock()
	defer d.lifecycle.Unlock()
	if d.gate.State() == domain.Unauthenticated {
		return
	}
	d.teardown()
	d.notes.Notify(ctx, "Disconnected", domain.SeverityInfo)
}

// Close libera todo. El journal lo cierra quien lo creó.
func (d *Dashboard) Close() {
	d.lifecycle.Lock()
	defer d.lifecycle.Unlock()
	d.teardown()
	d.notes.Close()
}

func (d *Dashboard) teardown() {
	d.pollers.Stop()
	d.closeStream()
	if d.backend != nil {
		d.backend.Forget()
	}
	d.gate.Reset()
	d.store.Dispatch(SessionCleared{})
}

// RefreshAll ejecuta cada poller una vez y espera. Requiere sesión.
func (d *Dashboard) RefreshAll(ctx context.Context) (map[string]string, error) {
	if d.gate.State() != domain.Authenticated {
		return nil, fmt.Errorf("dashboard.RefreshAll: %w", domain.ErrNotConnected)
	}
	return d.pollers.RunOnce(ctx), nil
}

// Polling indica si los pollers están armados.
func (d *Dashboard) Polling() bool {
	return d.pollers.Armed()
}

// --- stream ---

func (d *Dashboard) connectStream(ctx context.Context, userID string) {
	if d.stream == nil {
		return
	}
	if err := d.stream.Connect(ctx, userID); err != nil {
		slog.Warn("stream connect failed", "err", err)
		d.notes.Notify(ctx, "Live ticks unavailable, using polling", domain.SeverityWarning)
		return
	}
	symbol, _ := d.store.Market()
	if err := d.stream.SubscribeTicks(symbol); err != nil {
		slog.Warn("subscribe ticks failed", "symbol", symbol, "err", err)
	}

	streamCtx, cancel := context.WithCancel(ctx)
	d.streamCancel = cancel
	d.streamDone = make(chan struct{})
	go d.consumeStream(streamCtx, d.stream.Events(), d.streamDone)
}

func (d *Dashboard) closeStream() {
	if d.streamCancel == nil {
		return
	}
	d.streamCancel()
	if err := d.stream.Close(); err != nil {
		slog.Debug("stream close", "err", err)
	}
	<-d.streamDone
	d.streamCancel, d.streamDone = nil, nil
}

func (d *Dashboard) consumeStream(ctx context.Context, events <-chan ports.StreamEvent, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			d.handleStreamEvent(ctx, ev)
		}
	}
}

func (d *Dashboard) handleStreamEvent(ctx context.Context, ev ports.StreamEvent) {
	switch ev.Type {
	case ports.StreamTick:
		if ev.Tick == nil {
			return
		}
		d.store.Dispatch(TickReceived{Tick: *ev.Tick})
		d.metrics.ObserveQuote(ev.Tick.Symbol, ev.Tick.Quote.InexactFloat64())
	case ports.StreamContractClosed:
		if ev.Contract == nil {
			return
		}
		d.store.Dispatch(ContractClosed{ID: ev.Contract.ID})
		sev := domain.SeveritySuccess
		if ev.Contract.Profit.IsNegative() {
			sev = domain.SeverityWarning
		}
		d.notes.Notify(ctx, fmt.Sprintf("Contract %s closed: %s", ev.Contract.ID, domain.FormatUSD(ev.Contract.Profit)), sev)
	}
}

// --- pollers ---

func (d *Dashboard) pollPrices(ctx context.Context) string {
	_, gen := d.store.Market()
	prices, err := d.backend.FetchLivePrices(ctx)
	if err != nil {
		if ctx.Err() == nil {
			slog.Warn("price poll failed", "err", err)
		}
		return ports.PollError
	}
	d.store.Dispatch(PricesReceived{Gen: gen, Prices: prices, At: time.Now()})
	for sym, p := range prices {
		d.metrics.ObserveQuote(sym, p.InexactFloat64())
	}
	return ports.PollOK
}

func (d *Dashboard) pollAccount(ctx context.Context) string {
	if !d.refreshAccount(ctx) {
		return ports.PollError
	}
	return ports.PollOK
}

// refreshAccount trae cuenta, contratos y riesgo. Lo que falla deja el
// estado anterior. Devuelve true si todo fue bien. Los resultados llevan la
// generación de sesión para que un logout a mitad no los deje pasar.
func (d *Dashboard) refreshAccount(ctx context.Context) bool {
	session, gen := d.store.SessionScope()
	userID := session.UserID
	if userID == "" {
		return false
	}
	ok := true
	fail := func(what string, err error) {
		ok = false
		if ctx.Err() == nil {
			slog.Warn("account poll failed", "what", what, "err", err)
		}
	}

	if acc, err := d.backend.FetchAccount(ctx, userID); err != nil {
		fail("account", err)
	} else {
		d.store.Dispatch(AccountReceived{Gen: gen, Account: acc})
	}
	if cs, err := d.backend.FetchActiveContracts(ctx, userID); err != nil {
		fail("contracts", err)
	} else {
		d.store.Dispatch(ContractsReceived{Gen: gen, Contracts: cs})
	}
	if p, err := d.backend.FetchCapitalProtector(ctx, userID); err != nil {
		fail("capital_protector", err)
	} else {
		d.store.Dispatch(ProtectorReceived{Gen: gen, Protector: p})
	}
	if m, err := d.backend.FetchRiskMeter(ctx, userID, d.store.Stake()); err != nil {
		fail("risk_meter", err)
	} else {
		d.store.Dispatch(MeterReceived{Gen: gen, Meter: m})
	}
	return ok
}

func (d *Dashboard) pollAnalytics(ctx context.Context) string {
	symbol, gen := d.store.Market()
	a, err := d.backend.FetchDigitAnalytics(ctx, symbol)
	outcome := ports.PollOK
	if err != nil {
		if ctx.Err() != nil {
			return ports.PollError
		}
		slog.Warn("analytics poll failed, using fallback", "symbol", symbol, "err", err)
		a = d.fallback.DigitAnalytics(symbol)
		outcome = ports.PollFallback
	} else if rows, err := d.backend.FetchHeatmap(ctx, symbol); err != nil {
		if ctx.Err() != nil {
			return ports.PollError
		}
		slog.Warn("heatmap poll failed, deriving from last digits", "symbol", symbol, "err", err)
		a.Heatmap = domain.BuildHeatmap(a.LastDigits)
		outcome = ports.PollFallback
	} else {
		a.Heatmap = rows
	}
	d.store.Dispatch(AnalyticsReceived{Gen: gen, Analytics: a})
	return outcome
}

func (d *Dashboard) pollCommunity(ctx context.Context) string {
	results := fetchConcurrent(ctx,
		func(ctx context.Context) bool {
			traders, err := d.backend.FetchTopTraders(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return false
				}
				slog.Warn("traders poll failed, using fallback", "err", err)
				traders = d.fallback.Traders()
			}
			d.store.Dispatch(TradersReceived{Traders: traders})
			return err == nil
		},
		func(ctx context.Context) bool {
			strategies, err := d.backend.FetchStrategies(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return false
				}
				slog.Warn("strategies poll failed, using fallback", "err", err)
				strategies = d.fallback.Strategies()
			}
			d.store.Dispatch(StrategiesReceived{Strategies: strategies})
			return err == nil
		},
		func(ctx context.Context) bool {
			rows, err := d.backend.FetchLeaderboard(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return false
				}
				slog.Warn("leaderboard poll failed, using fallback", "err", err)
				rows = d.fallback.Leaderboard()
			}
			d.store.Dispatch(LeaderboardReceived{Rows: rows})
			return err == nil
		},
	)
	for _, ok := range results {
		if !ok {
			return ports.PollFallback
		}
	}
	return ports.PollOK
}

// requireSession falla con una notificación si no hay sesión.
func (d *Dashboard) requireSession(ctx context.Context, action string) (domain.Session, error) {
	if d.gate.State() != domain.Authenticated {
		d.notes.Notify(ctx, "Please connect first", domain.SeverityError)
		return domain.Session{}, fmt.Errorf("dashboard.%s: %w", action, domain.ErrNotConnected)
	}
	return d.store.Session(), nil
}
