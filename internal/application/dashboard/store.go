package dashboard

import (
	"slices"
	"sync"
	"time"

	"github.com/alejandrodnm/xtrader/internal/domain"
	"github.com/shopspring/decimal"
)

// Action es una mutación del ViewState. apply devuelve false si la acción se
// descarta (resultado obsoleto o sin cambios).
type Action interface {
	apply(v *domain.ViewState) bool
}

// Store es el único dueño del ViewState. Todas las mutaciones pasan por
// Dispatch, serializadas bajo un mutex.
type Store struct {
	mu    sync.Mutex
	state domain.ViewState
}

// NewStore crea un Store con el estado inicial dado.
func NewStore(initial domain.ViewState) *Store {
	if initial.Prices == nil {
		initial.Prices = map[string]decimal.Decimal{}
	}
	return &Store{state: initial}
}

// Dispatch aplica la acción. Devuelve true si el estado cambió.
func (s *Store) Dispatch(a Action) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !a.apply(&s.state) {
		return false
	}
	s.state.Version++
	return true
}

// Snapshot devuelve una copia profunda del estado.
func (s *Store) Snapshot() domain.ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Market devuelve el mercado seleccionado y su generación, para etiquetar
// los resultados de un fetch.
func (s *Store) Market() (string, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.SelectedMarket, s.state.MarketGen
}

// Session devuelve la sesión actual.
func (s *Store) Session() domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Session
}

// SessionScope devuelve la sesión y su generación leídas juntas.
func (s *Store) SessionScope() (domain.Session, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Session, s.state.SessionGen
}

// Stake devuelve el stake actual.
func (s *Store) Stake() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Stake
}

// --- market ---

// MarketSelected cambia de mercado y limpia todo lo que depende de él.
type MarketSelected struct {
	Symbol string
}

func (a MarketSelected) apply(v *domain.ViewState) bool {
	if a.Symbol == v.SelectedMarket {
		return false
	}
	v.SelectedMarket = a.Symbol
	v.MarketGen++
	v.Quote = nil
	v.Signal = nil
	v.SignalLoading = false
	v.Analytics = nil
	v.Probability = nil
	return true
}

// StakeChanged fija el stake del panel de trading.
type StakeChanged struct {
	Stake decimal.Decimal
}

func (a StakeChanged) apply(v *domain.ViewState) bool {
	if a.Stake.Equal(v.Stake) {
		return false
	}
	v.Stake = a.Stake
	return true
}

// PricesReceived trae los precios de todos los mercados; la cotización del
// mercado seleccionado se recalcula contra la anterior.
type PricesReceived struct {
	Gen    uint64
	Prices map[string]decimal.Decimal
	At     time.Time
}

func (a PricesReceived) apply(v *domain.ViewState) bool {
	if a.Gen != v.MarketGen {
		return false
	}
	v.Prices = a.Prices
	if p, ok := a.Prices[v.SelectedMarket]; ok {
		q := domain.NewQuote(v.SelectedMarket, p, v.Quote, a.At)
		v.Quote = &q
	}
	return true
}

// TickReceived viene del stream. No lleva generación: se filtra por símbolo.
type TickReceived struct {
	Tick domain.Tick
}

func (a TickReceived) apply(v *domain.ViewState) bool {
	if v.Prices == nil {
		v.Prices = map[string]decimal.Decimal{}
	}
	v.Prices[a.Tick.Symbol] = a.Tick.Quote
	if a.Tick.Symbol == v.SelectedMarket {
		q := domain.NewQuote(a.Tick.Symbol, a.Tick.Quote, v.Quote, time.Unix(a.Tick.Epoch, 0))
		v.Quote = &q
	}
	return true
}

// SignalRequested marca la señal como cargando.
type SignalRequested struct {
	Gen uint64
}

func (a SignalRequested) apply(v *domain.ViewState) bool {
	if a.Gen != v.MarketGen {
		return false
	}
	v.SignalLoading = true
	return true
}

// SignalReceived reemplaza la señal entera.
type SignalReceived struct {
	Gen    uint64
	Signal domain.Signal
}

func (a SignalReceived) apply(v *domain.ViewState) bool {
	if a.Gen != v.MarketGen {
		return false
	}
	s := a.Signal
	v.Signal = &s
	v.SignalLoading = false
	return true
}

// SignalFailed quita el estado de carga sin tocar la señal anterior.
type SignalFailed struct {
	Gen uint64
}

func (a SignalFailed) apply(v *domain.ViewState) bool {
	if a.Gen != v.MarketGen || !v.SignalLoading {
		return false
	}
	v.SignalLoading = false
	return true
}

// AnalyticsReceived reemplaza el snapshot de dígitos.
type AnalyticsReceived struct {
	Gen       uint64
	Analytics domain.DigitAnalytics
}

func (a AnalyticsReceived) apply(v *domain.ViewState) bool {
	if a.Gen != v.MarketGen {
		return false
	}
	an := a.Analytics
	v.Analytics = &an
	return true
}

// ProbabilityReceived reemplaza la probabilidad estimada.
type ProbabilityReceived struct {
	Gen         uint64
	Probability domain.Probability
}

func (a ProbabilityReceived) apply(v *domain.ViewState) bool {
	if a.Gen != v.MarketGen {
		return false
	}
	p := a.Probability
	v.Probability = &p
	return true
}

// --- account ---

// Los resultados de cuenta llevan la SessionGen con la que se pidieron.

type AccountReceived struct {
	Gen     uint64
	Account domain.Account
}

func (a AccountReceived) apply(v *domain.ViewState) bool {
	if a.Gen != v.SessionGen {
		return false
	}
	v.Account = a.Account
	return true
}

type ContractsReceived struct {
	Gen       uint64
	Contracts []domain.Contract
}

func (a ContractsReceived) apply(v *domain.ViewState) bool {
	if a.Gen != v.SessionGen {
		return false
	}
	v.Contracts = a.Contracts
	return true
}

// ContractClosed quita el contrato de la lista de abiertos.
type ContractClosed struct {
	ID string
}

func (a ContractClosed) apply(v *domain.ViewState) bool {
	i := slices.IndexFunc(v.Contracts, func(c domain.Contract) bool { return c.ID == a.ID })
	if i < 0 {
		return false
	}
	v.Contracts = slices.Delete(slices.Clone(v.Contracts), i, i+1)
	return true
}

type ProtectorReceived struct {
	Gen       uint64
	Protector domain.CapitalProtector
}

func (a ProtectorReceived) apply(v *domain.ViewState) bool {
	if a.Gen != v.SessionGen {
		return false
	}
	v.Protector = a.Protector
	return true
}

type MeterReceived struct {
	Gen   uint64
	Meter domain.RiskMeter
}

func (a MeterReceived) apply(v *domain.ViewState) bool {
	if a.Gen != v.SessionGen {
		return false
	}
	v.Meter = a.Meter
	return true
}

// --- community ---

type TradersReceived struct {
	Traders []domain.Trader
}

func (a TradersReceived) apply(v *domain.ViewState) bool {
	v.TopTraders = a.Traders
	return true
}

type StrategiesReceived struct {
	Strategies []domain.Strategy
}

func (a StrategiesReceived) apply(v *domain.ViewState) bool {
	v.Strategies = a.Strategies
	return true
}

type LeaderboardReceived struct {
	Rows []domain.LeaderboardRow
}

func (a LeaderboardReceived) apply(v *domain.ViewState) bool {
	v.Leaderboard = a.Rows
	return true
}

// --- session ---

// AuthChanged mueve el estado del gate.
type AuthChanged struct {
	State domain.AuthState
}

func (a AuthChanged) apply(v *domain.ViewState) bool {
	if a.State == v.Auth {
		return false
	}
	v.Auth = a.State
	return true
}

// SessionStarted guarda la sesión autenticada.
type SessionStarted struct {
	Session domain.Session
}

func (a SessionStarted) apply(v *domain.ViewState) bool {
	v.Auth = domain.Authenticated
	v.Session = a.Session
	v.SessionGen++
	return true
}

// SessionCleared borra todo lo que pertenece al usuario. Mercado, stake y
// notificación se conservan.
type SessionCleared struct{}

func (SessionCleared) apply(v *domain.ViewState) bool {
	v.Auth = domain.Unauthenticated
	v.Session = domain.Session{}
	v.SessionGen++
	v.Account = domain.Account{}
	v.Contracts = nil
	v.Protector = domain.CapitalProtector{}
	v.Meter = domain.RiskMeter{}
	v.TopTraders = nil
	v.Strategies = nil
	v.Leaderboard = nil
	v.Bot = nil
	v.BotLogs = nil
	return true
}

// --- notifications ---

// NotificationShown reemplaza la notificación visible.
type NotificationShown struct {
	Notification domain.Notification
}

func (a NotificationShown) apply(v *domain.ViewState) bool {
	v.Notification = a.Notification
	return true
}

// NotificationHidden oculta la notificación solo si sigue siendo la misma.
type NotificationHidden struct {
	ID uint64
}

func (a NotificationHidden) apply(v *domain.ViewState) bool {
	if v.Notification.ID != a.ID || !v.Notification.Visible {
		return false
	}
	v.Notification.Visible = false
	return true
}

// --- bots ---

type BotUpdated struct {
	Bot domain.Bot
}

func (a BotUpdated) apply(v *domain.ViewState) bool {
	b := a.Bot
	v.Bot = &b
	return true
}

type BotLogsReceived struct {
	Logs []domain.BotLogEntry
}

func (a BotLogsReceived) apply(v *domain.ViewState) bool {
	v.BotLogs = a.Logs
	return true
}
