package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/alejandrodnm/xtrader/internal/domain"
	"github.com/alejandrodnm/xtrader/internal/ports"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
)

const (
	defaultPingInterval = 30 * time.Second
	defaultEventBuffer  = 256
	writeWait           = 5 * time.Second
)

// StreamOptions configura el Stream. Los campos vacíos toman el default.
type StreamOptions struct {
	BaseURL      string
	Version      string
	PingInterval time.Duration
	Buffer       int
}

// Stream es la conexión WebSocket del backend: ticks del mercado suscrito y
// avisos de contratos cerrados. Implementa ports.TickStream.
type Stream struct {
	baseURL      string
	version      string
	pingInterval time.Duration
	buffer       int

	// gorilla/websocket admite un solo writer concurrente.
	writeMu sync.Mutex

	mu     sync.Mutex
	conn   *websocket.Conn
	events chan ports.StreamEvent
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewStream crea un Stream sin conectar.
func NewStream(opts StreamOptions) *Stream {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.Version == "" {
		opts.Version = defaultVersion
	}
	if opts.PingInterval <= 0 {
		opts.PingInterval = defaultPingInterval
	}
	if opts.Buffer <= 0 {
		opts.Buffer = defaultEventBuffer
	}
	return &Stream{
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		version:      opts.Version,
		pingInterval: opts.PingInterval,
		buffer:       opts.Buffer,
	}
}

// URL devuelve la URL ws(s) del usuario.
func (s *Stream) URL(userID string) (string, error) {
	u, err := url.Parse(s.baseURL)
	if err != nil {
		return "", fmt.Errorf("backend.Stream: parse base url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http", "":
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws/" + s.version + "/" + url.PathEscape(userID)
	return u.String(), nil
}

// Connect abre la conexión y arranca los loops de lectura y ping.
func (s *Stream) Connect(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		return errors.New("backend.Stream.Connect: already connected")
	}

	u, err := s.URL(userID)
	if err != nil {
		return err
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("backend.Stream.Connect: dial %s: %w", u, err)
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	s.conn = conn
	s.cancel = cancel
	s.events = make(chan ports.StreamEvent, s.buffer)

	s.wg.Add(2)
	go s.pingLoop(loopCtx, conn)
	go s.readLoop(loopCtx, conn, s.events)

	slog.Info("stream connected", "url", u)
	return nil
}

// SubscribeTicks pide los ticks del símbolo.
func (s *Stream) SubscribeTicks(symbol string) error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("backend.Stream.SubscribeTicks: %w", domain.ErrNotConnected)
	}
	return s.write(conn, map[string]string{"action": "subscribe_ticks", "symbol": symbol})
}

// Events devuelve el canal de eventos de la conexión actual. Es nil antes de
// Connect y se cierra al terminar la conexión.
func (s *Stream) Events() <-chan ports.StreamEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events
}

// Close cierra la conexión y espera a que terminen los loops.
func (s *Stream) Close() error {
	s.mu.Lock()
	conn, cancel := s.conn, s.cancel
	s.conn, s.cancel = nil, nil
	s.mu.Unlock()
	if conn == nil {
		return nil
	}

	cancel()
	s.writeMu.Lock()
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
	s.writeMu.Unlock()
	err := conn.Close()
	s.wg.Wait()
	return err
}

func (s *Stream) write(conn *websocket.Conn, msg any) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("backend.Stream: write: %w", err)
	}
	return nil
}

// pingLoop manda el ping de aplicación que espera el backend.
func (s *Stream) pingLoop(ctx context.Context, conn *websocket.Conn) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.write(conn, map[string]string{"action": "ping"}); err != nil {
				slog.Debug("stream ping failed", "err", err)
				return
			}
		}
	}
}

type streamMessage struct {
	Type     string       `json:"type"`
	Data     *tickDTO     `json:"data"`
	Contract *contractDTO `json:"contract"`
}

type tickDTO struct {
	Symbol string          `json:"symbol"`
	Quote  decimal.Decimal `json:"quote"`
	Epoch  int64           `json:"epoch"`
}

func (s *Stream) readLoop(ctx context.Context, conn *websocket.Conn, events chan<- ports.StreamEvent) {
	defer s.wg.Done()
	defer close(events)
	for {
		_, b, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				slog.Warn("stream read failed", "err", err)
			}
			return
		}
		ev, ok := decodeStreamEvent(b)
		if !ok {
			continue
		}
		select {
		case events <- ev:
		case <-ctx.Done():
			return
		default:
			slog.Debug("stream event dropped", "type", ev.Type)
		}
	}
}

// decodeStreamEvent ignora los frames que no reconoce.
func decodeStreamEvent(b []byte) (ports.StreamEvent, bool) {
	var m streamMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return ports.StreamEvent{}, false
	}
	switch ports.StreamEventType(m.Type) {
	case ports.StreamTick:
		if m.Data == nil || m.Data.Symbol == "" {
			return ports.StreamEvent{}, false
		}
		return ports.StreamEvent{
			Type: ports.StreamTick,
			Tick: &domain.Tick{Symbol: m.Data.Symbol, Quote: m.Data.Quote, Epoch: m.Data.Epoch},
		}, true
	case ports.StreamPong:
		return ports.StreamEvent{Type: ports.StreamPong}, true
	case ports.StreamContractClosed:
		if m.Contract == nil {
			return ports.StreamEvent{}, false
		}
		ct := mapContract(*m.Contract)
		ct.Status = domain.ContractClosed
		return ports.StreamEvent{Type: ports.StreamContractClosed, Contract: &ct}, true
	}
	return ports.StreamEvent{}, false
}
