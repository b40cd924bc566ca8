package backend_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alejandrodnm/xtrader/internal/adapters/backend"
	"github.com/alejandrodnm/xtrader/internal/domain"
	"github.com/alejandrodnm/xtrader/internal/ports"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.TickStream = (*backend.Stream)(nil)

// wsServer simula el endpoint /ws/v3/{user}: responde pong a los pings y,
// al recibir subscribe_ticks, manda un tick y un contrato cerrado.
func wsServer(t *testing.T, gotPath chan<- string) *httptest.Server {
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath <- r.URL.Path
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			var msg map[string]string
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			switch msg["action"] {
			case "ping":
				_ = conn.WriteJSON(map[string]string{"type": "pong"})
			case "subscribe_ticks":
				_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"hello"}`))
				_ = conn.WriteJSON(map[string]any{
					"type": "tick",
					"data": map[string]any{"symbol": msg["symbol"], "quote": 1234.56, "epoch": 1700000000},
				})
				_ = conn.WriteJSON(map[string]any{
					"type":     "contract_closed",
					"contract": map[string]any{"contract_id": 99, "underlying": msg["symbol"], "profit": 0.95},
				})
			}
		}
	}))
}

func nextEvent(t *testing.T, ch <-chan ports.StreamEvent) ports.StreamEvent {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "events channel closed")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for stream event")
	}
	return ports.StreamEvent{}
}

func TestStream_URL(t *testing.T) {
	s := backend.NewStream(backend.StreamOptions{BaseURL: "https://api.example.com/"})
	u, err := s.URL("alice")
	require.NoError(t, err)
	assert.Equal(t, "wss://api.example.com/ws/v3/alice", u)

	s = backend.NewStream(backend.StreamOptions{})
	u, err = s.URL("bob")
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:8000/ws/v3/bob", u)
}

func TestStream_SubscribeAndReceive(t *testing.T) {
	paths := make(chan string, 1)
	srv := wsServer(t, paths)
	defer srv.Close()

	s := backend.NewStream(backend.StreamOptions{BaseURL: srv.URL, PingInterval: 20 * time.Millisecond})
	require.NoError(t, s.Connect(context.Background(), "alice"))
	defer s.Close()
	assert.Equal(t, "/ws/v3/alice", <-paths)

	require.NoError(t, s.SubscribeTicks("R_100"))

	var tick, closed *ports.StreamEvent
	for tick == nil || closed == nil {
		ev := nextEvent(t, s.Events())
		switch ev.Type {
		case ports.StreamTick:
			tick = &ev
		case ports.StreamContractClosed:
			closed = &ev
		}
	}
	assert.Equal(t, "R_100", tick.Tick.Symbol)
	assert.Equal(t, "1234.56", tick.Tick.Quote.String())
	assert.Equal(t, int64(1700000000), tick.Tick.Epoch)

	assert.Equal(t, "99", closed.Contract.ID)
	assert.Equal(t, domain.ContractClosed, closed.Contract.Status)
	assert.Equal(t, "0.95", closed.Contract.Profit.String())
}

func TestStream_PingGetsPong(t *testing.T) {
	srv := wsServer(t, make(chan string, 1))
	defer srv.Close()

	s := backend.NewStream(backend.StreamOptions{BaseURL: srv.URL, PingInterval: 10 * time.Millisecond})
	require.NoError(t, s.Connect(context.Background(), "alice"))
	defer s.Close()

	assert.Equal(t, ports.StreamPong, nextEvent(t, s.Events()).Type)
}

func TestStream_CloseClosesEvents(t *testing.T) {
	srv := wsServer(t, make(chan string, 1))
	defer srv.Close()

	s := backend.NewStream(backend.StreamOptions{BaseURL: srv.URL})
	require.NoError(t, s.Connect(context.Background(), "alice"))
	events := s.Events()
	require.NoError(t, s.Close())

	select {
	case _, ok := <-events:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("events not closed")
	}
	assert.NoError(t, s.Close(), "segundo Close es no-op")
}

func TestStream_SubscribeBeforeConnect(t *testing.T) {
	s := backend.NewStream(backend.StreamOptions{})
	assert.ErrorIs(t, s.SubscribeTicks("R_100"), domain.ErrNotConnected)
}

func TestStream_DialFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	s := backend.NewStream(backend.StreamOptions{BaseURL: srv.URL})
	assert.Error(t, s.Connect(context.Background(), "alice"))
}
