package ports

import (
	"context"

	"github.com/alejandrodnm/xtrader/internal/domain"
)

// StreamEventType distingue los mensajes del stream del backend.
type StreamEventType string

const (
	StreamTick           StreamEventType = "tick"
	StreamPong           StreamEventType = "pong"
	StreamContractClosed StreamEventType = "contract_closed"
)

// StreamEvent es un mensaje recibido por el stream.
type StreamEvent struct {
	Type     StreamEventType
	Tick     *domain.Tick
	Contract *domain.Contract
}

// TickStream es la suscripción en vivo al backend (gráfico de ticks y
// cierres de contratos).
type TickStream interface {
	Connect(ctx context.Context, userID string) error
	SubscribeTicks(symbol string) error
	// Events se cierra cuando la conexión termina.
	Events() <-chan StreamEvent
	Close() error
}
