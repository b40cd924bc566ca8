package ports

import (
	"context"

	"github.com/alejandrodnm/xtrader/internal/domain"
)

// Journal guarda el histórico de acciones del usuario para auditoría.
// No persiste la sesión.
type Journal interface {
	RecordTrade(ctx context.Context, rec domain.TradeRecord) error
	RecordSignal(ctx context.Context, sig domain.Signal) error
	RecordNotification(ctx context.Context, n domain.Notification) error

	// RecentTrades devuelve los últimos trades, más recientes primero.
	RecentTrades(ctx context.Context, limit int) ([]domain.TradeRecord, error)

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
