package ports

import (
	"context"

	"github.com/alejandrodnm/xtrader/internal/domain"
)

// Notifier presenta las notificaciones al usuario.
type Notifier interface {
	// Show muestra la notificación. En consola, imprime una línea.
	Show(ctx context.Context, n domain.Notification) error
}
