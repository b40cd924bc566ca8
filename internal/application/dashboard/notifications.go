package dashboard

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/alejandrodnm/xtrader/internal/domain"
	"github.com/alejandrodnm/xtrader/internal/ports"
)

// DefaultDismiss es lo que tarda en ocultarse una notificación.
const DefaultDismiss = 4 * time.Second

// Notifications muestra una notificación a la vez. Cada Notify reemplaza la
// visible y reinicia el timer; el timer de una notificación reemplazada
// nunca oculta a la nueva porque el reducer compara el ID.
type Notifications struct {
	store   *Store
	sink    ports.Notifier
	journal ports.Journal
	dismiss time.Duration
	now     func() time.Time

	mu     sync.Mutex
	seq    uint64
	timer  *time.Timer
	closed bool
}

// NewNotifications crea el canal. sink y journal son opcionales.
func NewNotifications(store *Store, sink ports.Notifier, journal ports.Journal, dismiss time.Duration) *Notifications {
	if dismiss <= 0 {
		dismiss = DefaultDismiss
	}
	return &Notifications{
		store:   store,
		sink:    sink,
		journal: journal,
		dismiss: dismiss,
		now:     time.Now,
	}
}

// Notify muestra el mensaje y programa su ocultación.
func (n *Notifications) Notify(ctx context.Context, message string, sev domain.Severity) domain.Notification {
	n.mu.Lock()
	n.seq++
	note := domain.Notification{
		ID:       n.seq,
		Message:  message,
		Severity: sev,
		Visible:  true,
		ShownAt:  n.now(),
	}
	if n.timer != nil {
		n.timer.Stop()
	}
	n.store.Dispatch(NotificationShown{Notification: note})
	if !n.closed {
		id := note.ID
		n.timer = time.AfterFunc(n.dismiss, func() {
			n.store.Dispatch(NotificationHidden{ID: id})
		})
	}
	n.mu.Unlock()

	if n.sink != nil {
		if err := n.sink.Show(ctx, note); err != nil {
			slog.Warn("notifier error", "err", err)
		}
	}
	if n.journal != nil {
		if err := n.journal.RecordNotification(ctx, note); err != nil {
			slog.Warn("journal error", "err", err)
		}
	}
	return note
}

// Close para el timer pendiente.
func (n *Notifications) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = true
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
}
