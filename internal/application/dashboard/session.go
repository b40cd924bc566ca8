package dashboard

import (
	"sync"

	"github.com/alejandrodnm/xtrader/internal/domain"
)

// Gate es la máquina de estados de autenticación:
// Unauthenticated → Authenticating → Authenticated.
type Gate struct {
	mu    sync.Mutex
	state domain.AuthState
}

// State devuelve el estado actual.
func (g *Gate) State() domain.AuthState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Begin pasa a Authenticating. Falla si ya hay un login en curso o hecho.
func (g *Gate) Begin() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != domain.Unauthenticated {
		return domain.ErrAuthInProgress
	}
	g.state = domain.Authenticating
	return nil
}

// Succeed pasa de Authenticating a Authenticated. Devuelve false si el gate
// no estaba autenticando (un Logout concurrente lo reseteó).
func (g *Gate) Succeed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != domain.Authenticating {
		return false
	}
	g.state = domain.Authenticated
	return true
}

// Reset vuelve a Unauthenticated desde cualquier estado.
func (g *Gate) Reset() {
	g.mu.Lock()
	g.state = domain.Unauthenticated
	g.mu.Unlock()
}
