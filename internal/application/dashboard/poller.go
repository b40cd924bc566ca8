package dashboard

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/alejandrodnm/xtrader/internal/ports"
)

// PollFunc ejecuta un poll y devuelve su resultado (ports.PollOK,
// ports.PollFallback o ports.PollError).
type PollFunc func(ctx context.Context) string

// Poller repite una tarea: una vez al arrancar y luego en cada tick.
type Poller struct {
	name     string
	interval time.Duration
	fn       PollFunc
	metrics  ports.Metrics

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewPoller crea un Poller parado.
func NewPoller(name string, interval time.Duration, fn PollFunc, metrics ports.Metrics) *Poller {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &Poller{name: name, interval: interval, fn: fn, metrics: metrics}
}

// Start arranca el loop. Si ya está corriendo no hace nada.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.run(ctx, p.done)
}

// Stop cancela el loop y espera a que termine. Al volver, el poller ya no
// toca el estado.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running indica si el loop está activo.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

// RunOnce ejecuta la tarea una vez en el goroutine del caller.
func (p *Poller) RunOnce(ctx context.Context) string {
	return p.tick(ctx)
}

func (p *Poller) run(ctx context.Context, done chan<- struct{}) {
	defer close(done)
	slog.Debug("poller starting", "poller", p.name, "interval", p.interval)

	p.tick(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Debug("poller stopped", "poller", p.name)
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) string {
	start := time.Now()
	outcome := p.fn(ctx)
	if ctx.Err() != nil {
		// Cancelado a mitad: no cuenta.
		return outcome
	}
	p.metrics.ObservePoll(p.name, outcome, time.Since(start))
	if outcome != ports.PollOK {
		slog.Debug("poll degraded", "poller", p.name, "outcome", outcome)
	}
	return outcome
}

// PollerSet agrupa los pollers del dashboard. Recuerda el contexto con el
// que se armó para poder rearmar pollers sueltos.
type PollerSet struct {
	mu      sync.Mutex
	pollers []*Poller
	ctx     context.Context
}

// NewPollerSet crea el set con los pollers dados, en ese orden.
func NewPollerSet(pollers ...*Poller) *PollerSet {
	return &PollerSet{pollers: pollers}
}

// Start arma todos los pollers.
func (s *PollerSet) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctx = ctx
	for _, p := range s.pollers {
		p.Start(ctx)
	}
}

// Stop para todos los pollers y espera a que terminen.
func (s *PollerSet) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctx = nil
	var wg sync.WaitGroup
	for _, p := range s.pollers {
		wg.Add(1)
		go func(p *Poller) {
			defer wg.Done()
			p.Stop()
		}(p)
	}
	wg.Wait()
}

// Restart para y vuelve a arrancar los pollers nombrados. No hace nada si
// el set no está armado.
func (s *PollerSet) Restart(names ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx == nil {
		return
	}
	for _, p := range s.pollers {
		for _, n := range names {
			if p.name == n {
				p.Stop()
				p.Start(s.ctx)
			}
		}
	}
}

// Armed indica si el set está arrancado.
func (s *PollerSet) Armed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx != nil
}

// RunOnce ejecuta cada poller una vez, en paralelo, y espera.
func (s *PollerSet) RunOnce(ctx context.Context) map[string]string {
	s.mu.Lock()
	pollers := append([]*Poller(nil), s.pollers...)
	s.mu.Unlock()

	var mu sync.Mutex
	out := make(map[string]string, len(pollers))
	var wg sync.WaitGroup
	for _, p := range pollers {
		wg.Add(1)
		go func(p *Poller) {
			defer wg.Done()
			outcome := p.RunOnce(ctx)
			mu.Lock()
			out[p.name] = outcome
			mu.Unlock()
		}(p)
	}
	wg.Wait()
	return out
}
