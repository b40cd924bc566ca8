package ports

import "time"

// Resultados de un poll para métricas.
const (
	PollOK       = "ok"
	PollFallback = "fallback"
	PollError    = "error"
)

// Metrics registra la actividad del orquestador.
type Metrics interface {
	ObservePoll(poller, outcome string, d time.Duration)
	ObserveRequest(op string, ok bool, d time.Duration)
	ObserveQuote(symbol string, price float64)
}

// NopMetrics descarta todo.
type NopMetrics struct{}

func (NopMetrics) ObservePoll(string, string, time.Duration)  {}
func (NopMetrics) ObserveRequest(string, bool, time.Duration) {}
func (NopMetrics) ObserveQuote(string, float64)               {}
