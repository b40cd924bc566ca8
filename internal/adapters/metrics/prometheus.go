// Package metrics expone la actividad del dashboard como métricas Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder implementa ports.Metrics sobre Prometheus. Registra sus métricas
// en el registry que recibe, nunca en el global.
type Recorder struct {
	reg *prometheus.Registry

	polls       *prometheus.CounterVec
	pollLatency *prometheus.HistogramVec
	requests    *prometheus.CounterVec
	reqLatency  *prometheus.HistogramVec
	lastPrice   *prometheus.GaugeVec
}

// New registra las métricas del dashboard y los collectors de Go y de
// proceso en reg. Con reg nil crea uno propio.
func New(reg *prometheus.Registry) *Recorder {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)
	return &Recorder{
		reg: reg,
		polls: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "xtrader_polls_total",
				Help: "Total number of poller runs by outcome",
			},
			[]string{"poller", "outcome"},
		),
		pollLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "xtrader_poll_duration_seconds",
				Help:    "Duration of poller runs in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"poller"},
		),
		requests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "xtrader_backend_requests_total",
				Help: "Total number of backend requests by operation and result",
			},
			[]string{"op", "result"},
		),
		reqLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "xtrader_backend_request_duration_seconds",
				Help:    "Duration of backend requests in seconds, retries included",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		),
		lastPrice: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "xtrader_last_price",
				Help: "Last recorded price for a market",
			},
			[]string{"symbol"},
		),
	}
}

// ObservePoll cuenta una pasada de poller.
func (r *Recorder) ObservePoll(poller, outcome string, d time.Duration) {
	r.polls.WithLabelValues(poller, outcome).Inc()
	r.pollLatency.WithLabelValues(poller).Observe(d.Seconds())
}

// ObserveRequest cuenta una llamada al backend, reintentos incluidos.
func (r *Recorder) ObserveRequest(op string, ok bool, d time.Duration) {
	result := "ok"
	if !ok {
		result = "error"
	}
	r.requests.WithLabelValues(op, result).Inc()
	r.reqLatency.WithLabelValues(op).Observe(d.Seconds())
}

// ObserveQuote guarda el último precio visto de un mercado.
func (r *Recorder) ObserveQuote(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// Handler sirve el registry en formato texto de Prometheus.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
