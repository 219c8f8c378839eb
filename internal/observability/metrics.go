// Package observability holds the prometheus instruments of the service.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const Namespace = "carebot"

// Metrics groups all Prometheus instruments used by the service.
type Metrics struct {
	reg prometheus.Gatherer

	Turns            *prometheus.CounterVec
	TurnLatency      *prometheus.HistogramVec
	GenerationErrors prometheus.Counter
	FlagsRaised      *prometheus.CounterVec
	RetrievedMatches prometheus.Histogram
	HTTPRequests     *prometheus.CounterVec
}

// NewMetrics registers the instruments on reg. A nil reg gets a fresh registry
// with the go and process collectors.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	f := promauto.With(reg)

	return &Metrics{
		reg: reg,
		Turns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "turns_total",
			Help:      "Chat turns by resolved intent.",
		}, []string{"intent"}),
		TurnLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "turn_latency_ms",
			Help:      "Time to produce a reply in milliseconds.",
			Buckets:   []float64{5, 25, 100, 250, 500, 1000, 2500, 5000, 10000},
		}, []string{"intent"}),
		GenerationErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "generation_fallbacks_total",
			Help:      "Turns answered with the fallback text after a generator failure.",
		}),
		FlagsRaised: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "flags_raised_total",
			Help:      "Serious issues flagged by severity category.",
		}, []string{"category"}),
		RetrievedMatches: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "retrieved_matches",
			Help:      "Similar past messages found per normal turn.",
			Buckets:   []float64{0, 1, 2, 3, 5, 10},
		}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
	}
}

func (m *Metrics) ObserveTurn(intent string, d time.Duration) {
	m.Turns.WithLabelValues(intent).Inc()
	m.TurnLatency.WithLabelValues(intent).Observe(float64(d.Milliseconds()))
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
