package app

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/specialistvlad/sheetcalc/internal/result"
)

// Outcomes of an evaluation request.
const (
	outcomeOK         = "ok"
	outcomeBadRequest = "bad_request"
	outcomeTimeout    = "timeout"
	outcomeRejected   = "rejected"
)

// Metrics holds the collectors of the evaluation service.
type Metrics struct {
	registry *prometheus.Registry

	evaluations *prometheus.CounterVec
	cells       *prometheus.CounterVec
	duration    prometheus.Histogram
}

// NewMetrics creates the collectors and registers them, together with the
// Go runtime and process collectors, on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		evaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sheetcalc_evaluations_total",
				Help: "Total number of evaluation requests by outcome",
			},
			[]string{"outcome"},
		),
		cells: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sheetcalc_cells_total",
				Help: "Total number of evaluated cells by result kind",
			},
			[]string{"kind"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "sheetcalc_evaluation_duration_seconds",
				Help:    "Duration of sheet passes",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
	m.registry.MustRegister(
		m.evaluations,
		m.cells,
		m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) observePass(records map[string]result.Record, elapsed time.Duration) {
	m.evaluations.WithLabelValues(outcomeOK).Inc()
	m.duration.Observe(elapsed.Seconds())
	for _, r := range records {
		m.cells.WithLabelValues(string(r.Kind)).Inc()
	}
}

func (m *Metrics) observeFailure(outcome string) {
	m.evaluations.WithLabelValues(outcome).Inc()
}
