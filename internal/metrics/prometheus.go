package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus implements Recorder with client_golang collectors.
type Prometheus struct {
	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec

	mutations *prometheus.CounterVec

	events       *prometheus.CounterVec
	exports      *prometheus.CounterVec
	exportedRows *prometheus.CounterVec
	alerts       *prometheus.CounterVec
	circuitState *prometheus.GaugeVec
	circuitOpens *prometheus.CounterVec
}

var _ Recorder = (*Prometheus)(nil)

func NewPrometheus(namespace string) *Prometheus {
	return &Prometheus{
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests per route, method and status",
			},
			[]string{"route", "method", "status"},
		),
		httpLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency per route",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms to ~4s
			},
			[]string{"route", "method"},
		),
		mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "mutations_total",
				Help:      "Total number of wallet mutations per entity, operation and outcome",
			},
			[]string{"entity", "operation", "outcome"},
		),
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_published_total",
				Help:      "Total number of published wallet events per kind and status",
			},
			[]string{"kind", "status"},
		),
		exports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "exports_total",
				Help:      "Total number of sheet exports per kind and status",
			},
			[]string{"kind", "status"},
		),
		exportedRows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "exported_rows_total",
				Help:      "Total number of transaction rows handed to the exporter",
			},
			[]string{"kind"},
		),
		alerts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reminder_alerts_total",
				Help:      "Total number of reminder alerts raised per level",
			},
			[]string{"level"},
		),
		circuitState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "circuit_state",
				Help:      "Current circuit breaker state (0=closed, 1=open, 2=half-open)",
			},
			[]string{"name"},
		),
		circuitOpens: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "circuit_opens_total",
				Help:      "Total number of circuit breaker opens",
			},
			[]string{"name"},
		),
	}
}

// Register registers all metrics with the given registerer.
func (p *Prometheus) Register(registry prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		p.httpRequests,
		p.httpLatency,
		p.mutations,
		p.events,
		p.exports,
		p.exportedRows,
		p.alerts,
		p.circuitState,
		p.circuitOpens,
	}
	for _, collector := range collectors {
		if err := registry.Register(collector); err != nil {
			return err
		}
	}
	return nil
}

func (p *Prometheus) RecordHTTP(route, method string, status int, duration time.Duration) {
	p.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	p.httpLatency.WithLabelValues(route, method).Observe(duration.Seconds())
}

func (p *Prometheus) RecordMutation(entity, operation, outcome string) {
	p.mutations.WithLabelValues(entity, operation, outcome).Inc()
}

func (p *Prometheus) RecordEvent(kind string, success bool) {
	p.events.WithLabelValues(kind, status(success)).Inc()
}

func (p *Prometheus) RecordExport(kind string, rows int, success bool) {
	p.exports.WithLabelValues(kind, status(success)).Inc()
	if success {
		p.exportedRows.WithLabelValues(kind).Add(float64(rows))
	}
}

func (p *Prometheus) RecordAlert(level string) {
	p.alerts.WithLabelValues(level).Inc()
}

func (p *Prometheus) RecordCircuitState(name string, state CircuitState) {
	p.circuitState.WithLabelValues(name).Set(float64(state))
	if state == CircuitOpen {
		p.circuitOpens.WithLabelValues(name).Inc()
	}
}

func status(success bool) string {
	if success {
		return "success"
	}
	return "error"
}
