package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Simulation metrics
	simulationsTotal   *prometheus.CounterVec
	simulationDuration prometheus.Histogram
	tradesTotal        *prometheus.CounterVec
	sweepsTotal        *prometheus.CounterVec
	jobsActive         prometheus.Gauge
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
		),
	}

	reg.MustRegister(r.httpRequestsTotal)
	reg.MustRegister(r.httpRequestDuration)
	reg.MustRegister(r.httpRequestsInFlight)

	r.simulationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bankroll_simulations_total",
			Help: "Total number of sweep iterations simulated",
		},
		[]string{"status"},
	)
	r.simulationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bankroll_simulation_duration_seconds",
			Help:    "Duration of a single sweep iteration in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		},
	)
	r.tradesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bankroll_trades_total",
			Help: "Trades evaluated by the simulator, by outcome",
		},
		[]string{"outcome"},
	)
	r.sweepsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bankroll_sweeps_total",
			Help: "Total number of sweeps run",
		},
		[]string{"status"},
	)
	r.jobsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bankroll_jobs_active",
			Help: "Number of sweep jobs currently running",
		},
	)

	reg.MustRegister(r.simulationsTotal)
	reg.MustRegister(r.simulationDuration)
	reg.MustRegister(r.tradesTotal)
	reg.MustRegister(r.sweepsTotal)
	reg.MustRegister(r.jobsActive)

	return r
}

// RecordRequest records metrics for an HTTP request.
func (r *Registry) RecordRequest(method, path string, status int, duration float64) {
	statusStr := statusToString(status)
	r.httpRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	r.httpRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// InFlightInc increments in-flight requests.
func (r *Registry) InFlightInc() {
	r.httpRequestsInFlight.Inc()
}

// InFlightDec decrements in-flight requests.
func (r *Registry) InFlightDec() {
	r.httpRequestsInFlight.Dec()
}

// RecordSimulation records one sweep iteration.
func (r *Registry) RecordSimulation(status string, seconds float64) {
	r.simulationsTotal.WithLabelValues(status).Inc()
	r.simulationDuration.Observe(seconds)
}

// RecordTrades adds a simulation's per-row outcomes to the trade counters.
func (r *Registry) RecordTrades(taken, skippedCapacity, skippedLossStreak int) {
	r.tradesTotal.WithLabelValues("taken").Add(float64(taken))
	r.tradesTotal.WithLabelValues("skipped_capacity").Add(float64(skippedCapacity))
	r.tradesTotal.WithLabelValues("skipped_loss_streak").Add(float64(skippedLossStreak))
}

// RecordSweep records a finished sweep.
func (r *Registry) RecordSweep(status string) {
	r.sweepsTotal.WithLabelValues(status).Inc()
}

// SetJobsActive sets the number of running sweep jobs.
func (r *Registry) SetJobsActive(count int) {
	r.jobsActive.Set(float64(count))
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.Registry, promhttp.HandlerOpts{Registry: r.Registry})
}

// WriteTextfile dumps the registry in the node_exporter textfile format.
func (r *Registry) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.Registry)
}

func statusToString(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
