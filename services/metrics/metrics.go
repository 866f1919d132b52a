package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const jobName = "pricechecker"

// Metrics holds the collectors of a single run
type Metrics struct {
	registry *prometheus.Registry

	RowsTotal       *prometheus.CounterVec
	FetchErrors     *prometheus.CounterVec
	RecorderErrors  *prometheus.CounterVec
	RunDuration     prometheus.Gauge
	LastSuccessTime prometheus.Gauge
}

// New creates and registers the run collectors on a private registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RowsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pricechecker_rows_total",
			Help: "Result rows built, by domain and whether a price was found",
		}, []string{"domain", "result"}),
		FetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pricechecker_fetch_errors_total",
			Help: "Pages that could not be fetched, by domain",
		}, []string{"domain"}),
		RecorderErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pricechecker_recorder_errors_total",
			Help: "Failed best-effort row recordings, by recorder",
		}, []string{"recorder"}),
		RunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pricechecker_run_duration_seconds",
			Help: "Duration of the last run",
		}),
		LastSuccessTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pricechecker_last_success_timestamp_seconds",
			Help: "Unix time of the last run that appended its rows",
		}),
	}

	m.registry.MustRegister(m.RowsTotal, m.FetchErrors, m.RecorderErrors, m.RunDuration, m.LastSuccessTime)
	return m
}

// Registry returns the registry holding the run collectors
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRow counts one built row
func (m *Metrics) ObserveRow(domain string, priced, fetchFailed bool) {
	result := "priced"
	if !priced {
		result = "not_available"
	}
	m.RowsTotal.WithLabelValues(domain, result).Inc()
	if fetchFailed {
		m.FetchErrors.WithLabelValues(domain).Inc()
	}
}

// ObserveRecorderError counts a failed recording
func (m *Metrics) ObserveRecorderError(recorder string) {
	m.RecorderErrors.WithLabelValues(recorder).Inc()
}

// ObserveRun records the run duration and, on success, its completion time
func (m *Metrics) ObserveRun(duration time.Duration, succeeded bool) {
	m.RunDuration.Set(duration.Seconds())
	if succeeded {
		m.LastSuccessTime.SetToCurrentTime()
	}
}

// Push sends the collected metrics to a Prometheus Pushgateway
func (m *Metrics) Push(gatewayURL string) error {
	return push.New(gatewayURL, jobName).Gatherer(m.registry).Push()
}
