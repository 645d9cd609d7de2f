package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the access service.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Permission resolution metrics
	PermissionChecksTotal *prometheus.CounterVec
	AuthContextVersion    prometheus.Gauge

	// Department switch metrics
	DepartmentSwitchesTotal  *prometheus.CounterVec
	DepartmentSwitchDuration *prometheus.HistogramVec
	SwitchesInFlight         prometheus.Gauge

	// Navigation metrics
	NavigationPathDepth prometheus.Gauge

	// Persistence metrics
	PreferenceSavesTotal       prometheus.Counter
	PreferenceSaveFailuresTotal prometheus.Counter
}

// NewMetrics creates and registers all metrics on the given registry. A nil
// registry gets a fresh one, which keeps tests isolated.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	m := &Metrics{
		registry: registry,

		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cadence_access_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cadence_access_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		PermissionChecksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cadence_access_permission_checks_total",
				Help: "Total number of permission checks by result",
			},
			[]string{"result"},
		),
		AuthContextVersion: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "cadence_access_auth_context_version",
				Help: "Permission version of the currently held auth context",
			},
		),

		DepartmentSwitchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cadence_access_department_switches_total",
				Help: "Total number of department switch operations by outcome",
			},
			[]string{"outcome"},
		),
		DepartmentSwitchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cadence_access_department_switch_duration_seconds",
				Help:    "Department switch round-trip duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
		SwitchesInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "cadence_access_switches_in_flight",
				Help: "Number of department switch calls currently in flight",
			},
		),

		NavigationPathDepth: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "cadence_access_navigation_path_depth",
				Help: "Current depth of the breadcrumb department path",
			},
		),

		PreferenceSavesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cadence_access_preference_saves_total",
				Help: "Total number of navigation preference persistence attempts",
			},
		),
		PreferenceSaveFailuresTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cadence_access_preference_save_failures_total",
				Help: "Total number of failed navigation preference persistence attempts",
			},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.PermissionChecksTotal,
		m.AuthContextVersion,
		m.DepartmentSwitchesTotal,
		m.DepartmentSwitchDuration,
		m.SwitchesInFlight,
		m.NavigationPathDepth,
		m.PreferenceSavesTotal,
		m.PreferenceSaveFailuresTotal,
	)

	return m
}

// Handler returns the /metrics HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveHTTPRequest records a completed HTTP request.
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// ObservePermissionCheck records a permission check result: "allowed",
// "denied", or "error".
func (m *Metrics) ObservePermissionCheck(result string) {
	m.PermissionChecksTotal.WithLabelValues(result).Inc()
}

// ObserveDepartmentSwitch records a completed switch operation.
func (m *Metrics) ObserveDepartmentSwitch(outcome string, duration time.Duration) {
	m.DepartmentSwitchesTotal.WithLabelValues(outcome).Inc()
	m.DepartmentSwitchDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}
