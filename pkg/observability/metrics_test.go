package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsRegisters(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)

	m.ObserveHTTPRequest(http.MethodGet, "/api/v1/navigation/state", 200, 10*time.Millisecond)
	m.ObservePermissionCheck("allowed")
	m.ObserveDepartmentSwitch("success", 50*time.Millisecond)
	m.SwitchesInFlight.Inc()
	m.NavigationPathDepth.Set(3)
	m.PreferenceSavesTotal.Inc()

	families, err := registry.Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, family := range families {
		names[family.GetName()] = true
	}
	for _, want := range []string{
		"cadence_access_http_requests_total",
		"cadence_access_permission_checks_total",
		"cadence_access_department_switches_total",
		"cadence_access_switches_in_flight",
		"cadence_access_navigation_path_depth",
		"cadence_access_preference_saves_total",
	} {
		assert.True(t, names[want], "missing metric %s", want)
	}
}

func TestMetricsHandler(t *testing.T) {
	m := NewMetrics(nil)
	m.ObservePermissionCheck("denied")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "cadence_access_permission_checks_total")
}

func TestNilRegistryIsolation(t *testing.T) {
	// Two metric sets on fresh registries must not collide.
	first := NewMetrics(nil)
	second := NewMetrics(nil)
	first.PreferenceSavesTotal.Inc()
	second.PreferenceSavesTotal.Inc()
}
