package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"deflect-hq/roicalc/pkg/config"
)

func testConfig() config.MetricsConfig {
	return config.MetricsConfig{
		Enabled:        true,
		Namespace:      "test",
		Subsystem:      "calc",
		SavingsBuckets: []float64{0, 500, 1000},
	}
}

func TestCollector_NewCollector(t *testing.T) {
	registry := prometheus.NewRegistry()
	c := NewCollector(testConfig(), registry)

	if c.Registry() != registry {
		t.Error("Collector registry not set correctly")
	}

	own := NewCollector(config.MetricsConfig{Enabled: true}, nil)
	if own.Registry() == nil {
		t.Fatal("expected a fresh registry")
	}
	if own.config.Namespace != config.DefaultMetricsNamespace {
		t.Errorf("Namespace = %q, want default", own.config.Namespace)
	}
}

func TestCollector_RecordCalculation(t *testing.T) {
	c := NewCollector(testConfig(), prometheus.NewRegistry())

	c.RecordCalculation("growth", SourceAPI, 1286.80)
	c.RecordCalculation("growth", SourceAPI, 900)
	c.RecordCalculation("free", SourceTeaser, 10)

	if got := testutil.ToFloat64(c.calculator.calculations.WithLabelValues("growth", SourceAPI)); got != 2 {
		t.Errorf("calculations{growth,api} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.calculator.calculations.WithLabelValues("free", SourceTeaser)); got != 1 {
		t.Errorf("calculations{free,teaser} = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(c.calculator.savings); got != 2 {
		t.Errorf("savings series = %d, want 2", got)
	}
}

func TestCollector_RecordClampAndSessions(t *testing.T) {
	c := NewCollector(testConfig(), prometheus.NewRegistry())

	c.RecordClamp("free", ClampPlanCap)
	c.SetSessionsActive(3)
	c.SetSessionsActive(2)
	c.RecordAnalyticsEvent("roi_calculator_changed", "growth")
	c.RecordCatalogReload(true)
	c.RecordCatalogReload(false)

	if got := testutil.ToFloat64(c.calculator.clamps.WithLabelValues("free", ClampPlanCap)); got != 1 {
		t.Errorf("clamps = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.calculator.sessionsActive); got != 2 {
		t.Errorf("sessions_active = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.calculator.analyticsEvents.WithLabelValues("roi_calculator_changed", "growth")); got != 1 {
		t.Errorf("analytics_events = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.calculator.catalogReloads.WithLabelValues("error")); got != 1 {
		t.Errorf("catalog_reloads{error} = %v, want 1", got)
	}
}

func TestCollector_RecordHTTPRequest(t *testing.T) {
	c := NewCollector(testConfig(), prometheus.NewRegistry())

	c.RecordHTTPRequest("/v1/estimate", http.MethodPost, 200, 3*time.Millisecond)
	c.RecordHTTPRequest("", http.MethodGet, 404, time.Millisecond)
	c.RecordRateLimited()

	if got := testutil.ToFloat64(c.http.requests.WithLabelValues("/v1/estimate", "POST", "200")); got != 1 {
		t.Errorf("requests{estimate} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.http.requests.WithLabelValues("unmatched", "GET", "404")); got != 1 {
		t.Errorf("requests{unmatched} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.http.rateLimited); got != 1 {
		t.Errorf("rate_limited = %v, want 1", got)
	}
}

func TestCollector_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	c := NewCollector(cfg, prometheus.NewRegistry())

	c.RecordCalculation("growth", SourceAPI, 100)
	c.RecordClamp("free", ClampPlanCap)

	if got := testutil.ToFloat64(c.calculator.calculations.WithLabelValues("growth", SourceAPI)); got != 0 {
		t.Errorf("disabled collector recorded %v calculations", got)
	}

	// nil collectors are no-ops
	var none *Collector
	none.RecordCalculation("growth", SourceAPI, 100)
	none.SetSessionsActive(1)
	none.RecordHTTPRequest("/", "GET", 200, 0)
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector(testConfig(), prometheus.NewRegistry())
	c.RecordCalculation("scale", SourceTUI, 42)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `test_calc_calculations_total{plan="scale",source="tui"} 1`) {
		t.Errorf("metrics output missing calculation counter:\n%s", body)
	}
}
