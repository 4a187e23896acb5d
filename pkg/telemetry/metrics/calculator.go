package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"deflect-hq/roicalc/pkg/config"
)

// Sources label where a calculation was requested from.
const (
	SourceAPI     = "api"
	SourceSession = "session"
	SourceTeaser  = "teaser"
	SourceTUI     = "tui"
)

// Clamp reasons.
const (
	ClampPlanCap    = "plan_cap"
	ClampSliderMax  = "slider_max"
	ClampSliderMin  = "slider_min"
	ClampPlanSwitch = "plan_switch"
)

// CalculatorMetrics tracks calculator and session activity.
//
// Metrics:
//   - roicalc_calculator_calculations_total: estimates by plan and source
//   - roicalc_calculator_savings_usd: distribution of monthly savings
//   - roicalc_calculator_clamps_total: volume clamps by plan and reason
//   - roicalc_calculator_sessions_active: live calculator sessions
//   - roicalc_calculator_analytics_events_total: emitted analytics events
//   - roicalc_calculator_catalog_reloads_total: catalog reloads by result
type CalculatorMetrics struct {
	calculations    *prometheus.CounterVec
	savings         *prometheus.HistogramVec
	clamps          *prometheus.CounterVec
	sessionsActive  prometheus.Gauge
	analyticsEvents *prometheus.CounterVec
	catalogReloads  *prometheus.CounterVec
}

// NewCalculatorMetrics creates and registers calculator metrics.
func NewCalculatorMetrics(cfg config.MetricsConfig, registry *prometheus.Registry) *CalculatorMetrics {
	m := &CalculatorMetrics{
		calculations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "calculations_total",
				Help:      "Total cost estimates computed by plan and source",
			},
			[]string{"plan", "source"},
		),

		savings: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "savings_usd",
				Help:      "Monthly savings in USD per estimate",
				Buckets:   cfg.SavingsBuckets,
			},
			[]string{"plan"},
		),

		clamps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "clamps_total",
				Help:      "Volume inputs clamped by plan and reason",
			},
			[]string{"plan", "reason"},
		),

		sessionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "sessions_active",
				Help:      "Number of live calculator sessions",
			},
		),

		analyticsEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "analytics_events_total",
				Help:      "Analytics events emitted by event name and plan",
			},
			[]string{"event", "plan"},
		),

		catalogReloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "catalog_reloads_total",
				Help:      "Plan catalog reloads by result",
			},
			[]string{"result"},
		),
	}

	registry.MustRegister(
		m.calculations,
		m.savings,
		m.clamps,
		m.sessionsActive,
		m.analyticsEvents,
		m.catalogReloads,
	)

	return m
}

// RecordCalculation records one computed estimate and its savings.
func (c *Collector) RecordCalculation(plan, source string, savings float64) {
	if !c.enabled() {
		return
	}
	c.calculator.calculations.WithLabelValues(plan, source).Inc()
	c.calculator.savings.WithLabelValues(plan).Observe(savings)
}

// RecordClamp records a volume that was clamped.
func (c *Collector) RecordClamp(plan, reason string) {
	if !c.enabled() {
		return
	}
	c.calculator.clamps.WithLabelValues(plan, reason).Inc()
}

// SetSessionsActive sets the live session gauge.
func (c *Collector) SetSessionsActive(n int) {
	if !c.enabled() {
		return
	}
	c.calculator.sessionsActive.Set(float64(n))
}

// RecordAnalyticsEvent records an emitted analytics event.
func (c *Collector) RecordAnalyticsEvent(event, plan string) {
	if !c.enabled() {
		return
	}
	c.calculator.analyticsEvents.WithLabelValues(event, plan).Inc()
}

// RecordCatalogReload records a catalog reload attempt.
func (c *Collector) RecordCatalogReload(ok bool) {
	if !c.enabled() {
		return
	}
	result := "success"
	if !ok {
		result = "error"
	}
	c.calculator.catalogReloads.WithLabelValues(result).Inc()
}
