package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"deflect-hq/roicalc/pkg/config"
)

// Collector owns the Prometheus registry for roicalc and every metric
// recorded against it. All Record methods are safe on a nil *Collector and
// on a disabled one, so components can take an optional collector.
type Collector struct {
	config   config.MetricsConfig
	registry *prometheus.Registry

	calculator *CalculatorMetrics
	http       *HTTPMetrics
}

// NewCollector creates a collector with the specified configuration and
// registry. If registry is nil, a fresh registry is created with the Go
// runtime and process collectors registered.
//
// Example:
//
//	collector := metrics.NewCollector(cfg.Telemetry.Metrics, nil)
//	collector.RecordCalculation("growth", metrics.SourceAPI, 1286.80)
func NewCollector(cfg config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}
	if len(cfg.SavingsBuckets) == 0 {
		cfg.SavingsBuckets = []float64{0, 100, 500, 1000, 2500, 5000, 10000, 50000}
	}

	return &Collector{
		config:     cfg,
		registry:   registry,
		calculator: NewCalculatorMetrics(cfg, registry),
		http:       NewHTTPMetrics(cfg, registry),
	}
}

func (c *Collector) enabled() bool {
	return c != nil && c.config.Enabled
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
