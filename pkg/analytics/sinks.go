package analytics

import (
	"fmt"
	"log/slog"
	"sort"

	"deflect-hq/roicalc/pkg/config"
	"deflect-hq/roicalc/pkg/telemetry/metrics"
)

// LogTracker writes events as structured log records at info level.
type LogTracker struct {
	logger *slog.Logger
}

// NewLogTracker creates a log sink.
func NewLogTracker(logger *slog.Logger) *LogTracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogTracker{logger: logger.With("component", "analytics")}
}

// Track logs the event with its properties in key order.
func (l *LogTracker) Track(name string, props Properties) {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	args := make([]any, 0, 2+2*len(keys))
	args = append(args, "event", name)
	for _, k := range keys {
		args = append(args, k, props[k])
	}
	l.logger.Info("analytics event", args...)
}

// MetricsTracker counts events by name and plan.
type MetricsTracker struct {
	collector *metrics.Collector
}

// NewMetricsTracker creates a Prometheus sink.
func NewMetricsTracker(collector *metrics.Collector) *MetricsTracker {
	return &MetricsTracker{collector: collector}
}

// Track increments the event counter. A missing plan is labeled "unknown".
func (m *MetricsTracker) Track(name string, props Properties) {
	plan, _ := props["plan"].(string)
	if plan == "" {
		plan = "unknown"
	}
	m.collector.RecordAnalyticsEvent(name, plan)
}

// FromConfig builds the configured sinks wrapped in Safe. It returns Nop
// when analytics is disabled.
func FromConfig(cfg config.AnalyticsConfig, logger *slog.Logger, collector *metrics.Collector) (Tracker, error) {
	if !cfg.Enabled {
		return Nop{}, nil
	}

	var sinks Multi
	for _, name := range cfg.Sinks {
		switch name {
		case "log":
			sinks = append(sinks, NewLogTracker(logger))
		case "metrics":
			sinks = append(sinks, NewMetricsTracker(collector))
		default:
			return nil, fmt.Errorf("unknown analytics sink %q", name)
		}
	}
	if len(sinks) == 0 {
		return Nop{}, nil
	}

	return Safe(sinks, logger), nil
}
