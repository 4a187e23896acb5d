// Package analytics delivers fire-and-forget calculator events.
//
// A Tracker is any sink with a Track method. Sinks compose:
//
//	sink, _ := analytics.FromConfig(cfg.Analytics, logger, collector) // Safe(Multi{log, metrics})
//	tracker := analytics.NewDebounced(sink, cfg.Analytics.Debounce)
//	defer tracker.Stop()
//
// Safe recovers panics from a sink so analytics failures never reach the
// calculator.
package analytics
