package analytics

import (
	"log/slog"
	"maps"
)

// EventCalculatorChanged is emitted after the calculator settles on a new
// plan or volume.
const EventCalculatorChanged = "roi_calculator_changed"

// Properties are event fields. Values are primitives: string, int, float64
// or bool.
type Properties map[string]any

// Clone returns a shallow copy. Callbacks that outlive the caller get a
// clone so later mutation cannot race.
func (p Properties) Clone() Properties {
	return maps.Clone(p)
}

// Tracker receives events. Implementations must not block for long; the
// calculator calls Track from a timer goroutine.
type Tracker interface {
	Track(name string, props Properties)
}

// Func adapts a function to a Tracker.
type Func func(name string, props Properties)

// Track calls f.
func (f Func) Track(name string, props Properties) { f(name, props) }

// Nop discards every event.
type Nop struct{}

// Track does nothing.
func (Nop) Track(string, Properties) {}

// Multi fans an event out to every tracker in order.
type Multi []Tracker

// Track sends the event to each tracker.
func (m Multi) Track(name string, props Properties) {
	for _, t := range m {
		t.Track(name, props)
	}
}

// Safe wraps t so a panicking sink is recovered and logged at debug level.
// Events are fire-and-forget; a broken sink never reaches the caller.
func Safe(t Tracker, logger *slog.Logger) Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &safeTracker{next: t, logger: logger}
}

type safeTracker struct {
	next   Tracker
	logger *slog.Logger
}

func (s *safeTracker) Track(name string, props Properties) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Debug("analytics sink panicked",
				"event", name,
				"panic", r,
			)
		}
	}()
	s.next.Track(name, props)
}
