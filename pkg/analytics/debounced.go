package analytics

import (
	"time"

	"deflect-hq/roicalc/pkg/debounce"
)

// Debounced forwards only the last event of a burst, once no event has
// arrived for the quiet interval. Dragging a slider produces one event.
type Debounced struct {
	next      Tracker
	debouncer *debounce.Debouncer
}

// NewDebounced wraps next. An interval of zero forwards synchronously.
func NewDebounced(next Tracker, interval time.Duration) *Debounced {
	d := &Debounced{next: next}
	if interval > 0 {
		d.debouncer = debounce.New(interval)
	}
	return d
}

// Track schedules the event, replacing any pending one. props is cloned.
func (d *Debounced) Track(name string, props Properties) {
	if d.debouncer == nil {
		d.next.Track(name, props)
		return
	}

	snapshot := props.Clone()
	d.debouncer.Trigger(func() {
		d.next.Track(name, snapshot)
	})
}

// Stop drops any pending event. Later events are ignored.
func (d *Debounced) Stop() {
	if d.debouncer != nil {
		d.debouncer.Stop()
	}
}
