package calculator

import (
	"log/slog"
	"time"

	"deflect-hq/roicalc/pkg/analytics"
	"deflect-hq/roicalc/pkg/costmodel"
	"deflect-hq/roicalc/pkg/telemetry/metrics"
)

// Defaults for a new controller.
const (
	DefaultVolume   = 500
	DefaultDebounce = 200 * time.Millisecond
)

// Slider is the volume input contract: values from Min to Max in Step
// increments.
type Slider struct {
	Min  int `json:"min"`
	Max  int `json:"max"`
	Step int `json:"step"`
}

// DefaultSlider spans 0 to 5000 interactions in steps of 50.
var DefaultSlider = Slider{Min: 0, Max: 5000, Step: 50}

// Normalize snaps v to the nearest step and bounds it to [Min, Max].
func (s Slider) Normalize(v int) int {
	if s.Step > 1 {
		offset := v - s.Min
		r := offset % s.Step
		if r < 0 {
			r += s.Step
		}
		offset -= r
		if 2*r >= s.Step {
			offset += s.Step
		}
		v = s.Min + offset
	}
	if v < s.Min {
		v = s.Min
	}
	if s.Max > s.Min && v > s.Max {
		v = s.Max
	}
	return v
}

type options struct {
	clock         func() time.Time
	duration      time.Duration
	tracker       analytics.Tracker
	debounce      time.Duration
	preset        costmodel.Preset
	teaserPreset  costmodel.TeaserPreset
	defaultPlan   string
	defaultVolume int
	slider        Slider
	logger        *slog.Logger
	collector     *metrics.Collector
	source        string
}

func defaultOptions() options {
	return options{
		clock:         time.Now,
		duration:      DefaultDuration,
		tracker:       analytics.Nop{},
		debounce:      DefaultDebounce,
		preset:        costmodel.FullyLoaded,
		teaserPreset:  costmodel.HomepageTeaser,
		defaultVolume: DefaultVolume,
		slider:        DefaultSlider,
	}
}

// Option configures a Controller.
type Option func(*options)

// WithClock sets the time source used to start and sample animations.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithDuration sets the animation length. Zero makes changes instant.
func WithDuration(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.duration = d
		}
	}
}

// WithTracker sets the analytics sink for change events.
func WithTracker(t analytics.Tracker) Option {
	return func(o *options) {
		if t != nil {
			o.tracker = t
		}
	}
}

// WithDebounce sets the quiet period before a change event is emitted.
// Zero emits synchronously on every change.
func WithDebounce(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.debounce = d
		}
	}
}

// WithPreset sets the cost constants of the full model.
func WithPreset(p costmodel.Preset) Option {
	return func(o *options) { o.preset = p }
}

// WithTeaserPreset sets the constants of the teaser figures.
func WithTeaserPreset(p costmodel.TeaserPreset) Option {
	return func(o *options) { o.teaserPreset = p }
}

// WithDefaults sets the initial plan and volume. The volume is also the one
// restored when leaving the most restrictive plan while pinned at its cap.
// An empty planID keeps the catalog default.
func WithDefaults(planID string, volume int) Option {
	return func(o *options) {
		o.defaultPlan = planID
		if volume >= 0 {
			o.defaultVolume = volume
		}
	}
}

// WithSlider sets the volume input contract.
func WithSlider(min, max, step int) Option {
	return func(o *options) {
		o.slider = Slider{Min: min, Max: max, Step: step}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMetrics records calculations and clamps against collector, labeled
// with source.
func WithMetrics(collector *metrics.Collector, source string) Option {
	return func(o *options) {
		o.collector = collector
		o.source = source
	}
}
