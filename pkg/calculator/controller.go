package calculator

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"deflect-hq/roicalc/pkg/analytics"
	"deflect-hq/roicalc/pkg/costmodel"
	"deflect-hq/roicalc/pkg/plans"
	"deflect-hq/roicalc/pkg/telemetry/metrics"
)

// ErrUnknownPlan is returned by SelectPlan for an ID not in the catalog.
var ErrUnknownPlan = plans.ErrUnknownPlan

// ErrNoCatalog is returned by New when no catalog is given.
var ErrNoCatalog = errors.New("calculator: nil plan catalog")

// ErrDefaultPlan is returned by New when the configured default plan is not
// in the catalog. It wraps ErrUnknownPlan.
var ErrDefaultPlan = errors.New("calculator: default plan not in catalog")

// State is a snapshot of the calculator inputs and their targets.
type State struct {
	Plan   plans.Plan `json:"plan"`
	Volume int        `json:"volume"`

	// LimitReached is the advisory raised when a volume was clamped to the
	// plan's cap. It clears when volume is set within the cap or the plan
	// changes without clamping.
	LimitReached bool `json:"limit_reached"`

	Breakdown costmodel.Breakdown    `json:"breakdown"`
	Teaser    costmodel.TeaserResult `json:"teaser"`

	Slider         Slider `json:"slider"`
	CatalogVersion string `json:"catalog_version"`
}

// Frame holds the animated display value of every numeric output at one
// instant.
type Frame struct {
	BaselineHumanCost float64 `json:"baseline_human_cost"`
	PlanCost          float64 `json:"plan_cost"`
	ResidualAgentCost float64 `json:"residual_agent_cost"`
	TotalCost         float64 `json:"total_cost"`
	Savings           float64 `json:"savings"`
	HoursSaved        float64 `json:"hours_saved"`
	TeaserHoursSaved  float64 `json:"teaser_hours_saved"`
	TeaserMoneySaved  float64 `json:"teaser_money_saved"`

	// Settled is true once every value equals its target.
	Settled bool `json:"settled"`
}

type field int

const (
	fieldBaseline field = iota
	fieldPlanCost
	fieldResidual
	fieldTotal
	fieldSavings
	fieldHoursSaved
	fieldTeaserHours
	fieldTeaserMoney
	numFields
)

// Controller owns one calculator: the selected plan, the volume, and the
// animated outputs derived from them. Each change recomputes the cost model
// synchronously and retargets the tweens. A Controller is not safe for
// concurrent use.
type Controller struct {
	catalog *plans.Catalog
	opts    options
	logger  *slog.Logger
	tracker *analytics.Debounced

	plan         plans.Plan
	volume       int
	limitReached bool
	breakdown    costmodel.Breakdown
	teaser       costmodel.TeaserResult
	tweens       [numFields]Tween
	closed       bool
}

// New creates a controller on catalog's default plan (or the one set by
// WithDefaults) at the default volume. The display starts settled at the
// initial outputs.
func New(catalog *plans.Catalog, opts ...Option) (*Controller, error) {
	if catalog == nil {
		return nil, ErrNoCatalog
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "calculator")

	plan := catalog.Default()
	if o.defaultPlan != "" {
		p, err := catalog.Lookup(o.defaultPlan)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDefaultPlan, err)
		}
		plan = p
	}

	c := &Controller{
		catalog: catalog,
		opts:    o,
		logger:  logger,
		tracker: analytics.NewDebounced(analytics.Safe(o.tracker, logger), o.debounce),
		plan:    plan,
		volume:  plan.Clamp(o.slider.Normalize(o.defaultVolume)),
	}

	c.recompute()
	targets := c.targets()
	for i := range c.tweens {
		c.tweens[i] = Settled(targets[i])
	}

	return c, nil
}

// SelectPlan switches to the plan with id. Moving to a different plan clears
// the advisory; reselecting the current one keeps it. Then:
// leaving the most restrictive plan while pinned at its cap resets volume
// to the default, and a volume above the new plan's cap is clamped to it
// with the advisory raised.
func (c *Controller) SelectPlan(id string) error {
	p, err := c.catalog.Lookup(id)
	if err != nil {
		return fmt.Errorf("select plan: %w", err)
	}

	prev := c.plan
	c.plan = p
	if prev.ID != p.ID {
		c.limitReached = false
	}

	if prev.ID != p.ID &&
		prev.Capped() && c.volume == prev.MaxVolume &&
		c.catalog.IsMostRestrictive(prev.ID) && !c.catalog.IsMostRestrictive(p.ID) {
		c.volume = c.opts.slider.Normalize(c.opts.defaultVolume)
		c.opts.collector.RecordClamp(p.ID, metrics.ClampPlanSwitch)
		c.logger.Debug("volume reset after leaving capped plan",
			"from_plan", prev.ID,
			"to_plan", p.ID,
			"volume", c.volume,
		)
	}

	if !p.Allows(c.volume) {
		c.volume = p.MaxVolume
		c.limitReached = true
		c.opts.collector.RecordClamp(p.ID, metrics.ClampPlanCap)
	}

	c.transition()
	return nil
}

// SetVolume moves the slider to v. v is snapped to the slider step and
// bounded to its range. A requested volume above the plan's cap raises the
// advisory; at or below the cap the advisory clears. The snapped volume
// never exceeds the cap, which need not be a multiple of the step.
func (c *Controller) SetVolume(v int) {
	sl := c.opts.slider
	bounded := v
	switch {
	case v > sl.Max:
		bounded = sl.Max
		c.opts.collector.RecordClamp(c.plan.ID, metrics.ClampSliderMax)
	case v < sl.Min:
		bounded = sl.Min
		c.opts.collector.RecordClamp(c.plan.ID, metrics.ClampSliderMin)
	}

	c.limitReached = !c.plan.Allows(bounded)
	if c.limitReached {
		c.opts.collector.RecordClamp(c.plan.ID, metrics.ClampPlanCap)
	}

	n := sl.Normalize(v)
	if !c.plan.Allows(n) {
		n = c.plan.MaxVolume
	}

	c.volume = n
	c.transition()
}

// State returns a snapshot of the inputs and target outputs.
func (c *Controller) State() State {
	return State{
		Plan:           c.plan,
		Volume:         c.volume,
		LimitReached:   c.limitReached,
		Breakdown:      c.breakdown,
		Teaser:         c.teaser,
		Slider:         c.opts.slider,
		CatalogVersion: c.catalog.Version(),
	}
}

// Catalog returns the catalog the controller selects plans from.
func (c *Controller) Catalog() *plans.Catalog {
	return c.catalog
}

// Frame samples every tween at now.
func (c *Controller) Frame(now time.Time) Frame {
	var v [numFields]float64
	for i, t := range c.tweens {
		v[i] = t.Value(now)
	}
	return newFrame(v, c.Settled(now))
}

// Target returns the frame the display is heading to, as it will read once
// the animation settles. Surfaces that cannot animate render this.
func (c *Controller) Target() Frame {
	return newFrame(c.targets(), true)
}

func newFrame(v [numFields]float64, settled bool) Frame {
	return Frame{
		BaselineHumanCost: v[fieldBaseline],
		PlanCost:          v[fieldPlanCost],
		ResidualAgentCost: v[fieldResidual],
		TotalCost:         v[fieldTotal],
		Savings:           v[fieldSavings],
		HoursSaved:        v[fieldHoursSaved],
		TeaserHoursSaved:  v[fieldTeaserHours],
		TeaserMoneySaved:  v[fieldTeaserMoney],
		Settled:           settled,
	}
}

// Current samples the tweens at the controller's clock.
func (c *Controller) Current() Frame {
	return c.Frame(c.opts.clock())
}

// Settled reports whether every display value has reached its target.
func (c *Controller) Settled(now time.Time) bool {
	for _, t := range c.tweens {
		if !t.Done(now) {
			return false
		}
	}
	return true
}

// Close drops any pending analytics event. The controller stays usable but
// emits nothing further.
func (c *Controller) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.tracker.Stop()
}

func (c *Controller) recompute() {
	c.breakdown = costmodel.Compute(c.volume, c.plan, c.opts.preset)
	c.teaser = costmodel.TeaserSavings(c.volume, c.opts.teaserPreset)
}

func (c *Controller) targets() [numFields]float64 {
	b := c.breakdown
	return [numFields]float64{
		fieldBaseline:    b.BaselineHumanCost,
		fieldPlanCost:    b.PlanCost,
		fieldResidual:    b.ResidualAgentCost,
		fieldTotal:       b.TotalCost,
		fieldSavings:     b.Savings,
		fieldHoursSaved:  b.HoursSaved,
		fieldTeaserHours: float64(c.teaser.HoursSaved),
		fieldTeaserMoney: float64(c.teaser.MoneySaved),
	}
}

func (c *Controller) transition() {
	now := c.opts.clock()

	c.recompute()
	targets := c.targets()
	for i := range c.tweens {
		c.tweens[i].Retarget(now, targets[i], c.opts.duration)
	}

	c.opts.collector.RecordCalculation(c.plan.ID, c.opts.source, c.breakdown.Savings)

	if c.closed {
		return
	}
	c.tracker.Track(analytics.EventCalculatorChanged, analytics.Properties{
		"plan":                c.plan.ID,
		"volume":              c.volume,
		"limit_reached":       c.limitReached,
		"baseline_human_cost": c.breakdown.BaselineHumanCost,
		"plan_cost":           c.breakdown.PlanCost,
		"total_cost":          c.breakdown.TotalCost,
		"savings":             c.breakdown.Savings,
		"hours_saved":         c.breakdown.HoursSaved,
	})
}
