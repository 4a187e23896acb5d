package plans

import (
	"errors"
	"fmt"
)

// ErrUnknownPlan is returned when a plan ID is not present in a catalog.
var ErrUnknownPlan = errors.New("unknown plan")

// Plan is a named pricing tier. Plans are values; a Catalog hands out copies
// so nothing downstream can mutate the configured tiers.
type Plan struct {
	// ID is the stable identifier used by API clients and analytics.
	ID string `yaml:"id" toml:"id" json:"id" validate:"required,lowercase,max=64"`

	// Name is the display name.
	Name string `yaml:"name" toml:"name" json:"name" validate:"required"`

	// IncludedInteractions is the monthly quota covered by BaseFee.
	IncludedInteractions int `yaml:"included_interactions" toml:"included_interactions" json:"included_interactions" validate:"gte=0"`

	// OverageRate is the USD price of each interaction beyond the quota.
	OverageRate float64 `yaml:"overage_rate" toml:"overage_rate" json:"overage_rate" validate:"gte=0"`

	// BaseFee is the flat monthly subscription price in USD.
	BaseFee float64 `yaml:"base_fee" toml:"base_fee" json:"base_fee" validate:"gte=0"`

	// HasHumanBackup marks plans whose price already covers human escalations,
	// so no residual agent staffing is needed.
	HasHumanBackup bool `yaml:"human_backup" toml:"human_backup" json:"human_backup"`

	// MaxVolume caps the monthly interaction volume. Zero means unbounded.
	MaxVolume int `yaml:"max_volume" toml:"max_volume" json:"max_volume" validate:"gte=0"`
}

// Capped reports whether the plan limits monthly volume.
func (p Plan) Capped() bool {
	return p.MaxVolume > 0
}

// Allows reports whether volume fits under the plan's cap.
func (p Plan) Allows(volume int) bool {
	return !p.Capped() || volume <= p.MaxVolume
}

// Clamp returns volume bounded by the plan's cap.
func (p Plan) Clamp(volume int) int {
	if p.Capped() && volume > p.MaxVolume {
		return p.MaxVolume
	}
	return volume
}

// Catalog is an ordered, immutable list of plans. Build one with NewCatalog,
// DefaultCatalog or Load; never modify it afterwards.
type Catalog struct {
	version     string
	defaultPlan string
	plans       []Plan
	index       map[string]int
}

// NewCatalog validates plans and returns a catalog. defaultPlan must name one
// of the plans; an empty value selects the first plan.
func NewCatalog(version, defaultPlan string, plans []Plan) (*Catalog, error) {
	if defaultPlan == "" && len(plans) > 0 {
		defaultPlan = plans[0].ID
	}

	if err := validateCatalog(defaultPlan, plans); err != nil {
		return nil, err
	}

	c := &Catalog{
		version:     version,
		defaultPlan: defaultPlan,
		plans:       make([]Plan, len(plans)),
		index:       make(map[string]int, len(plans)),
	}
	copy(c.plans, plans)
	for i, p := range c.plans {
		c.index[p.ID] = i
	}

	return c, nil
}

// Version returns the catalog version label, used in logs.
func (c *Catalog) Version() string {
	return c.version
}

// Plans returns a copy of the plans in catalog order.
func (c *Catalog) Plans() []Plan {
	out := make([]Plan, len(c.plans))
	copy(out, c.plans)
	return out
}

// Len returns the number of plans.
func (c *Catalog) Len() int {
	return len(c.plans)
}

// At returns the plan at position i in catalog order.
func (c *Catalog) At(i int) Plan {
	return c.plans[i]
}

// IndexOf returns the catalog position of id, or -1.
func (c *Catalog) IndexOf(id string) int {
	if i, ok := c.index[id]; ok {
		return i
	}
	return -1
}

// Lookup returns the plan with the given ID.
func (c *Catalog) Lookup(id string) (Plan, error) {
	i, ok := c.index[id]
	if !ok {
		return Plan{}, fmt.Errorf("%w: %q", ErrUnknownPlan, id)
	}
	return c.plans[i], nil
}

// Default returns the plan selected when a calculator starts.
func (c *Catalog) Default() Plan {
	return c.plans[c.index[c.defaultPlan]]
}

// MostRestrictive returns the capped plan with the smallest MaxVolume.
// ok is false when every plan is unbounded.
func (c *Catalog) MostRestrictive() (plan Plan, ok bool) {
	for _, p := range c.plans {
		if !p.Capped() {
			continue
		}
		if !ok || p.MaxVolume < plan.MaxVolume {
			plan, ok = p, true
		}
	}
	return plan, ok
}

// IsMostRestrictive reports whether id names the most restrictive plan.
func (c *Catalog) IsMostRestrictive(id string) bool {
	p, ok := c.MostRestrictive()
	return ok && p.ID == id
}
