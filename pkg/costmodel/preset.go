package costmodel

import (
	"fmt"
	"sort"
)

// Preset holds the staffing constants for the full per-plan model.
type Preset struct {
	// Name identifies the preset in configuration and API requests.
	Name string `json:"name"`

	// AvgHandleMinutes is the average agent time per interaction.
	AvgHandleMinutes float64 `json:"avg_handle_minutes"`

	// BaseHourlyWage is the agent's hourly wage before loading.
	BaseHourlyWage float64 `json:"base_hourly_wage"`

	// BenefitsMultiplier loads the wage with benefits and payroll taxes.
	BenefitsMultiplier float64 `json:"benefits_multiplier"`

	// OverheadMultiplier loads the wage with management and tooling overhead.
	OverheadMultiplier float64 `json:"overhead_multiplier"`

	// DeflectionRate is the share of interactions AI-only plans resolve
	// without an agent, in [0, 1].
	DeflectionRate float64 `json:"deflection_rate"`
}

// FullyLoadedHourlyRate is wage × benefits × overhead.
func (p Preset) FullyLoadedHourlyRate() float64 {
	return p.BaseHourlyWage * p.BenefitsMultiplier * p.OverheadMultiplier
}

// TeaserPreset holds the flat constants of the homepage teaser.
type TeaserPreset struct {
	Name             string  `json:"name"`
	AvgHandleMinutes float64 `json:"avg_handle_minutes"`
	HourlyWage       float64 `json:"hourly_wage"`
	AutomationRate   float64 `json:"automation_rate"`
}

// Named presets. The two sets are intentionally distinct: the teaser uses a
// flat wage and a near-total automation rate, the calculator a fully loaded
// agent cost and a conservative deflection rate.
var (
	// FullyLoaded costs an agent hour at $18.74 × 1.25 × 1.6 = $37.48.
	FullyLoaded = Preset{
		Name:               "fully_loaded",
		AvgHandleMinutes:   6,
		BaseHourlyWage:     18.74,
		BenefitsMultiplier: 1.25,
		OverheadMultiplier: 1.6,
		DeflectionRate:     0.70,
	}

	// HomepageTeaser is the simplified homepage model.
	HomepageTeaser = TeaserPreset{
		Name:             "homepage_teaser",
		AvgHandleMinutes: 6,
		HourlyWage:       14,
		AutomationRate:   0.98,
	}
)

var presets = map[string]Preset{
	FullyLoaded.Name: FullyLoaded,
}

var teaserPresets = map[string]TeaserPreset{
	HomepageTeaser.Name: HomepageTeaser,
}

// PresetByName returns a named calculator preset.
func PresetByName(name string) (Preset, error) {
	p, ok := presets[name]
	if !ok {
		return Preset{}, fmt.Errorf("unknown cost preset %q (known: %v)", name, PresetNames())
	}
	return p, nil
}

// TeaserPresetByName returns a named teaser preset.
func TeaserPresetByName(name string) (TeaserPreset, error) {
	p, ok := teaserPresets[name]
	if !ok {
		return TeaserPreset{}, fmt.Errorf("unknown teaser preset %q", name)
	}
	return p, nil
}

// PresetNames lists the calculator presets in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
