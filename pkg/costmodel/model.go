package costmodel

import (
	"math"

	"deflect-hq/roicalc/pkg/plans"
)

// Breakdown is the cost picture for one volume under one plan. It is
// derived on every input change and never stored.
type Breakdown struct {
	Volume int    `json:"volume"`
	PlanID string `json:"plan_id"`

	// BaselineHumanCost is the cost of handling every interaction by hand.
	BaselineHumanCost float64 `json:"baseline_human_cost"`

	// PlanCost is the subscription price: base fee plus overage.
	PlanCost float64 `json:"plan_cost"`

	// ResidualAgentCost is the staffing cost of interactions the AI does not
	// deflect. Always zero for plans with human backup.
	ResidualAgentCost float64 `json:"residual_agent_cost"`

	// TotalCost is PlanCost + ResidualAgentCost.
	TotalCost float64 `json:"total_cost"`

	// Savings is BaselineHumanCost - TotalCost. It may be negative.
	Savings float64 `json:"savings"`

	BaselineHours float64 `json:"baseline_hours"`
	ResidualHours float64 `json:"residual_hours"`
	HoursSaved    float64 `json:"hours_saved"`
}

// HasSavings reports whether a savings figure should be shown at all.
func (b Breakdown) HasSavings() bool {
	return b.Savings > 0
}

// Compute returns the full breakdown for volume interactions per month on
// plan. It is a pure function: equal inputs give equal outputs. Negative
// volumes are treated as zero.
func Compute(volume int, plan plans.Plan, preset Preset) Breakdown {
	volume = nonNegative(volume)

	b := Breakdown{
		Volume:            volume,
		PlanID:            plan.ID,
		BaselineHumanCost: BaselineHumanCost(volume, preset),
		PlanCost:          PlanCost(volume, plan),
		ResidualAgentCost: ResidualAgentCost(volume, plan, preset),
		BaselineHours:     agentHours(float64(volume), preset.AvgHandleMinutes),
		ResidualHours:     agentHours(residualInteractions(volume, plan, preset), preset.AvgHandleMinutes),
	}
	b.TotalCost = b.PlanCost + b.ResidualAgentCost
	b.Savings = b.BaselineHumanCost - b.TotalCost
	b.HoursSaved = b.BaselineHours - b.ResidualHours

	return b
}

// PlanCost is max(0, volume - quota) × overage + base fee. A zero volume
// costs nothing, so an idle calculator shows all-zero figures.
func PlanCost(volume int, plan plans.Plan) float64 {
	volume = nonNegative(volume)
	if volume == 0 {
		return 0
	}

	overage := volume - plan.IncludedInteractions
	if overage < 0 {
		overage = 0
	}

	return float64(overage)*plan.OverageRate + plan.BaseFee
}

// BaselineHumanCost is the cost of staffing agents for every interaction.
// It does not depend on the plan.
func BaselineHumanCost(volume int, preset Preset) float64 {
	return agentHours(float64(nonNegative(volume)), preset.AvgHandleMinutes) * preset.FullyLoadedHourlyRate()
}

// ResidualAgentCost is zero for plans with human backup; otherwise it is the
// cost of staffing agents for the share of volume the AI does not deflect.
func ResidualAgentCost(volume int, plan plans.Plan, preset Preset) float64 {
	return agentHours(residualInteractions(volume, plan, preset), preset.AvgHandleMinutes) * preset.FullyLoadedHourlyRate()
}

func residualInteractions(volume int, plan plans.Plan, preset Preset) float64 {
	if plan.HasHumanBackup {
		return 0
	}
	return float64(nonNegative(volume)) * (1 - clampRate(preset.DeflectionRate))
}

// TeaserResult is the two-figure summary shown on the homepage.
type TeaserResult struct {
	Volume     int   `json:"volume"`
	HoursSaved int64 `json:"hours_saved"`
	MoneySaved int64 `json:"money_saved"`
}

// TeaserSavings computes the homepage teaser from a flat automation rate and
// a flat wage, with no per-plan branching.
func TeaserSavings(volume int, preset TeaserPreset) TeaserResult {
	v := float64(nonNegative(volume))
	m := preset.AvgHandleMinutes
	manual := 1 - clampRate(preset.AutomationRate)

	minutesWithout := v * m
	minutesWith := v * manual * m

	costWithout := minutesWithout / 60 * preset.HourlyWage
	costWith := minutesWith / 60 * preset.HourlyWage

	return TeaserResult{
		Volume:     int(v),
		HoursSaved: int64(math.Round((minutesWithout - minutesWith) / 60)),
		MoneySaved: int64(math.Round(costWithout - costWith)),
	}
}

func agentHours(interactions, avgMinutes float64) float64 {
	return interactions * avgMinutes / 60
}

func nonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

func clampRate(r float64) float64 {
	switch {
	case r < 0:
		return 0
	case r > 1:
		return 1
	default:
		return r
	}
}
