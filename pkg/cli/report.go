package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"deflect-hq/roicalc/pkg/costmodel"
	"deflect-hq/roicalc/pkg/plans"
	"deflect-hq/roicalc/pkg/render"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// EstimateReport is the result of the estimate command.
type EstimateReport struct {
	Plan         plans.Plan          `json:"plan"`
	Preset       string              `json:"preset"`
	Requested    int                 `json:"requested_volume"`
	LimitReached bool                `json:"limit_reached"`
	Breakdown    costmodel.Breakdown `json:"breakdown"`
}

// NewEstimateReport clamps volume to the plan's cap and computes the
// breakdown.
func NewEstimateReport(volume int, plan plans.Plan, preset costmodel.Preset) EstimateReport {
	clamped := plan.Clamp(volume)
	return EstimateReport{
		Plan:         plan,
		Preset:       preset.Name,
		Requested:    volume,
		LimitReached: clamped != volume,
		Breakdown:    costmodel.Compute(clamped, plan, preset),
	}
}

// Text renders the breakdown as an aligned table.
func (r EstimateReport) Text() string {
	b := r.Breakdown
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s plan, %s interactions/month\n", r.Plan.Name, render.Count(b.Volume))
	if r.LimitReached {
		fmt.Fprintf(&sb, "! %s interactions exceed the plan cap of %s; clamped\n",
			render.Count(r.Requested), render.Count(r.Plan.MaxVolume))
	}
	sb.WriteString("\n")

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col == 1 {
				return cellStyle.Align(lipgloss.Right)
			}
			return cellStyle
		})
	t.Row("Cost with human agents", render.Money(b.BaselineHumanCost))
	t.Row("Plan cost", render.Money(b.PlanCost))
	if !r.Plan.HasHumanBackup {
		t.Row("Remaining agent cost", render.Money(b.ResidualAgentCost))
	}
	t.Row("Total cost", render.Money(b.TotalCost))
	t.Row("Agent hours saved", render.Hours(b.HoursSaved))
	if b.HasSavings() {
		t.Row("Monthly savings", render.Money(b.Savings))
	}
	sb.WriteString(t.String())
	sb.WriteString("\n")

	return sb.String()
}

// Header implements Tabular.
func (r EstimateReport) Header() []string {
	return []string{
		"plan", "volume", "limit_reached", "baseline_human_cost", "plan_cost",
		"residual_agent_cost", "total_cost", "savings", "hours_saved",
	}
}

// Rows implements Tabular.
func (r EstimateReport) Rows() [][]string {
	b := r.Breakdown
	return [][]string{{
		r.Plan.ID,
		strconv.Itoa(b.Volume),
		strconv.FormatBool(r.LimitReached),
		money(b.BaselineHumanCost),
		money(b.PlanCost),
		money(b.ResidualAgentCost),
		money(b.TotalCost),
		money(b.Savings),
		strconv.FormatFloat(b.HoursSaved, 'f', 2, 64),
	}}
}

// TeaserReport is the result of the teaser command.
type TeaserReport struct {
	costmodel.TeaserResult
}

// Text renders the teaser sentence.
func (r TeaserReport) Text() string {
	return fmt.Sprintf("At %s interactions a month you could save %s hours and %s.",
		render.Count(r.Volume),
		render.Count(int(r.HoursSaved)),
		render.WholeMoney(float64(r.MoneySaved)))
}

// Header implements Tabular.
func (r TeaserReport) Header() []string {
	return []string{"volume", "hours_saved", "money_saved"}
}

// Rows implements Tabular.
func (r TeaserReport) Rows() [][]string {
	return [][]string{{
		strconv.Itoa(r.Volume),
		strconv.FormatInt(r.HoursSaved, 10),
		strconv.FormatInt(r.MoneySaved, 10),
	}}
}

// PlansReport is the result of the plans command.
type PlansReport struct {
	Version     string       `json:"version"`
	DefaultPlan string       `json:"default_plan"`
	Plans       []plans.Plan `json:"plans"`
}

// NewPlansReport lists catalog.
func NewPlansReport(catalog *plans.Catalog) PlansReport {
	return PlansReport{
		Version:     catalog.Version(),
		DefaultPlan: catalog.Default().ID,
		Plans:       catalog.Plans(),
	}
}

// Text renders the plans as a table.
func (r PlansReport) Text() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Catalog %s\n\n", r.Version)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers("ID", "NAME", "BASE FEE", "INCLUDED", "OVERAGE", "MAX VOLUME", "HUMAN BACKUP")
	for _, p := range r.Plans {
		id := p.ID
		if p.ID == r.DefaultPlan {
			id += "*"
		}
		maxVolume := "unlimited"
		if p.Capped() {
			maxVolume = render.Count(p.MaxVolume)
		}
		t.Row(id, p.Name, render.Money(p.BaseFee), render.Count(p.IncludedInteractions),
			render.Money(p.OverageRate), maxVolume, strconv.FormatBool(p.HasHumanBackup))
	}
	sb.WriteString(t.String())
	sb.WriteString("\n* default plan\n")
	return sb.String()
}

// Header implements Tabular.
func (r PlansReport) Header() []string {
	return []string{"id", "name", "base_fee", "included_interactions", "overage_rate", "max_volume", "human_backup", "default"}
}

// Rows implements Tabular.
func (r PlansReport) Rows() [][]string {
	rows := make([][]string, 0, len(r.Plans))
	for _, p := range r.Plans {
		rows = append(rows, []string{
			p.ID,
			p.Name,
			money(p.BaseFee),
			strconv.Itoa(p.IncludedInteractions),
			money(p.OverageRate),
			strconv.Itoa(p.MaxVolume),
			strconv.FormatBool(p.HasHumanBackup),
			strconv.FormatBool(p.ID == r.DefaultPlan),
		})
	}
	return rows
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
