package render

import (
	"fmt"
	"io"
	"strconv"

	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/components"
	. "maragu.dev/gomponents/html"

	"deflect-hq/roicalc/pkg/calculator"
	"deflect-hq/roicalc/pkg/plans"
)

// View is everything the calculator widget displays.
type View struct {
	State calculator.State
	Frame calculator.Frame
	Plans []plans.Plan

	// Action is the form target. Empty means "/calculator".
	Action string
}

// NewView builds a view of ctrl at its settled targets. A rendered page is
// static, so it shows where the animation ends.
func NewView(ctrl *calculator.Controller) View {
	return View{
		State: ctrl.State(),
		Frame: ctrl.Target(),
		Plans: ctrl.Catalog().Plans(),
	}
}

// Page renders v as a complete HTML document.
func Page(v View) Node {
	return HTML5(HTML5Props{
		Title:    "ROI calculator",
		Language: "en",
		Body: []Node{
			Class("min-h-screen bg-gray-100 font-sans"),
			Main(Class("container mx-auto py-8 px-4"), Widget(v)),
		},
	})
}

// Widget renders the calculator: plan selector, volume slider, limit
// warning and result figures. Equal views render to identical bytes.
func Widget(v View) Node {
	action := v.Action
	if action == "" {
		action = "/calculator"
	}

	return Section(
		ID("roi-calculator"),
		Class("bg-white rounded-lg shadow p-6 space-y-6"),
		Attr("data-catalog-version", v.State.CatalogVersion),
		H2(Class("text-2xl font-semibold"), Text("Estimate your savings")),
		Form(
			Method("get"),
			Action(action),
			Class("space-y-4"),
			planSelector(v.State.Plan.ID, v.Plans),
			volumeSlider(v.State),
			NoScript(Button(Type("submit"), Class("px-4 py-2 rounded bg-gray-800 text-white"), Text("Update"))),
		),
		If(v.State.LimitReached, limitWarning(v.State.Plan)),
		results(v.State, v.Frame),
	)
}

func planSelector(selected string, all []plans.Plan) Node {
	return Div(
		Label(For("plan"), Class("block font-semibold"), Text("Plan")),
		Select(
			ID("plan"),
			Name("plan"),
			Class("mt-1 block w-full rounded border-gray-300"),
			Map(all, func(p plans.Plan) Node {
				return Option(
					Value(p.ID),
					If(p.ID == selected, Selected()),
					Text(planLabel(p)),
				)
			}),
		),
	)
}

func planLabel(p plans.Plan) string {
	label := fmt.Sprintf("%s (%s/mo)", p.Name, Money(p.BaseFee))
	if p.HasHumanBackup {
		label += " with human backup"
	}
	return label
}

func volumeSlider(s calculator.State) Node {
	return Div(
		Label(For("volume"), Class("block font-semibold"),
			Text("Monthly interactions: "),
			Span(ID("volume-value"), Text(Count(s.Volume))),
		),
		Input(
			ID("volume"),
			Name("volume"),
			Type("range"),
			Class("mt-1 w-full"),
			Min(strconv.Itoa(s.Slider.Min)),
			Max(strconv.Itoa(s.Slider.Max)),
			Step(strconv.Itoa(s.Slider.Step)),
			Value(strconv.Itoa(s.Volume)),
		),
	)
}

func limitWarning(p plans.Plan) Node {
	return Div(
		ID("limit-warning"),
		Role("alert"),
		Class("rounded border border-amber-400 bg-amber-50 p-3 text-amber-900"),
		Text(fmt.Sprintf("The %s plan covers up to %s interactions a month. Choose a larger plan for more volume.",
			p.Name, Count(p.MaxVolume))),
	)
}

func results(s calculator.State, f calculator.Frame) Node {
	return Div(
		ID("results"),
		Aria("live", "polite"),
		Class("space-y-4"),
		Dl(
			Class("grid grid-cols-2 gap-2"),
			figure("baseline", "Cost with human agents", Money(f.BaselineHumanCost)),
			figure("plan", "Plan cost", Money(f.PlanCost)),
			If(!s.Plan.HasHumanBackup, figure("residual", "Remaining agent cost", Money(f.ResidualAgentCost))),
			figure("total", "Total cost", Money(f.TotalCost)),
			figure("hours", "Agent hours saved", Hours(f.HoursSaved)),
		),
		If(f.Savings > 0, Div(
			ID("savings"),
			Class("rounded bg-green-50 p-4 text-green-900"),
			Span(Text("You save ")),
			Strong(Attr("data-field", "savings"), Text(Money(f.Savings))),
			Span(Text(" a month")),
		)),
	)
}

func figure(field, label, value string) Node {
	return Group{
		Dt(Class("text-gray-600"), Text(label)),
		Dd(Class("text-right font-mono"), Attr("data-field", field), Text(value)),
	}
}

// Teaser renders the homepage teaser figures.
func Teaser(s calculator.State, f calculator.Frame) Node {
	return Section(
		ID("roi-teaser"),
		Class("text-center space-y-2"),
		P(Text(fmt.Sprintf("At %s interactions a month you could save", Count(s.Volume)))),
		P(Class("text-3xl font-bold"),
			Span(Attr("data-field", "teaser-hours"), Text(Whole(f.TeaserHoursSaved))),
			Text(" hours and "),
			Span(Attr("data-field", "teaser-money"), Text(WholeMoney(f.TeaserMoneySaved))),
		),
	)
}

// WritePage renders the full page for v to w.
func WritePage(w io.Writer, v View) error {
	return Page(v).Render(w)
}
