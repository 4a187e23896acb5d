package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"deflect-hq/roicalc/pkg/calculator"
	"deflect-hq/roicalc/pkg/render"
)

// sliderWidth is the drawn width of the volume bar in cells.
const sliderWidth = 40

// frameMsg asks for the next animation frame.
type frameMsg time.Time

// Model is the bubbletea model of the terminal calculator. It owns its
// controller; the program must be the only caller.
type Model struct {
	ctrl     *calculator.Controller
	interval time.Duration
	teaser   bool
	ticking  bool
	width    int
	err      error
}

// New returns a model around ctrl that redraws every interval while the
// display is animating.
func New(ctrl *calculator.Controller, interval time.Duration) Model {
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}
	return Model{ctrl: ctrl, interval: interval}
}

// Init draws the settled initial state; no frame loop is needed yet.
func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) frame() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// Update handles keys and animation frames.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		state := m.ctrl.State()
		switch key := msg.String(); key {
		case "q", "ctrl+c", "esc":
			m.ctrl.Close()
			return m, tea.Quit
		case "right", "l", "+":
			m.ctrl.SetVolume(state.Volume + state.Slider.Step)
		case "left", "h", "-":
			m.ctrl.SetVolume(state.Volume - state.Slider.Step)
		case "up", "k":
			m.selectPlan(m.planIndex() - 1)
		case "down", "j":
			m.selectPlan(m.planIndex() + 1)
		case "t":
			m.teaser = !m.teaser
			return m, nil
		default:
			if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
				m.selectPlan(int(key[0] - '1'))
			} else {
				return m, nil
			}
		}
		return m.animate()

	case frameMsg:
		m.ticking = false
		return m.animate()
	}

	return m, nil
}

// animate schedules another frame while the display is moving. At most one
// frame is pending at a time.
func (m Model) animate() (tea.Model, tea.Cmd) {
	if m.ticking || m.ctrl.Current().Settled {
		return m, nil
	}
	m.ticking = true
	return m, m.frame()
}

func (m *Model) planIndex() int {
	return m.ctrl.Catalog().IndexOf(m.ctrl.State().Plan.ID)
}

func (m *Model) selectPlan(i int) {
	catalog := m.ctrl.Catalog()
	if i < 0 || i >= catalog.Len() {
		return
	}
	m.err = m.ctrl.SelectPlan(catalog.At(i).ID)
}

// View renders the calculator at the controller's current frame.
func (m Model) View() string {
	state := m.ctrl.State()
	frame := m.ctrl.Current()

	var b strings.Builder
	b.WriteString(titleStyle.Render("ROI calculator"))
	b.WriteString("\n\n")

	if m.teaser {
		b.WriteString(m.viewTeaser(state, frame))
	} else {
		b.WriteString(m.viewPlans(state))
		b.WriteString("\n\n")
		b.WriteString(m.viewSlider(state))
		b.WriteString("\n")
		if state.LimitReached {
			b.WriteString(warningStyle.Render(fmt.Sprintf(
				"! The %s plan covers up to %s interactions a month. Choose a larger plan for more volume.",
				state.Plan.Name, render.Count(state.Plan.MaxVolume))))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(m.viewResults(state, frame))
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(warningStyle.Render(m.err.Error()))
	}

	b.WriteString(helpStyle.Render("←/→ volume  ↑/↓ or 1-9 plan  t teaser  q quit"))
	b.WriteString("\n")
	return b.String()
}

func (m Model) viewPlans(state calculator.State) string {
	plans := m.ctrl.Catalog().Plans()
	cells := make([]string, 0, len(plans))
	for i, p := range plans {
		label := fmt.Sprintf("%d %s", i+1, p.Name)
		if p.ID == state.Plan.ID {
			cells = append(cells, activePlanStyle.Render(label))
		} else {
			cells = append(cells, inactivePlanStyle.Render(label))
		}
	}
	return strings.Join(cells, "")
}

func (m Model) viewSlider(state calculator.State) string {
	s := state.Slider
	filled := 0
	if span := s.Max - s.Min; span > 0 {
		filled = (state.Volume - s.Min) * sliderWidth / span
	}
	filled = max(0, min(sliderWidth, filled))

	bar := sliderFillStyle.Render(strings.Repeat("█", filled)) +
		sliderEmptyStyle.Render(strings.Repeat("░", sliderWidth-filled))
	return fmt.Sprintf("%s  %s interactions/month", bar, render.Count(state.Volume))
}

func (m Model) viewResults(state calculator.State, f calculator.Frame) string {
	rows := [][2]string{
		{"Cost with human agents", render.Money(f.BaselineHumanCost)},
		{"Plan cost", render.Money(f.PlanCost)},
	}
	if !state.Plan.HasHumanBackup {
		rows = append(rows, [2]string{"Remaining agent cost", render.Money(f.ResidualAgentCost)})
	}
	rows = append(rows,
		[2]string{"Total cost", render.Money(f.TotalCost)},
		[2]string{"Agent hours saved", render.Hours(f.HoursSaved)},
	)

	var b strings.Builder
	for _, r := range rows {
		b.WriteString(labelStyle.Render(r[0]))
		b.WriteString(valueStyle.Render(r[1]))
		b.WriteString("\n")
	}
	if f.Savings > 0 {
		b.WriteString("\n")
		b.WriteString(savingsStyle.Render(fmt.Sprintf("You save %s a month", render.Money(f.Savings))))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) viewTeaser(state calculator.State, f calculator.Frame) string {
	return fmt.Sprintf("At %s interactions a month you could save\n%s hours and %s\n",
		render.Count(state.Volume),
		savingsStyle.Render(render.Whole(f.TeaserHoursSaved)),
		savingsStyle.Render(render.WholeMoney(f.TeaserMoneySaved)),
	)
}

// Run starts the program on the alternate screen and blocks until quit.
func Run(ctrl *calculator.Controller, interval time.Duration) error {
	_, err := tea.NewProgram(New(ctrl, interval), tea.WithAltScreen()).Run()
	return err
}
