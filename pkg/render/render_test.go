package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"deflect-hq/roicalc/pkg/calculator"
	"deflect-hq/roicalc/pkg/plans"
	"deflect-hq/roicalc/pkg/telemetry/logging"
)

func newController(t *testing.T) *calculator.Controller {
	t.Helper()
	c, err := calculator.New(plans.DefaultCatalog(),
		calculator.WithDebounce(0),
		calculator.WithLogger(logging.Discard()),
	)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(c.Close)
	return c
}

func renderWidget(t *testing.T, v View) string {
	t.Helper()
	var buf bytes.Buffer
	if err := Widget(v).Render(&buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return buf.String()
}

func TestWidget_DefaultState(t *testing.T) {
	html := renderWidget(t, NewView(newController(t)))

	for _, want := range []string{
		`id="roi-calculator"`,
		`<option value="growth" selected>`,
		`type="range"`,
		`max="5000"`,
		`step="50"`,
		`value="500"`,
		`$25.00`,
		`$1,286.80`,
		`id="savings"`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("widget missing %q", want)
		}
	}
	if strings.Contains(html, "limit-warning") {
		t.Error("limit warning shown without a clamp")
	}
	if n := strings.Count(html, "<option "); n != 4 {
		t.Errorf("plan options = %d, want 4", n)
	}
}

func TestWidget_LimitWarning(t *testing.T) {
	c := newController(t)
	if err := c.SelectPlan("free"); err != nil {
		t.Fatal(err)
	}
	c.SetVolume(1000)

	html := renderWidget(t, NewView(c))
	if !strings.Contains(html, `id="limit-warning"`) {
		t.Error("limit warning missing after clamp")
	}
	if !strings.Contains(html, "up to 250 interactions") {
		t.Error("limit warning does not name the cap")
	}
}

func TestWidget_HidesNonPositiveSavings(t *testing.T) {
	c := newController(t)
	c.SetVolume(0)

	html := renderWidget(t, NewView(c))
	if strings.Contains(html, `id="savings"`) {
		t.Error("savings shown for a non-positive value")
	}
}

func TestWidget_HumanBackupHidesResidual(t *testing.T) {
	c := newController(t)
	if err := c.SelectPlan("concierge"); err != nil {
		t.Fatal(err)
	}

	html := renderWidget(t, NewView(c))
	if strings.Contains(html, `data-field="residual"`) {
		t.Error("residual agent cost shown for a human-backup plan")
	}
}

func TestWidget_Deterministic(t *testing.T) {
	c := newController(t)
	c.SetVolume(1500)
	v := NewView(c)

	first := renderWidget(t, v)
	for i := 0; i < 5; i++ {
		if got := renderWidget(t, v); got != first {
			t.Fatal("same view rendered different output")
		}
	}
}

func TestWritePage(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePage(&buf, NewView(newController(t))); err != nil {
		t.Fatal(err)
	}
	html := buf.String()
	if !strings.HasPrefix(html, "<!doctype html>") {
		t.Errorf("page does not start with a doctype: %.40s", html)
	}
	if !strings.Contains(html, "<title>ROI calculator</title>") {
		t.Error("page missing title")
	}
	if n := strings.Count(html, `name="viewport"`); n != 1 {
		t.Errorf("viewport meta tags = %d, want 1", n)
	}
	if !strings.Contains(html, "<noscript><button") {
		t.Error("page missing no-script submit button")
	}
}

func TestNewView_ShowsTargets(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c, err := calculator.New(plans.DefaultCatalog(),
		calculator.WithClock(func() time.Time { return now }),
		calculator.WithDuration(600*time.Millisecond),
		calculator.WithDebounce(0),
		calculator.WithLogger(logging.Discard()),
	)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	c.SetVolume(1500)
	if c.Current().Settled {
		t.Fatal("controller settled immediately after a change")
	}

	v := NewView(c)
	if v.Frame != c.Target() || !v.Frame.Settled {
		t.Errorf("NewView frame = %+v, want settled target %+v", v.Frame, c.Target())
	}
}

func TestTeaser(t *testing.T) {
	c := newController(t)
	var buf bytes.Buffer
	if err := Teaser(c.State(), c.Current()).Render(&buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `data-field="teaser-hours"`) {
		t.Errorf("teaser missing hours: %s", buf.String())
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"money", Money(1286.8), "$1,286.80"},
		{"money zero", Money(0), "$0.00"},
		{"money negative", Money(-10), "-$10.00"},
		{"money large", Money(1234567.891), "$1,234,567.89"},
		{"whole money", WholeMoney(2744), "$2,744"},
		{"hours", Hours(48), "48.0"},
		{"count", Count(1500), "1,500"},
		{"whole", Whole(195.6), "196"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}
