package calculator

import (
	"math"
	"testing"
	"time"
)

var t0 = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func TestEaseOutCubic(t *testing.T) {
	tests := []struct {
		p    float64
		want float64
	}{
		{-1, 0},
		{0, 0},
		{0.5, 0.875},
		{1, 1},
		{2, 1},
	}

	for _, tt := range tests {
		if got := EaseOutCubic(tt.p); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("EaseOutCubic(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}

	prev := 0.0
	for p := 0.0; p <= 1; p += 0.01 {
		v := EaseOutCubic(p)
		if v < prev {
			t.Fatalf("EaseOutCubic not monotonic at %v", p)
		}
		prev = v
	}
}

func TestTween_Value(t *testing.T) {
	tw := Tween{From: 100, To: 200, Start: t0, Duration: 600 * time.Millisecond}

	tests := []struct {
		name string
		at   time.Duration
		want float64
	}{
		{"before start", -time.Second, 100},
		{"at start", 0, 100},
		{"halfway eases past linear", 300 * time.Millisecond, 187.5},
		{"at duration is exact", 600 * time.Millisecond, 200},
		{"after duration is exact", time.Hour, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tw.Value(t0.Add(tt.at)); got != tt.want {
				t.Errorf("Value() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTween_ExactTargetWithAwkwardValues(t *testing.T) {
	tw := Tween{From: 0.1, To: 1286.8000000001, Start: t0, Duration: 600 * time.Millisecond}
	if got := tw.Value(t0.Add(600 * time.Millisecond)); got != tw.To {
		t.Errorf("Value at end = %v, want exactly %v", got, tw.To)
	}
	if !tw.Done(t0.Add(600 * time.Millisecond)) {
		t.Error("Done() = false at end")
	}
}

func TestTween_ZeroDurationIsInstant(t *testing.T) {
	tw := Tween{From: 1, To: 5, Start: t0}
	if !tw.Done(t0) || tw.Value(t0) != 5 {
		t.Errorf("zero-duration tween Value = %v Done = %v", tw.Value(t0), tw.Done(t0))
	}
}

func TestTween_RetargetStartsFromCurrentValue(t *testing.T) {
	tw := Tween{From: 0, To: 1000, Start: t0, Duration: 600 * time.Millisecond}

	mid := t0.Add(300 * time.Millisecond)
	shown := tw.Value(mid)
	tw.Retarget(mid, 400, 600*time.Millisecond)

	if tw.From != shown {
		t.Errorf("From = %v, want displayed value %v", tw.From, shown)
	}
	if tw.Value(mid) != shown {
		t.Errorf("value jumped on retarget: %v -> %v", shown, tw.Value(mid))
	}
	if got := tw.Value(mid.Add(600 * time.Millisecond)); got != 400 {
		t.Errorf("retargeted tween ends at %v, want 400", got)
	}
}

func TestSettled(t *testing.T) {
	tw := Settled(42)
	if !tw.Done(t0) || tw.Value(t0) != 42 {
		t.Errorf("Settled(42) = %+v", tw)
	}
}
