package calculator

import "time"

// DefaultDuration is the count-up animation length.
const DefaultDuration = 600 * time.Millisecond

// Tween interpolates one displayed number from From to To over Duration,
// starting at Start, with an ease-out cubic curve.
type Tween struct {
	From     float64
	To       float64
	Start    time.Time
	Duration time.Duration
}

// Settled returns a tween already at v.
func Settled(v float64) Tween {
	return Tween{From: v, To: v}
}

// Value returns the displayed value at now. Once Duration has elapsed it is
// exactly To, never a rounded approximation.
func (t Tween) Value(now time.Time) float64 {
	if t.Done(now) {
		return t.To
	}
	if now.Before(t.Start) {
		return t.From
	}
	p := float64(now.Sub(t.Start)) / float64(t.Duration)
	return t.From + (t.To-t.From)*EaseOutCubic(p)
}

// Done reports whether the tween has reached To.
func (t Tween) Done(now time.Time) bool {
	return t.Duration <= 0 || t.From == t.To || !now.Before(t.Start.Add(t.Duration))
}

// Retarget restarts the tween at now from its current value toward to. A
// change mid-animation continues from where the display is, with no jump.
func (t *Tween) Retarget(now time.Time, to float64, d time.Duration) {
	t.From = t.Value(now)
	t.To = to
	t.Start = now
	t.Duration = d
}

// EaseOutCubic maps linear progress p in [0, 1] to 1-(1-p)³. Inputs outside
// the range are clamped.
func EaseOutCubic(p float64) float64 {
	switch {
	case p <= 0:
		return 0
	case p >= 1:
		return 1
	}
	q := 1 - p
	return 1 - q*q*q
}
