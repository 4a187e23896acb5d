// Package calculator is the interactive ROI calculator: a Controller that
// holds the selected plan and volume, enforces plan caps, recomputes the
// cost model on every change and animates each displayed figure toward its
// new value.
//
// Rules applied on every change:
//
//   - Volume never exceeds the selected plan's cap. Clamping raises the
//     LimitReached advisory.
//   - Leaving the most restrictive plan while pinned at its cap restores the
//     default volume instead of leaving the slider at the old limit.
//   - Each figure animates over a fixed duration with ease-out cubic. A change
//     mid-animation starts from the value currently on screen.
//   - A debounced analytics event follows each burst of changes. Sink
//     failures are swallowed.
//
// Usage:
//
//	c, err := calculator.New(plans.DefaultCatalog(), calculator.WithTracker(sink))
//	defer c.Close()
//	c.SetVolume(1200)
//	for !c.Settled(time.Now()) {
//		draw(c.Frame(time.Now()))
//	}
package calculator
