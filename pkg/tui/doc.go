// Package tui provides the interactive terminal calculator, built on the
// bubbletea/lipgloss stack.
//
// Keys: ←/→ move the slider by one step, ↑/↓ or 1-9 pick a plan, t toggles
// the homepage teaser view and q quits. Redraws are driven by a frame tick
// that only runs while displayed values are still animating.
package tui
