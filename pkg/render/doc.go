// Package render draws calculator state as HTML with gomponents and holds
// the number formatting shared by every presentation surface.
//
// Rendering is a pure function of its input: the same View always produces
// the same bytes, which makes the output usable for snapshot tests.
package render
