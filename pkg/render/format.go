package render

import (
	"math"

	"github.com/dustin/go-humanize"
)

// Money formats a dollar amount with thousands separators and cents, e.g.
// "$1,286.80". Negative zero prints as "$0.00".
func Money(v float64) string {
	if v == 0 || math.IsNaN(v) {
		v = 0
	}
	if v < 0 {
		return "-$" + humanize.FormatFloat("#,###.##", -v)
	}
	return "$" + humanize.FormatFloat("#,###.##", v)
}

// WholeMoney formats a dollar amount rounded to whole dollars, e.g. "$2,744".
func WholeMoney(v float64) string {
	if math.IsNaN(v) {
		v = 0
	}
	n := int64(math.Round(v))
	if n < 0 {
		return "-$" + humanize.Comma(-n)
	}
	return "$" + humanize.Comma(n)
}

// Hours formats an hour figure with one decimal, e.g. "48.0".
func Hours(v float64) string {
	if v == 0 || math.IsNaN(v) {
		v = 0
	}
	return humanize.FormatFloat("#,###.#", v)
}

// Count formats an integer with thousands separators, e.g. "1,500".
func Count(v int) string {
	return humanize.Comma(int64(v))
}

// Whole formats v rounded to an integer with thousands separators.
func Whole(v float64) string {
	if math.IsNaN(v) {
		return "0"
	}
	return humanize.Comma(int64(math.Round(v)))
}
