package script

import "strconv"

// Number formats v without trailing zeros ("10", "-2.5", "0.125").
func Number(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if s == "-0" {
		return "0"
	}
	return s
}

// Point formats a 2-D point as an array literal.
func Point(x, y float64) string {
	return "[" + Number(x) + ", " + Number(y) + "]"
}
