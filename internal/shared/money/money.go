// Package money handles rounding of VND amounts. Statutory amounts are
// whole dong; intermediate arithmetic stays in float64 and is only rounded
// at the documented points of the gross-to-net algorithm.
package money

import "github.com/shopspring/decimal"

// Round rounds to the nearest whole VND, ties going away from zero.
// Going through decimal pins the tie-break exactly instead of trusting
// whatever the platform's libm does at the .5 boundary.
func Round(v float64) int64 {
	return decimal.NewFromFloat(v).Round(0).IntPart()
}

// Format renders a whole-VND amount with thousands separators
// ("3,150,000 VND") for messages and operator-facing output.
func Format(v int64) string {
	d := decimal.NewFromInt(v)
	s := d.StringFixed(0)

	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}

	out := make([]byte, 0, len(s)+len(s)/3)
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}

	if neg {
		return "-" + string(out) + " VND"
	}
	return string(out) + " VND"
}
