// Package currency renders rupee amounts and interest rates for
// customer-facing text. All figures go through shopspring/decimal so
// the output never carries float artifacts.
package currency

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Whole renders a figure without decimals, with thousands grouping.
// Principal amounts are quoted in whole rupees; EMI and fee figures
// carry paise and use Money instead.
func Whole(v float64) string {
	return group(decimal.NewFromFloat(v).Round(0).StringFixed(0))
}

// Money renders a figure with two decimal places and thousands grouping.
func Money(v float64) string {
	return group(decimal.NewFromFloat(v).StringFixed(2))
}

// Rate renders a percentage, dropping the fraction when it is integral.
func Rate(v float64) string {
	d := decimal.NewFromFloat(v)
	if d.IsInteger() {
		return d.StringFixed(0)
	}
	return d.String()
}

// group inserts comma separators into the integer part of a
// fixed-point decimal string.
func group(s string) string {
	intPart := s
	frac := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}

	neg := strings.HasPrefix(intPart, "-")
	if neg {
		intPart = intPart[1:]
	}

	n := len(intPart)
	if n <= 3 {
		if neg {
			return "-" + intPart + frac
		}
		return intPart + frac
	}

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	first := n % 3
	if first > 0 {
		b.WriteString(intPart[:first])
		b.WriteByte(',')
	}
	for i := first; i < n; i += 3 {
		b.WriteString(intPart[i : i+3])
		if i+3 < n {
			b.WriteByte(',')
		}
	}
	b.WriteString(frac)
	return b.String()
}
