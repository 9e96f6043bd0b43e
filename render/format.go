// Package render formats loan results for terminal output.
package render

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatCurrency formats an amount with thousands separators, two decimals
// and a trailing symbol. e.g., 1206.3635 -> "1,206.36 €"
func FormatCurrency(amount float64, symbol string) string {
	s := FormatAmount(amount)
	if symbol == "" {
		return s
	}
	return s + " " + symbol
}

// FormatAmount is FormatCurrency without the symbol.
func FormatAmount(amount float64) string {
	fixed := decimal.NewFromFloat(amount).StringFixed(2)

	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign = "-"
		fixed = fixed[1:]
	}
	intPart, frac, _ := strings.Cut(fixed, ".")
	if sign == "-" && strings.Trim(intPart+frac, "0") == "" {
		sign = ""
	}
	return sign + groupThousands(intPart) + "." + frac
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// FormatPercent formats a rate such as 1.5 as "1.50 %".
func FormatPercent(rate float64) string {
	return fmt.Sprintf("%.2f %%", rate)
}

// FormatDuration formats a loan duration, e.g. "20 years (240 months)".
func FormatDuration(years int) string {
	if years == 1 {
		return "1 year (12 months)"
	}
	return fmt.Sprintf("%d years (%d months)", years, years*12)
}
