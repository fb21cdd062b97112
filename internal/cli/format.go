// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Missing is the placeholder rendered for null metric values.
const Missing = "–"

// FormatHours formats an hours value, dropping the fraction once large.
// e.g., 7.5 -> "7.5h", 1234.2 -> "1,234h"
func FormatHours(h float64) string {
	if math.Abs(h) >= 1000 {
		return FormatNumber(int64(math.Round(h))) + "h"
	}
	return strconv.FormatFloat(round1(h), 'f', -1, 64) + "h"
}

// FormatCurrency formats a dollar amount with precision scaled to magnitude.
func FormatCurrency(v float64) string {
	if v < 0 {
		return "-" + FormatCurrency(-v)
	}
	if v >= 1000 {
		return "$" + FormatNumber(int64(math.Round(v)))
	}
	if v >= 100 {
		return fmt.Sprintf("$%.0f", v)
	}
	return fmt.Sprintf("$%.2f", v)
}

// FormatRate formats a per-hour dollar rate.
func FormatRate(v float64) string {
	return fmt.Sprintf("$%.0f/h", v)
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatOptPercent renders a nil ratio as the missing placeholder, never 0%.
func FormatOptPercent(f *float64) string {
	if f == nil {
		return Missing
	}
	return FormatPercent(*f)
}

// FormatOptCurrency renders a nil amount as the missing placeholder.
func FormatOptCurrency(f *float64) string {
	if f == nil {
		return Missing
	}
	return FormatCurrency(*f)
}

// FormatOptRate renders a nil rate as the missing placeholder.
func FormatOptRate(f *float64) string {
	if f == nil {
		return Missing
	}
	return FormatRate(*f)
}

// FormatOptHours renders a nil hours value as the missing placeholder.
func FormatOptHours(f *float64) string {
	if f == nil {
		return Missing
	}
	return FormatHours(*f)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
