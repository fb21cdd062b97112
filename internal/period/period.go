// Package period provides the canonical month-grain period type used across
// all rollups, plus fiscal-year labelling and period-window filters.
package period

import (
	"fmt"
	"strconv"
	"strings"
)

// Period is a calendar month. The zero value means "no period" and is what
// missing month keys normalize to.
type Period struct {
	Year  int
	Month int // 1-12
}

// FormatError reports a month key that is present but matches none of the
// accepted shapes.
type FormatError struct {
	Raw string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("unsupported month_key format: %q", e.Raw)
}

// Parse normalizes a raw month-key value. Accepted shapes are a 6-digit
// YYYYMM string and an ISO-prefixed YYYY-MM string (anything after the month
// is ignored). An empty value is not an error: it parses to the zero Period.
func Parse(raw string) (Period, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Period{}, nil
	}

	if len(raw) == 6 && isDigits(raw) {
		year, _ := strconv.Atoi(raw[:4])
		month, _ := strconv.Atoi(raw[4:])
		if month < 1 || month > 12 {
			return Period{}, &FormatError{Raw: raw}
		}
		return Period{Year: year, Month: month}, nil
	}

	if len(raw) >= 7 && raw[4] == '-' && isDigits(raw[:4]) && isDigits(raw[5:7]) {
		year, _ := strconv.Atoi(raw[:4])
		month, _ := strconv.Atoi(raw[5:7])
		if month < 1 || month > 12 {
			return Period{}, &FormatError{Raw: raw}
		}
		return Period{Year: year, Month: month}, nil
	}

	return Period{}, &FormatError{Raw: raw}
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// IsZero reports whether p is the "no period" value.
func (p Period) IsZero() bool {
	return p.Year == 0 && p.Month == 0
}

// String renders the period as YYYY-MM.
func (p Period) String() string {
	if p.IsZero() {
		return "-"
	}
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// index is the absolute month number, giving periods a total ordering.
func (p Period) index() int {
	return p.Year*12 + p.Month - 1
}

// Before reports whether p is strictly earlier than q.
func (p Period) Before(q Period) bool {
	return p.index() < q.index()
}

// AddMonths returns the period n months after p (n may be negative).
func (p Period) AddMonths(n int) Period {
	idx := p.index() + n
	return Period{Year: idx / 12, Month: idx%12 + 1}
}

// MonthsBetween returns how many months later is relative to earlier.
// Negative when later precedes earlier.
func MonthsBetween(earlier, later Period) int {
	return later.index() - earlier.index()
}

// FiscalYear returns the Australian fiscal-year label for p. The fiscal year
// starts in July, so the label is the calendar year of the June end-month.
func (p Period) FiscalYear() string {
	if p.IsZero() {
		return ""
	}
	year := p.Year
	if p.Month > 6 {
		year++
	}
	return "FY" + strconv.Itoa(year)
}

// fiscalYearStart is the July period opening the fiscal year containing p.
func (p Period) fiscalYearStart() Period {
	if p.Month >= 7 {
		return Period{Year: p.Year, Month: 7}
	}
	return Period{Year: p.Year - 1, Month: 7}
}

// Max returns the latest non-zero period, or the zero Period when there is none.
func Max(periods []Period) Period {
	var latest Period
	for _, p := range periods {
		if p.IsZero() {
			continue
		}
		if latest.IsZero() || latest.Before(p) {
			latest = p
		}
	}
	return latest
}

// Min returns the earliest non-zero period, or the zero Period when there is none.
func Min(periods []Period) Period {
	var earliest Period
	for _, p := range periods {
		if p.IsZero() {
			continue
		}
		if earliest.IsZero() || p.Before(earliest) {
			earliest = p
		}
	}
	return earliest
}

// WindowKind selects how a Window bounds periods.
type WindowKind int

const (
	// TrailingWindow keeps the last N observed periods, anchored at the
	// latest period present in the data.
	TrailingWindow WindowKind = iota
	// FiscalYTDWindow keeps periods from the fiscal-year start through the
	// latest observed period.
	FiscalYTDWindow
	// RangeWindow keeps periods inside an explicit closed [Start, End] range.
	RangeWindow
)

// Window is a period filter rule.
type Window struct {
	Kind   WindowKind
	Months int // TrailingWindow only
	Start  Period
	End    Period
}

// Trailing returns a trailing-N-months window rule.
func Trailing(months int) Window {
	return Window{Kind: TrailingWindow, Months: months}
}

// FiscalYTD returns a fiscal-year-to-date window rule.
func FiscalYTD() Window {
	return Window{Kind: FiscalYTDWindow}
}

// Range returns an explicit closed-range window rule.
func Range(start, end Period) Window {
	return Window{Kind: RangeWindow, Start: start, End: end}
}

// Bounds resolves the window against the observed periods, returning the
// inclusive [start, end] to keep and ok=false when the filter is a no-op
// (no valid periods observed, or an open-ended rule).
func (w Window) Bounds(observed []Period) (start, end Period, ok bool) {
	switch w.Kind {
	case TrailingWindow:
		latest := Max(observed)
		if latest.IsZero() {
			return Period{}, Period{}, false
		}
		return latest.AddMonths(-(w.Months - 1)), latest, true
	case FiscalYTDWindow:
		latest := Max(observed)
		if latest.IsZero() {
			return Period{}, Period{}, false
		}
		return latest.fiscalYearStart(), latest, true
	case RangeWindow:
		return w.Start, w.End, true
	}
	return Period{}, Period{}, false
}

// Contains reports whether p falls inside the resolved bounds.
func Contains(start, end, p Period) bool {
	return !p.Before(start) && !end.Before(p)
}
