// Package rollup implements the semantic aggregation layer: grouped
// profitability and rate rollups, and the dedup-before-sum rule for the
// repeating quote fields.
package rollup

import (
	"sort"

	"github.com/samber/lo"

	"github.com/oakline-data/jobpulse/internal/model"
	"github.com/oakline-data/jobpulse/internal/period"
)

// Dimension names a grouping column.
type Dimension int

const (
	Department Dimension = iota
	Category
	Task
	Staff
	Month
	Job
	FiscalYear
)

// Key is a grouping-key tuple. Dimensions not selected stay empty; a missing
// value in a selected dimension is its own bucket (empty string), rows are
// never dropped.
type Key struct {
	Department string
	Category   string
	Task       string
	Staff      string
	Month      string
	Job        string
	FY         string
}

// KeyOf projects a fact onto the selected dimensions.
func KeyOf(f model.TimesheetFact, dims []Dimension) Key {
	var k Key
	for _, d := range dims {
		switch d {
		case Department:
			k.Department = f.Department
		case Category:
			k.Category = f.JobCategory
		case Task:
			k.Task = f.TaskName
		case Staff:
			k.Staff = f.StaffName
		case Month:
			k.Month = f.MonthKey
		case Job:
			k.Job = f.JobNo
		case FiscalYear:
			if p, err := period.Parse(f.MonthKey); err == nil {
				k.FY = p.FiscalYear()
			}
		}
	}
	return k
}

// Less gives keys a total order so rollup output is deterministic.
func Less(a, b Key) bool {
	if a.Department != b.Department {
		return a.Department < b.Department
	}
	if a.Category != b.Category {
		return a.Category < b.Category
	}
	if a.Task != b.Task {
		return a.Task < b.Task
	}
	if a.Staff != b.Staff {
		return a.Staff < b.Staff
	}
	if a.Month != b.Month {
		return a.Month < b.Month
	}
	if a.Job != b.Job {
		return a.Job < b.Job
	}
	return a.FY < b.FY
}

// Ratio divides num by den, returning nil on a zero denominator. Degenerate
// denominators are missing values, never errors and never zero.
func Ratio(num, den float64) *float64 {
	if den == 0 {
		return nil
	}
	v := num / den
	return &v
}

// QuoteLines collapses rows to one line per (job_no, task_name), keeping the
// first-seen row of each group. This is the only sanctioned way to read the
// repeating quote fields before summation.
func QuoteLines[T model.QuoteCarrier](rows []T) []T {
	type qk struct{ job, task string }
	seen := make(map[qk]struct{}, len(rows))
	lines := make([]T, 0, len(rows))
	for _, r := range rows {
		job, task := r.QuoteKey()
		k := qk{job, task}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		lines = append(lines, r)
	}
	return lines
}

// QuoteRow is one group of the deduped quote rollup.
type QuoteRow struct {
	Key          Key
	QuotedHours  float64
	QuotedAmount float64
}

// QuoteRollup sums the quote fields by the selected dimensions, deduplicating
// to one line per (job_no, task_name) first.
func QuoteRollup(facts []model.TimesheetFact, dims []Dimension) []QuoteRow {
	grouped := make(map[Key]*QuoteRow)
	for _, f := range QuoteLines(facts) {
		k := KeyOf(f, dims)
		row, ok := grouped[k]
		if !ok {
			row = &QuoteRow{Key: k}
			grouped[k] = row
		}
		hours, amount := f.QuoteTotals()
		row.QuotedHours += hours
		row.QuotedAmount += amount
	}
	return sortRows(grouped)
}

// ProfitRow is one group of the profitability rollup.
type ProfitRow struct {
	Key          Key
	Hours        float64
	Cost         float64
	Revenue      float64
	Margin       float64
	MarginPct    *float64
	RealisedRate *float64
}

// Profitability sums hours, cost and revenue by the selected dimensions and
// derives margin, margin percentage and realised rate.
func Profitability(facts []model.TimesheetFact, dims []Dimension) []ProfitRow {
	grouped := make(map[Key]*ProfitRow)
	for _, f := range facts {
		k := KeyOf(f, dims)
		row, ok := grouped[k]
		if !ok {
			row = &ProfitRow{Key: k}
			grouped[k] = row
		}
		row.Hours += f.Hours
		row.Cost += f.BaseCost
		row.Revenue += f.RevAlloc
	}
	rows := sortRows(grouped)
	for i := range rows {
		rows[i].Margin = rows[i].Revenue - rows[i].Cost
		rows[i].MarginPct = Ratio(rows[i].Margin, rows[i].Revenue)
		rows[i].RealisedRate = Ratio(rows[i].Revenue, rows[i].Hours)
	}
	return rows
}

// RateRow joins the realised rate (raw sums) with the quote rate (deduped
// rollup) for one group. Quote fields are nil for groups with no quote lines.
type RateRow struct {
	Key          Key
	Hours        float64
	Revenue      float64
	RealisedRate *float64
	QuotedHours  *float64
	QuotedAmount *float64
	QuoteRate    *float64
}

// Rates computes realised and quote rates per group with left-join semantics
// on the quote side.
func Rates(facts []model.TimesheetFact, dims []Dimension) []RateRow {
	grouped := make(map[Key]*RateRow)
	for _, f := range facts {
		k := KeyOf(f, dims)
		row, ok := grouped[k]
		if !ok {
			row = &RateRow{Key: k}
			grouped[k] = row
		}
		row.Hours += f.Hours
		row.Revenue += f.RevAlloc
	}

	quotes := make(map[Key]QuoteRow)
	for _, q := range QuoteRollup(facts, dims) {
		quotes[q.Key] = q
	}

	rows := sortRows(grouped)
	for i := range rows {
		rows[i].RealisedRate = Ratio(rows[i].Revenue, rows[i].Hours)
		if q, ok := quotes[rows[i].Key]; ok {
			qh, qa := q.QuotedHours, q.QuotedAmount
			rows[i].QuotedHours = &qh
			rows[i].QuotedAmount = &qa
			rows[i].QuoteRate = Ratio(qa, qh)
		}
	}
	return rows
}

// sortRows flattens a grouped map into a slice ordered by key.
func sortRows[R any](grouped map[Key]*R) []R {
	keys := lo.Keys(grouped)
	sort.Slice(keys, func(i, j int) bool { return Less(keys[i], keys[j]) })
	rows := make([]R, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, *grouped[k])
	}
	return rows
}

// SortedKeys returns the keys of any grouped map in deterministic order.
func SortedKeys[V any](grouped map[Key]V) []Key {
	keys := lo.Keys(grouped)
	sort.Slice(keys, func(i, j int) bool { return Less(keys[i], keys[j]) })
	return keys
}
