package metrics

import (
	"github.com/oakline-data/jobpulse/internal/model"
	"github.com/oakline-data/jobpulse/internal/rollup"
)

// DefaultSevereOverrunMultiplier flags a (job, task) as severely overrun when
// actual hours exceed quoted hours by this factor.
const DefaultSevereOverrunMultiplier = 1.2

// QuoteDeliveryRow holds quote-vs-actual delivery metrics for one group.
type QuoteDeliveryRow struct {
	Key               rollup.Key
	Hours             float64
	QuotedHours       *float64
	QuotedAmount      *float64
	HoursVariance     *float64
	HoursVariancePct  *float64
	UnquotedHours     float64 // scope creep, defaults to 0
	UnquotedShare     *float64
	OverrunRate       *float64
	SevereOverrunRate *float64
}

// QuoteDelivery compares delivered hours against deduped quoted hours per
// group and rates how often (job, task) pairs overrun their quote.
func QuoteDelivery(facts []model.TimesheetFact, dims []rollup.Dimension, severeMultiplier float64) []QuoteDeliveryRow {
	if severeMultiplier <= 0 {
		severeMultiplier = DefaultSevereOverrunMultiplier
	}

	type acc struct {
		hours    float64
		unquoted float64
	}
	grouped := make(map[rollup.Key]*acc)
	for _, f := range facts {
		k := rollup.KeyOf(f, dims)
		a, ok := grouped[k]
		if !ok {
			a = &acc{}
			grouped[k] = a
		}
		a.hours += f.Hours
		if f.IsScopeCreep() {
			a.unquoted += f.Hours
		}
	}

	quotes := make(map[rollup.Key]rollup.QuoteRow)
	for _, q := range rollup.QuoteRollup(facts, dims) {
		quotes[q.Key] = q
	}

	// Per (job, task): actual hours vs the quoted line.
	type jt struct{ job, task string }
	actualByLine := make(map[jt]float64)
	for _, f := range facts {
		actualByLine[jt{f.JobNo, f.TaskName}] += f.Hours
	}
	type overrunAcc struct {
		lines  int
		over   int
		severe int
	}
	overruns := make(map[rollup.Key]*overrunAcc)
	for _, line := range rollup.QuoteLines(facts) {
		k := rollup.KeyOf(line, dims)
		o, ok := overruns[k]
		if !ok {
			o = &overrunAcc{}
			overruns[k] = o
		}
		o.lines++
		actual := actualByLine[jt{line.JobNo, line.TaskName}]
		if actual > line.QuotedHours {
			o.over++
		}
		if actual > line.QuotedHours*severeMultiplier {
			o.severe++
		}
	}

	rows := make([]QuoteDeliveryRow, 0, len(grouped))
	for _, k := range rollup.SortedKeys(grouped) {
		a := grouped[k]
		row := QuoteDeliveryRow{
			Key:           k,
			Hours:         a.hours,
			UnquotedHours: a.unquoted,
			UnquotedShare: rollup.Ratio(a.unquoted, a.hours),
		}
		if q, ok := quotes[k]; ok {
			qh, qa := q.QuotedHours, q.QuotedAmount
			row.QuotedHours = &qh
			row.QuotedAmount = &qa
			variance := a.hours - qh
			row.HoursVariance = &variance
			row.HoursVariancePct = rollup.Ratio(variance, qh)
		}
		if o, ok := overruns[k]; ok {
			row.OverrunRate = rollup.Ratio(float64(o.over), float64(o.lines))
			row.SevereOverrunRate = rollup.Ratio(float64(o.severe), float64(o.lines))
		}
		rows = append(rows, row)
	}
	return rows
}
