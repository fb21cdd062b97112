package metrics

import (
	"time"

	"github.com/oakline-data/jobpulse/internal/model"
	"github.com/oakline-data/jobpulse/internal/rollup"
)

// ActiveProjectRow is one open job in the active-jobs snapshot.
type ActiveProjectRow struct {
	Key             rollup.Key // job, department, category
	ActualHours     float64
	Revenue         float64
	QuotedHours     *float64
	QuotedAmount    *float64
	QuoteConsumed   *float64 // actual / quoted hours
	ScopeCreepHours float64
	ScopeCreepShare *float64
	RealisedRate    *float64
	QuoteRate       *float64
	RateVariance    *float64
	DueDate         *time.Time // earliest due date seen for the job
	Client          *string    // first client seen for the job
}

var activeProjectDims = []rollup.Dimension{rollup.Job, rollup.Department, rollup.Category}

// ActiveProjects snapshots jobs that are open and recently active: quote
// consumption, scope-creep share and rate variance per job. Rows are scanned
// in reader order, so "first client" is deterministic.
func ActiveProjects(facts []model.TimesheetFact, recencyDays int) []ActiveProjectRow {
	active := ActiveJobs(facts, recencyDays)

	type acc struct {
		hours   float64
		revenue float64
		creep   float64
		due     *time.Time
		client  *string
	}
	grouped := make(map[rollup.Key]*acc)
	for _, f := range active {
		k := rollup.KeyOf(f, activeProjectDims)
		a, ok := grouped[k]
		if !ok {
			a = &acc{}
			grouped[k] = a
		}
		a.hours += f.Hours
		a.revenue += f.RevAlloc
		if f.IsScopeCreep() {
			a.creep += f.Hours
		}
		if f.DueDate != nil && (a.due == nil || f.DueDate.Before(*a.due)) {
			a.due = f.DueDate
		}
		if a.client == nil && f.Client != nil {
			a.client = f.Client
		}
	}

	quotes := make(map[rollup.Key]rollup.QuoteRow)
	for _, q := range rollup.QuoteRollup(active, activeProjectDims) {
		quotes[q.Key] = q
	}
	rates := make(map[rollup.Key]rollup.RateRow)
	for _, r := range rollup.Rates(active, activeProjectDims) {
		rates[r.Key] = r
	}

	rows := make([]ActiveProjectRow, 0, len(grouped))
	for _, k := range rollup.SortedKeys(grouped) {
		a := grouped[k]
		row := ActiveProjectRow{
			Key:             k,
			ActualHours:     a.hours,
			Revenue:         a.revenue,
			ScopeCreepHours: a.creep,
			ScopeCreepShare: rollup.Ratio(a.creep, a.hours),
			DueDate:         a.due,
			Client:          a.client,
		}
		if q, ok := quotes[k]; ok {
			qh, qa := q.QuotedHours, q.QuotedAmount
			row.QuotedHours = &qh
			row.QuotedAmount = &qa
			row.QuoteConsumed = rollup.Ratio(a.hours, qh)
		}
		if r, ok := rates[k]; ok {
			row.RealisedRate = r.RealisedRate
			row.QuoteRate = r.QuoteRate
			if r.RealisedRate != nil && r.QuoteRate != nil {
				variance := *r.RealisedRate - *r.QuoteRate
				row.RateVariance = &variance
			}
		}
		rows = append(rows, row)
	}
	return rows
}
