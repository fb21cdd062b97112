package metrics

import (
	"github.com/samber/lo"

	"github.com/oakline-data/jobpulse/internal/model"
	"github.com/oakline-data/jobpulse/internal/period"
	"github.com/oakline-data/jobpulse/internal/rollup"
)

// JobMixRow describes demand composition for one month, department and
// category.
type JobMixRow struct {
	Key                   rollup.Key // month, department, category
	JobCount              int
	TotalQuotedHours      float64
	TotalQuotedAmount     float64
	AvgQuotedHoursPerJob  *float64
	AvgQuotedAmountPerJob *float64
	ValuePerQuotedHour    *float64
	NewQuotedHours        float64 // quotes of jobs starting this month
	NewQuotedAmount       float64
	JobsFirstRevenue      int // jobs earning revenue for the first time
	ImpliedFTERequired    *float64
	ImpliedUtilisation    *float64
	ImpliedSlack          *float64
}

// JobMix computes demand per month, department and category from the
// job/task/month facts: distinct jobs, job-level deduped quote totals, and
// the staffing they imply against the capacity supply.
func JobMix(facts []model.JobTaskMonthFact, capacity []CapacityRow, weeksInWindow int, utilTarget float64) []JobMixRow {
	// Job-level quote totals, deduped to one line per (job, task) first.
	jobQuoteHours := make(map[string]float64)
	jobQuoteAmount := make(map[string]float64)
	for _, line := range rollup.QuoteLines(facts) {
		hours, amount := line.QuoteTotals()
		jobQuoteHours[line.JobNo] += hours
		jobQuoteAmount[line.JobNo] += amount
	}

	firstActivity := FirstActivityMonth(facts)
	firstRevenue := FirstRevenueMonth(facts)

	grouped := make(map[rollup.Key][]string) // jobs per group, with repeats
	for _, f := range facts {
		k := rollup.Key{Month: f.MonthKey, Department: f.Department, Category: f.JobCategory}
		grouped[k] = append(grouped[k], f.JobNo)
	}

	supply := 0.0
	for _, c := range capacity {
		if c.BillableCapacity != nil {
			supply += *c.BillableCapacity
		}
	}
	denomFTE := hoursPerWeek * float64(weeksInWindow) * utilTarget

	rows := make([]JobMixRow, 0, len(grouped))
	for _, k := range rollup.SortedKeys(grouped) {
		jobs := lo.Uniq(grouped[k])
		groupPeriod, _ := period.Parse(k.Month)

		row := JobMixRow{Key: k, JobCount: len(jobs)}
		for _, job := range jobs {
			row.TotalQuotedHours += jobQuoteHours[job]
			row.TotalQuotedAmount += jobQuoteAmount[job]
			if p, ok := firstActivity[job]; ok && p == groupPeriod {
				row.NewQuotedHours += jobQuoteHours[job]
				row.NewQuotedAmount += jobQuoteAmount[job]
			}
			if p, ok := firstRevenue[job]; ok && p == groupPeriod {
				row.JobsFirstRevenue++
			}
		}

		row.AvgQuotedHoursPerJob = rollup.Ratio(row.TotalQuotedHours, float64(row.JobCount))
		row.AvgQuotedAmountPerJob = rollup.Ratio(row.TotalQuotedAmount, float64(row.JobCount))
		row.ValuePerQuotedHour = rollup.Ratio(row.TotalQuotedAmount, row.TotalQuotedHours)
		row.ImpliedFTERequired = rollup.Ratio(row.TotalQuotedHours, denomFTE)
		row.ImpliedUtilisation = rollup.Ratio(row.TotalQuotedHours, supply)
		if row.ImpliedUtilisation != nil {
			slack := 1 - *row.ImpliedUtilisation
			row.ImpliedSlack = &slack
		}
		rows = append(rows, row)
	}
	return rows
}
