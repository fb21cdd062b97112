// Package audit checks the loaded facts against the reconciliation snapshots.
package audit

import (
	"fmt"
	"math"
	"sort"

	"github.com/oakline-data/jobpulse/internal/model"
)

// DefaultTolerance is the absolute difference treated as rounding noise.
const DefaultTolerance = 1e-6

// Discrepancy is one (job, month) where allocated revenue in the fact table
// disagrees with the audit snapshot.
type Discrepancy struct {
	JobNo     string
	MonthKey  string
	Allocated float64 // summed from fact rows
	Audited   float64 // rev_alloc_total from the audit table
}

// Diff returns the signed allocation gap.
func (d Discrepancy) Diff() float64 {
	return d.Allocated - d.Audited
}

func (d Discrepancy) String() string {
	return fmt.Sprintf("%s %s: allocated %.2f vs audited %.2f", d.JobNo, d.MonthKey, d.Allocated, d.Audited)
}

// ReconcileRevenue sums rev_alloc by (job_no, month_key) and compares against
// the audit totals. Every pair present on either side is checked; pairs
// within tolerance are dropped.
func ReconcileRevenue(facts []model.TimesheetFact, auditRows []model.RevenueAuditRow, tolerance float64) []Discrepancy {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}

	type jm struct{ job, month string }
	allocated := make(map[jm]float64)
	for _, f := range facts {
		allocated[jm{f.JobNo, f.MonthKey}] += f.RevAlloc
	}
	audited := make(map[jm]float64)
	for _, r := range auditRows {
		audited[jm{r.JobNo, r.MonthKey}] += r.RevAllocTotal
	}

	keys := make(map[jm]struct{}, len(allocated)+len(audited))
	for k := range allocated {
		keys[k] = struct{}{}
	}
	for k := range audited {
		keys[k] = struct{}{}
	}

	var out []Discrepancy
	for k := range keys {
		d := Discrepancy{
			JobNo:     k.job,
			MonthKey:  k.month,
			Allocated: allocated[k],
			Audited:   audited[k],
		}
		if math.Abs(d.Diff()) > tolerance {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].JobNo != out[j].JobNo {
			return out[i].JobNo < out[j].JobNo
		}
		return out[i].MonthKey < out[j].MonthKey
	})
	return out
}

// TotalUnallocated sums the unallocated revenue snapshot.
func TotalUnallocated(rows []model.UnallocatedAuditRow) float64 {
	total := 0.0
	for _, r := range rows {
		total += r.Unallocated
	}
	return total
}
