package metrics

import (
	"github.com/oakline-data/jobpulse/internal/model"
	"github.com/oakline-data/jobpulse/internal/period"
	"github.com/oakline-data/jobpulse/internal/rollup"
)

// hoursPerWeek is the full-time weekly hours baseline scaled by FTE.
const hoursPerWeek = 38.0

// CapacityRow holds capacity supply and headroom for one group.
type CapacityRow struct {
	Key                  rollup.Key
	UtilTarget           *float64 // group mean
	FTEScaling           *float64 // group mean
	WeeklyCapacity       *float64
	PeriodCapacity       *float64
	BillableCapacity     *float64
	TrailingBillableLoad float64 // missing load is 0, never nil
	TrailingTotalLoad    float64
	Headroom             *float64
}

// Capacity computes capacity supply per group from FTE scaling and the
// utilisation target, and nets off the billable load of the last two observed
// periods. Leave rows are excluded throughout.
func Capacity(facts []model.TimesheetFact, dims []rollup.Dimension, weeksInWindow int) []CapacityRow {
	type acc struct {
		rows       int
		utilTarget float64
		fteScaling float64
		trailBill  float64
		trailTotal float64
	}

	periods := make([]period.Period, len(facts))
	for i, f := range facts {
		if p, err := period.Parse(f.MonthKey); err == nil {
			periods[i] = p
		}
	}
	latest := period.Max(periods)
	// Trailing load covers the current and prior observed period.
	var trailStart period.Period
	if !latest.IsZero() {
		trailStart = latest.AddMonths(-1)
	}

	grouped := make(map[rollup.Key]*acc)
	for i, f := range facts {
		if f.IsLeave() {
			continue
		}
		k := rollup.KeyOf(f, dims)
		a, ok := grouped[k]
		if !ok {
			a = &acc{}
			grouped[k] = a
		}
		a.rows++
		a.utilTarget += f.UtilTarget
		a.fteScaling += f.FTEScaling

		if !latest.IsZero() && !periods[i].IsZero() && !periods[i].Before(trailStart) {
			a.trailTotal += f.Hours
			if f.Billable {
				a.trailBill += f.Hours
			}
		}
	}

	rows := make([]CapacityRow, 0, len(grouped))
	for _, k := range rollup.SortedKeys(grouped) {
		a := grouped[k]
		row := CapacityRow{
			Key:                  k,
			UtilTarget:           rollup.Ratio(a.utilTarget, float64(a.rows)),
			FTEScaling:           rollup.Ratio(a.fteScaling, float64(a.rows)),
			TrailingBillableLoad: a.trailBill,
			TrailingTotalLoad:    a.trailTotal,
		}
		if row.FTEScaling != nil {
			weekly := hoursPerWeek * *row.FTEScaling
			row.WeeklyCapacity = &weekly
			periodCap := weekly * float64(weeksInWindow)
			row.PeriodCapacity = &periodCap
			if row.UtilTarget != nil {
				billable := periodCap * *row.UtilTarget
				row.BillableCapacity = &billable
				headroom := billable - a.trailBill
				row.Headroom = &headroom
			}
		}
		rows = append(rows, row)
	}
	return rows
}
