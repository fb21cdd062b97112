package metrics

import (
	"math"

	"github.com/oakline-data/jobpulse/internal/cohort"
	"github.com/oakline-data/jobpulse/internal/model"
	"github.com/oakline-data/jobpulse/internal/rollup"
)

// MarginBridgeRow decomposes the gap between actual and quote-expected margin
// into four additive effects for one group.
type MarginBridgeRow struct {
	Key           rollup.Key
	Hours         float64
	BillableHours float64
	ActualRevenue float64
	ActualCost    float64
	ActualMargin  float64

	ExpectedCostRate *float64 // median row-level cost per hour
	ExpectedCost     *float64
	ExpectedMargin   *float64
	TotalVariance    *float64

	HoursVarianceEffect          *float64
	RateVarianceEffect           *float64
	CostVarianceEffect           *float64
	NonBillableLeakageEffect     *float64
	HoursVariancePctOfTotal      *float64
	RateVariancePctOfTotal       *float64
	CostVariancePctOfTotal       *float64
	NonBillableLeakagePctOfTotal *float64
}

// MarginBridge explains actual-vs-expected margin variance per group. The
// expected side prices the deduped quote at the group's median cost rate;
// percentage attributions are nil when the total variance is zero.
func MarginBridge(facts []model.TimesheetFact, dims []rollup.Dimension) []MarginBridgeRow {
	type acc struct {
		hours     float64
		billable  float64
		revenue   float64
		cost      float64
		costRates []float64 // row-level cost per hour
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
		if f.Billable {
			a.billable += f.Hours
		}
		a.revenue += f.RevAlloc
		a.cost += f.BaseCost
		if f.Hours != 0 {
			a.costRates = append(a.costRates, f.BaseCost/f.Hours)
		}
	}

	quotes := make(map[rollup.Key]rollup.QuoteRow)
	for _, q := range rollup.QuoteRollup(facts, dims) {
		quotes[q.Key] = q
	}

	rows := make([]MarginBridgeRow, 0, len(grouped))
	for _, k := range rollup.SortedKeys(grouped) {
		a := grouped[k]
		row := MarginBridgeRow{
			Key:           k,
			Hours:         a.hours,
			BillableHours: a.billable,
			ActualRevenue: a.revenue,
			ActualCost:    a.cost,
			ActualMargin:  a.revenue - a.cost,
		}

		if rate := cohort.Median(a.costRates); !math.IsNaN(rate) {
			row.ExpectedCostRate = &rate
		}

		if q, ok := quotes[k]; ok && row.ExpectedCostRate != nil {
			expectedCost := q.QuotedHours * *row.ExpectedCostRate
			expectedMargin := q.QuotedAmount - expectedCost
			totalVariance := row.ActualMargin - expectedMargin
			row.ExpectedCost = &expectedCost
			row.ExpectedMargin = &expectedMargin
			row.TotalVariance = &totalVariance

			hoursEffect := (a.hours - q.QuotedHours) * *row.ExpectedCostRate
			rateEffect := a.revenue - q.QuotedAmount
			costEffect := a.cost - expectedCost
			row.HoursVarianceEffect = &hoursEffect
			row.RateVarianceEffect = &rateEffect
			row.CostVarianceEffect = &costEffect

			billableShare := 0.0
			if share := rollup.Ratio(a.billable, a.hours); share != nil {
				billableShare = *share
			}
			leakage := (1 - billableShare) * a.cost
			row.NonBillableLeakageEffect = &leakage

			row.HoursVariancePctOfTotal = rollup.Ratio(hoursEffect, totalVariance)
			row.RateVariancePctOfTotal = rollup.Ratio(rateEffect, totalVariance)
			row.CostVariancePctOfTotal = rollup.Ratio(costEffect, totalVariance)
			row.NonBillableLeakagePctOfTotal = rollup.Ratio(leakage, totalVariance)
		}

		rows = append(rows, row)
	}
	return rows
}
