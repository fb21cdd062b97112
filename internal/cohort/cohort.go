// Package cohort computes recency weights, active-staff filters and weighted
// descriptive statistics over timesheet cohorts.
package cohort

import (
	"fmt"
	"math"
	"sort"

	"github.com/samber/lo"

	"github.com/oakline-data/jobpulse/internal/model"
	"github.com/oakline-data/jobpulse/internal/period"
)

// Weight returns the exponential recency weight of p against the latest
// observed period: 0.5^(monthsBetween / halfLife). A zero-month difference is
// always exactly 1.0. When no valid latest period exists every row weighs 1.0.
func Weight(p, latest period.Period, halfLifeMonths int) float64 {
	if latest.IsZero() || p.IsZero() {
		return 1.0
	}
	diff := period.MonthsBetween(p, latest)
	if halfLifeMonths < 1 {
		halfLifeMonths = 1
	}
	return math.Pow(0.5, float64(diff)/float64(halfLifeMonths))
}

// Weights computes a recency weight per fact, anchored at the latest valid
// month key in the slice.
func Weights(facts []model.TimesheetFact, halfLifeMonths int) []float64 {
	periods := factPeriods(facts)
	latest := period.Max(periods)
	weights := make([]float64, len(facts))
	for i := range facts {
		weights[i] = Weight(periods[i], latest, halfLifeMonths)
	}
	return weights
}

// ActiveStaff returns the staff with more than zero hours in the trailing
// months-period window ending at the latest observed period, sorted by name.
func ActiveStaff(facts []model.TimesheetFact, months int) []string {
	periods := factPeriods(facts)
	latest := period.Max(periods)
	if latest.IsZero() {
		return nil
	}
	cutoff := latest.AddMonths(-(months - 1))

	hours := make(map[string]float64)
	for i, f := range facts {
		if periods[i].IsZero() || periods[i].Before(cutoff) {
			continue
		}
		hours[f.StaffName] += f.Hours
	}

	staff := lo.Keys(lo.PickBy(hours, func(_ string, h float64) bool { return h > 0 }))
	sort.Strings(staff)
	return staff
}

// WeightedMedian returns the 50th weighted percentile: the smallest value
// whose cumulative weight reaches half the total weight. Pairs where either
// side is NaN are skipped; with no valid pairs the result is NaN.
func WeightedMedian(values, weights []float64) float64 {
	type pair struct{ v, w float64 }
	var pairs []pair
	for i, v := range values {
		w := 1.0
		if i < len(weights) {
			w = weights[i]
		}
		if math.IsNaN(v) || math.IsNaN(w) {
			continue
		}
		pairs = append(pairs, pair{v, w})
	}
	if len(pairs) == 0 {
		return math.NaN()
	}

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].v < pairs[j].v })

	total := 0.0
	for _, p := range pairs {
		total += p.w
	}
	cutoff := total * 0.5

	cum := 0.0
	for _, p := range pairs {
		cum += p.w
		if cum >= cutoff {
			return p.v
		}
	}
	return pairs[len(pairs)-1].v
}

// Median is the unweighted median, a weighted median with unit weights.
func Median(values []float64) float64 {
	return WeightedMedian(values, nil)
}

// Stats summarizes the cohort a recommendation is based on. Computed fresh
// per query, never persisted.
type Stats struct {
	Jobs            int
	ActiveStaff     int
	DateSpan        string
	RecencyWeighted bool
}

// Describe computes cohort descriptive statistics for a fact subset.
func Describe(facts []model.TimesheetFact, recencyWeighted bool, activeStaffMonths int) Stats {
	periods := factPeriods(facts)
	span := "-"
	earliest, latest := period.Min(periods), period.Max(periods)
	if !latest.IsZero() {
		span = fmt.Sprintf("%s to %s", earliest, latest)
	}

	jobs := lo.Uniq(lo.FilterMap(facts, func(f model.TimesheetFact, _ int) (string, bool) {
		return f.JobNo, f.JobNo != ""
	}))

	return Stats{
		Jobs:            len(jobs),
		ActiveStaff:     len(ActiveStaff(facts, activeStaffMonths)),
		DateSpan:        span,
		RecencyWeighted: recencyWeighted,
	}
}

func factPeriods(facts []model.TimesheetFact) []period.Period {
	periods := make([]period.Period, len(facts))
	for i, f := range facts {
		p, err := period.Parse(f.MonthKey)
		if err != nil {
			continue
		}
		periods[i] = p
	}
	return periods
}
