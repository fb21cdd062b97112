package metrics

import (
	"math"
	"sort"

	"github.com/samber/lo"

	"github.com/oakline-data/jobpulse/internal/cohort"
	"github.com/oakline-data/jobpulse/internal/model"
	"github.com/oakline-data/jobpulse/internal/period"
)

// QuoteBenchmarkParams selects and weights the cohort backing a quote
// recommendation.
type QuoteBenchmarkParams struct {
	Department        string
	Category          string
	WindowMonths      int
	RecencyWeighted   bool
	ActiveStaffOnly   bool
	HalfLifeMonths    int
	ActiveStaffMonths int
}

// TaskBenchmark holds weighted-median benchmarks for one task.
type TaskBenchmark struct {
	TaskName           string
	MedianQuotedHours  *float64
	MedianQuotedAmount *float64
	MedianHours        *float64
}

// QuoteBenchmark is the cohort-derived basis for pricing a new job.
type QuoteBenchmark struct {
	Tasks        []TaskBenchmark
	CostRate     *float64 // cohort cost per hour
	RealisedRate *float64 // cohort revenue per hour
	Cohort       cohort.Stats
}

// BenchmarkQuote builds per-task weighted-median benchmarks from the
// department/category cohort, optionally recency-weighted and restricted to
// active staff.
func BenchmarkQuote(facts []model.TimesheetFact, p QuoteBenchmarkParams) QuoteBenchmark {
	subset := lo.Filter(facts, func(f model.TimesheetFact, _ int) bool {
		return f.Department == p.Department && f.JobCategory == p.Category
	})

	if p.WindowMonths > 0 {
		periods := make([]period.Period, len(subset))
		for i, f := range subset {
			if parsed, err := period.Parse(f.MonthKey); err == nil {
				periods[i] = parsed
			}
		}
		if start, end, ok := period.Trailing(p.WindowMonths).Bounds(periods); ok {
			var windowed []model.TimesheetFact
			for i, f := range subset {
				if !periods[i].IsZero() && period.Contains(start, end, periods[i]) {
					windowed = append(windowed, f)
				}
			}
			subset = windowed
		}
	}

	if p.ActiveStaffOnly {
		active := cohort.ActiveStaff(subset, p.ActiveStaffMonths)
		activeSet := lo.SliceToMap(active, func(s string) (string, struct{}) { return s, struct{}{} })
		subset = lo.Filter(subset, func(f model.TimesheetFact, _ int) bool {
			_, ok := activeSet[f.StaffName]
			return ok
		})
	}

	weights := make([]float64, len(subset))
	for i := range weights {
		weights[i] = 1.0
	}
	if p.RecencyWeighted {
		weights = cohort.Weights(subset, p.HalfLifeMonths)
	}

	byTask := make(map[string][]int)
	for i, f := range subset {
		byTask[f.TaskName] = append(byTask[f.TaskName], i)
	}
	tasks := lo.Keys(byTask)
	sort.Strings(tasks)

	bench := QuoteBenchmark{
		Cohort: cohort.Describe(subset, p.RecencyWeighted, p.ActiveStaffMonths),
	}
	for _, task := range tasks {
		idx := byTask[task]
		tb := TaskBenchmark{TaskName: task}
		tb.MedianQuotedHours = finite(cohort.WeightedMedian(pick(subset, idx, func(f model.TimesheetFact) float64 { return f.QuotedHours }), pickWeights(weights, idx)))
		tb.MedianQuotedAmount = finite(cohort.WeightedMedian(pick(subset, idx, func(f model.TimesheetFact) float64 { return f.QuotedAmount }), pickWeights(weights, idx)))
		tb.MedianHours = finite(cohort.WeightedMedian(pick(subset, idx, func(f model.TimesheetFact) float64 { return f.Hours }), pickWeights(weights, idx)))
		bench.Tasks = append(bench.Tasks, tb)
	}

	var hours, cost, revenue float64
	for _, f := range subset {
		hours += f.Hours
		cost += f.BaseCost
		revenue += f.RevAlloc
	}
	if hours != 0 {
		costRate := cost / hours
		realised := revenue / hours
		bench.CostRate = &costRate
		bench.RealisedRate = &realised
	}
	return bench
}

func pick(facts []model.TimesheetFact, idx []int, field func(model.TimesheetFact) float64) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = field(facts[j])
	}
	return out
}

func pickWeights(weights []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = weights[j]
	}
	return out
}

func finite(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
