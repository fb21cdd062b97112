package metrics

import (
	"testing"

	"github.com/oakline-data/jobpulse/internal/model"
)

func benchFact(task, staff, month string, hours, qHours float64) model.TimesheetFact {
	return model.TimesheetFact{
		JobNo:       "J1",
		Department:  "D1",
		JobCategory: "C1",
		TaskName:    task,
		StaffName:   staff,
		MonthKey:    month,
		Hours:       hours,
		QuotedHours: qHours,
	}
}

func TestBenchmarkQuote_EqualWeights(t *testing.T) {
	facts := []model.TimesheetFact{
		benchFact("Design", "A", "2024-06", 10, 8),
		benchFact("Design", "A", "2024-06", 20, 8),
		benchFact("Design", "A", "2024-06", 30, 8),
		{JobNo: "J9", Department: "D2", JobCategory: "C1", TaskName: "Design", Hours: 99},
	}
	bench := BenchmarkQuote(facts, QuoteBenchmarkParams{
		Department:        "D1",
		Category:          "C1",
		ActiveStaffMonths: 6,
	})
	if len(bench.Tasks) != 1 {
		t.Fatalf("got %d tasks, want 1 (other department excluded)", len(bench.Tasks))
	}
	if bench.Tasks[0].MedianHours == nil || *bench.Tasks[0].MedianHours != 20 {
		t.Errorf("MedianHours = %v, want 20", bench.Tasks[0].MedianHours)
	}
	if bench.Cohort.Jobs != 1 {
		t.Errorf("Cohort.Jobs = %d, want 1", bench.Cohort.Jobs)
	}
	if bench.Cohort.RecencyWeighted {
		t.Error("cohort should not be flagged recency weighted")
	}
}

func TestBenchmarkQuote_RecencyShiftsMedian(t *testing.T) {
	// Old rows say 10h, recent rows say 30h. With a short half-life the
	// weighted median should land on the recent value.
	facts := []model.TimesheetFact{
		benchFact("Design", "A", "2022-01", 10, 0),
		benchFact("Design", "A", "2022-02", 10, 0),
		benchFact("Design", "A", "2024-06", 30, 0),
		benchFact("Design", "A", "2024-05", 30, 0),
	}
	bench := BenchmarkQuote(facts, QuoteBenchmarkParams{
		Department:        "D1",
		Category:          "C1",
		RecencyWeighted:   true,
		HalfLifeMonths:    3,
		ActiveStaffMonths: 6,
	})
	if bench.Tasks[0].MedianHours == nil || *bench.Tasks[0].MedianHours != 30 {
		t.Errorf("MedianHours = %v, want 30 under recency weighting", bench.Tasks[0].MedianHours)
	}
	if !bench.Cohort.RecencyWeighted {
		t.Error("cohort should be flagged recency weighted")
	}
}

func TestBenchmarkQuote_TrailingWindow(t *testing.T) {
	facts := []model.TimesheetFact{
		benchFact("Design", "A", "2023-01", 100, 0),
		benchFact("Design", "A", "2024-06", 10, 0),
	}
	bench := BenchmarkQuote(facts, QuoteBenchmarkParams{
		Department:        "D1",
		Category:          "C1",
		WindowMonths:      6,
		ActiveStaffMonths: 6,
	})
	if bench.Tasks[0].MedianHours == nil || *bench.Tasks[0].MedianHours != 10 {
		t.Errorf("MedianHours = %v, want 10 (2023 row outside window)", bench.Tasks[0].MedianHours)
	}
}

func TestBenchmarkQuote_CostRate(t *testing.T) {
	f1 := benchFact("Design", "A", "2024-06", 10, 0)
	f1.BaseCost = 800
	f1.RevAlloc = 1500
	bench := BenchmarkQuote([]model.TimesheetFact{f1}, QuoteBenchmarkParams{
		Department:        "D1",
		Category:          "C1",
		ActiveStaffMonths: 6,
	})
	if bench.CostRate == nil || *bench.CostRate != 80 {
		t.Errorf("CostRate = %v, want 80", bench.CostRate)
	}
	if bench.RealisedRate == nil || *bench.RealisedRate != 150 {
		t.Errorf("RealisedRate = %v, want 150", bench.RealisedRate)
	}
}
