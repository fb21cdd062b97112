package metrics

import (
	"testing"

	"github.com/oakline-data/jobpulse/internal/model"
	"github.com/oakline-data/jobpulse/internal/rollup"
)

var deptDims = []rollup.Dimension{rollup.Department}

func TestUtilisation_LeaveExclusion(t *testing.T) {
	facts := []model.TimesheetFact{
		{Department: "D1", TaskName: "Design", StaffName: "A", Hours: 30, Billable: true, UtilTarget: 0.8},
		{Department: "D1", TaskName: "Admin", StaffName: "A", Hours: 10, Billable: false, UtilTarget: 0.8},
		{Department: "D1", TaskName: "Annual Leave", StaffName: "A", Hours: 8, Billable: false, UtilTarget: 0.8},
	}

	rows := Utilisation(facts, deptDims, true)
	if len(rows) != 1 {
		t.Fatalf("got %d groups, want 1", len(rows))
	}
	if rows[0].TotalHours != 40 {
		t.Errorf("TotalHours = %v, want 40 (leave excluded)", rows[0].TotalHours)
	}
	if rows[0].Utilisation == nil || *rows[0].Utilisation != 0.75 {
		t.Errorf("Utilisation = %v, want 0.75", rows[0].Utilisation)
	}
	if rows[0].Gap == nil || *rows[0].Gap != 0.8-0.75 {
		t.Errorf("Gap = %v, want 0.05", rows[0].Gap)
	}

	included := Utilisation(facts, deptDims, false)
	if included[0].TotalHours != 48 {
		t.Errorf("TotalHours = %v, want 48 (leave included)", included[0].TotalHours)
	}
}

func TestUtilisation_WeightedTarget(t *testing.T) {
	facts := []model.TimesheetFact{
		{Department: "D1", TaskName: "A", Hours: 30, Billable: true, UtilTarget: 0.9},
		{Department: "D1", TaskName: "B", Hours: 10, Billable: true, UtilTarget: 0.5},
	}
	rows := Utilisation(facts, deptDims, true)
	want := (0.9*30 + 0.5*10) / 40
	if rows[0].Target == nil || *rows[0].Target != want {
		t.Errorf("Target = %v, want %v (hours-weighted)", rows[0].Target, want)
	}
}

func TestUtilisation_ZeroHoursGroup(t *testing.T) {
	facts := []model.TimesheetFact{
		{Department: "D1", TaskName: "A", Hours: 0, Billable: true, UtilTarget: 0.8},
	}
	rows := Utilisation(facts, deptDims, true)
	if rows[0].Utilisation != nil {
		t.Errorf("Utilisation = %v, want nil on zero hours", *rows[0].Utilisation)
	}
}

func TestLeakageBreakdown(t *testing.T) {
	facts := []model.TimesheetFact{
		{Department: "D1", TaskName: "Admin", Breakdown: "internal", Hours: 4},
		{Department: "D1", TaskName: "Admin", Breakdown: "internal", Hours: 2},
		{Department: "D1", TaskName: "Training", Breakdown: "development", Hours: 3},
		{Department: "D1", TaskName: "Billable work", Billable: true, Hours: 30},
		{Department: "D1", TaskName: "Sick Leave", Breakdown: "leave", Hours: 8},
	}
	rows := LeakageBreakdown(facts, deptDims)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2 (billable and leave rows excluded)", len(rows))
	}
	if rows[0].Breakdown != "development" || rows[0].Hours != 3 {
		t.Errorf("rows[0] = %+v, want development/3", rows[0])
	}
	if rows[1].Breakdown != "internal" || rows[1].Hours != 6 {
		t.Errorf("rows[1] = %+v, want internal/6", rows[1])
	}
}

func TestCapacity_Headroom(t *testing.T) {
	facts := []model.TimesheetFact{
		{StaffName: "Alice", TaskName: "Work", MonthKey: "2024-05", Hours: 50, Billable: true, UtilTarget: 0.8, FTEScaling: 1.0},
		{StaffName: "Alice", TaskName: "Work", MonthKey: "2024-06", Hours: 60, Billable: true, UtilTarget: 0.8, FTEScaling: 1.0},
		{StaffName: "Alice", TaskName: "Work", MonthKey: "2024-01", Hours: 100, Billable: true, UtilTarget: 0.8, FTEScaling: 1.0},
	}
	rows := Capacity(facts, []rollup.Dimension{rollup.Staff}, 4)
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	r := rows[0]
	if r.WeeklyCapacity == nil || *r.WeeklyCapacity != 38 {
		t.Errorf("WeeklyCapacity = %v, want 38", r.WeeklyCapacity)
	}
	if r.PeriodCapacity == nil || *r.PeriodCapacity != 152 {
		t.Errorf("PeriodCapacity = %v, want 152", r.PeriodCapacity)
	}
	if r.BillableCapacity == nil || *r.BillableCapacity != 152*0.8 {
		t.Errorf("BillableCapacity = %v, want %v", r.BillableCapacity, 152*0.8)
	}
	// Trailing load = last two observed periods only (2024-05 + 2024-06).
	if r.TrailingBillableLoad != 110 {
		t.Errorf("TrailingBillableLoad = %v, want 110", r.TrailingBillableLoad)
	}
	if r.Headroom == nil || *r.Headroom != 152*0.8-110 {
		t.Errorf("Headroom = %v, want %v", r.Headroom, 152*0.8-110)
	}
}

func TestCapacity_MissingTrailingLoadIsZero(t *testing.T) {
	facts := []model.TimesheetFact{
		{StaffName: "Bob", TaskName: "Work", MonthKey: "", Hours: 10, UtilTarget: 0.8, FTEScaling: 0.5},
	}
	rows := Capacity(facts, []rollup.Dimension{rollup.Staff}, 4)
	if rows[0].TrailingBillableLoad != 0 {
		t.Errorf("TrailingBillableLoad = %v, want 0", rows[0].TrailingBillableLoad)
	}
	if rows[0].WeeklyCapacity == nil || *rows[0].WeeklyCapacity != 19 {
		t.Errorf("WeeklyCapacity = %v, want 19 (38 * 0.5)", rows[0].WeeklyCapacity)
	}
}
