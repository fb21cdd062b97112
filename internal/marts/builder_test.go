package marts

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/oakline-data/jobpulse/internal/model"
)

func testParams() Params {
	return Params{
		Company:                 "SG",
		RecencyDays:             21,
		WeeksInWindow:           4,
		UtilTarget:              0.75,
		SevereOverrunMultiplier: 1.2,
	}
}

func testFacts() ([]model.TimesheetFact, []model.JobTaskMonthFact) {
	ts := []model.TimesheetFact{
		{JobNo: "J1", Department: "Tax", JobCategory: "Compliance", TaskName: "Prep", StaffName: "Alice",
			MonthKey: "2024-05", Hours: 10, BaseCost: 500, RevAlloc: 1500, Billable: true,
			QuotedHours: 12, QuotedAmount: 1800, UtilTarget: 0.8, FTEScaling: 1.0},
		{JobNo: "J1", Department: "Tax", JobCategory: "Compliance", TaskName: "Prep", StaffName: "Bob",
			MonthKey: "2024-06", Hours: 5, BaseCost: 250, RevAlloc: 700, Billable: true,
			QuotedHours: 12, QuotedAmount: 1800, UtilTarget: 0.8, FTEScaling: 1.0},
		{JobNo: "J2", Department: "Advisory", JobCategory: "Deals", TaskName: "Model", StaffName: "Alice",
			MonthKey: "2024-06", Hours: 8, BaseCost: 600, RevAlloc: 0, Billable: false,
			UtilTarget: 0.8, FTEScaling: 1.0, QuoteMatch: "no_match"},
	}
	jt := []model.JobTaskMonthFact{
		{JobNo: "J1", TaskName: "Prep", MonthKey: "2024-05", Department: "Tax", JobCategory: "Compliance",
			HoursSum: 10, RevAllocSum: 1500, QuotedHours: 12, QuotedAmount: 1800},
		{JobNo: "J1", TaskName: "Prep", MonthKey: "2024-06", Department: "Tax", JobCategory: "Compliance",
			HoursSum: 5, RevAllocSum: 700, QuotedHours: 12, QuotedAmount: 1800},
	}
	return ts, jt
}

func TestBuildAll_ProducesAllMarts(t *testing.T) {
	ts, jt := testFacts()
	tables, err := BuildAll(ts, jt, testParams())
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		MartDeptMonth, MartDeptCategoryMonth, MartDeptCategoryTask,
		MartDeptCategoryStaff, MartActiveJobs, MartJobMixMonth,
	}
	for _, name := range want {
		table, ok := tables[name]
		if !ok {
			t.Errorf("mart %s missing from build", name)
			continue
		}
		if table.Name != name {
			t.Errorf("table.Name = %q, want %q", table.Name, name)
		}
	}
	if len(tables) != len(want) {
		t.Errorf("got %d marts, want %d", len(tables), len(want))
	}
}

func TestBuildAll_Idempotent(t *testing.T) {
	ts, jt := testFacts()
	first, err := BuildAll(ts, jt, testParams())
	if err != nil {
		t.Fatal(err)
	}
	second, err := BuildAll(ts, jt, testParams())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("two builds over identical inputs differ")
	}
}

func TestBuildAll_MissingInputFailsFast(t *testing.T) {
	ts, _ := testFacts()
	if _, err := BuildAll(ts, nil, testParams()); err == nil {
		t.Error("nil job/task facts should fail the whole build")
	}
	if _, err := BuildAll(nil, nil, testParams()); err == nil {
		t.Error("nil timesheet facts should fail the whole build")
	}
}

func TestBuildAll_QuoteDedupInCube(t *testing.T) {
	ts, jt := testFacts()
	tables, err := BuildAll(ts, jt, testParams())
	if err != nil {
		t.Fatal(err)
	}

	cube := tables[MartDeptCategoryTask]
	var prep []string
	for _, row := range cube.Rows {
		if row[1] == "Tax" && row[3] == "Prep" {
			prep = row
		}
	}
	if prep == nil {
		t.Fatal("no Tax/Prep row in task cube")
	}
	// quoted_hours is column 10; the 12h quote repeats on two rows but must
	// appear once.
	if prep[10] != "12" {
		t.Errorf("quoted_hours = %q, want 12 (deduped)", prep[10])
	}
}

func TestWrite_RewritesFiles(t *testing.T) {
	ts, jt := testFacts()
	tables, err := BuildAll(ts, jt, testParams())
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	if err := Write(dir, tables); err != nil {
		t.Fatal(err)
	}
	firstBytes, err := os.ReadFile(filepath.Join(dir, "marts", MartDeptMonth+".csv"))
	if err != nil {
		t.Fatal(err)
	}

	if err := Write(dir, tables); err != nil {
		t.Fatal(err)
	}
	secondBytes, err := os.ReadFile(filepath.Join(dir, "marts", MartDeptMonth+".csv"))
	if err != nil {
		t.Fatal(err)
	}
	if string(firstBytes) != string(secondBytes) {
		t.Error("rewritten mart differs byte-for-byte from the first write")
	}
	if len(firstBytes) == 0 {
		t.Error("mart file is empty")
	}
}
