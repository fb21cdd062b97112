package source

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTable(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	processed := filepath.Join(dir, "processed")
	if err := os.MkdirAll(processed, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(processed, name+".csv")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return dir
}

const timesheetHeader = "department_final,job_category,task_name,staff_name,month_key," +
	"hours_raw,base_cost,rev_alloc,quoted_time_total,quoted_amount_total," +
	"quote_match_flag,is_billable,utilisation_target,fte_hours_scaling,breakdown"

func TestResolveTable_Missing(t *testing.T) {
	dir := t.TempDir()
	_, err := ResolveTable(dir, TableTimesheet)
	var mie *MissingInputError
	if !errors.As(err, &mie) {
		t.Fatalf("error = %v, want MissingInputError", err)
	}
	if mie.Table != TableTimesheet {
		t.Errorf("Table = %q, want %q", mie.Table, TableTimesheet)
	}
}

func TestReadTimesheetFacts(t *testing.T) {
	content := timesheetHeader + ",job_no,client\n" +
		"Tax,Compliance,Prep,Alice,2024-06,7.5,300,900,10,1200,match,true,0.8,1.0,,J1,Acme\n" +
		"Tax,Compliance,Review,Bob,2024-05,2,100,0,0,0,no_match,false,0.8,1.0,internal,J1,\n"
	dir := writeTable(t, TableTimesheet, content)

	path, err := ResolveTable(dir, TableTimesheet)
	if err != nil {
		t.Fatal(err)
	}
	facts, result, err := ReadTimesheetFacts(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(facts) != 2 {
		t.Fatalf("got %d facts, want 2", len(facts))
	}
	if !result.Degraded() {
		t.Error("expected degraded result: several soft columns absent")
	}

	// Rows are sorted by month, so Bob's May row comes first.
	if facts[0].StaffName != "Bob" || facts[0].MonthKey != "2024-05" {
		t.Errorf("facts[0] = %s/%s, want Bob/2024-05 after stable sort", facts[0].StaffName, facts[0].MonthKey)
	}

	alice := facts[1]
	if alice.Hours != 7.5 || alice.RevAlloc != 900 || !alice.Billable {
		t.Errorf("Alice row mis-parsed: %+v", alice)
	}
	if alice.Client == nil || *alice.Client != "Acme" {
		t.Errorf("Client = %v, want Acme", alice.Client)
	}
	if facts[0].Client != nil {
		t.Errorf("empty client cell should map to nil, got %q", *facts[0].Client)
	}
	if !facts[0].IsScopeCreep() {
		t.Error("no_match row should flag scope creep")
	}
}

func TestReadTimesheetFacts_SchemaError(t *testing.T) {
	content := "department_final,task_name\nTax,Prep\n"
	dir := writeTable(t, TableTimesheet, content)
	path, _ := ResolveTable(dir, TableTimesheet)

	_, _, err := ReadTimesheetFacts(path)
	var se *SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("error = %v, want SchemaError", err)
	}
	for _, col := range []string{"month_key", "hours_raw", "is_billable"} {
		if !strings.Contains(err.Error(), col) {
			t.Errorf("SchemaError should list %q, got: %v", col, err)
		}
	}
	if strings.Contains(err.Error(), "department_final") {
		t.Errorf("SchemaError lists a present column: %v", err)
	}
}

func TestValidate_SoftColumnsDegrade(t *testing.T) {
	result, err := TimesheetSpec.Validate(strings.Split(timesheetHeader, ","))
	if err != nil {
		t.Fatalf("all required columns present, got error: %v", err)
	}
	if !result.Degraded() {
		t.Error("missing soft columns should mark the result degraded")
	}
	found := false
	for _, c := range result.MissingSoft {
		if c == "job_no" {
			found = true
		}
	}
	if !found {
		t.Errorf("MissingSoft = %v, should include job_no", result.MissingSoft)
	}
}

func TestReadRevenueAudit(t *testing.T) {
	content := "job_no,month_key,rev_alloc_total,revenue_pool_total,diff\nJ1,2024-06,300,300,0\n"
	dir := writeTable(t, TableRevenueAudit, content)
	path, _ := ResolveTable(dir, TableRevenueAudit)

	rows, err := ReadRevenueAudit(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].RevAllocTotal != 300 {
		t.Errorf("rows = %+v, want one row with 300 total", rows)
	}
}
