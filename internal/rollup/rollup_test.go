package rollup

import (
	"testing"

	"github.com/oakline-data/jobpulse/internal/model"
)

func fact(job, task, dept string, hours, cost, rev, qHours, qAmount float64) model.TimesheetFact {
	return model.TimesheetFact{
		JobNo:        job,
		TaskName:     task,
		Department:   dept,
		Hours:        hours,
		BaseCost:     cost,
		RevAlloc:     rev,
		QuotedHours:  qHours,
		QuotedAmount: qAmount,
	}
}

func TestQuoteRollup_DedupesRepeatingFields(t *testing.T) {
	// Two duplicate rows for (J1, T1) plus one for (J1, T2). Summing without
	// dedup would double-count T1's quote.
	facts := []model.TimesheetFact{
		fact("J1", "T1", "D1", 4, 0, 0, 10, 100),
		fact("J1", "T1", "D1", 6, 0, 0, 10, 100),
		fact("J1", "T2", "D1", 2, 0, 0, 5, 50),
	}

	rows := QuoteRollup(facts, []Dimension{Department})
	if len(rows) != 1 {
		t.Fatalf("got %d groups, want 1", len(rows))
	}
	if rows[0].QuotedHours != 15 {
		t.Errorf("QuotedHours = %v, want 15 (not 25)", rows[0].QuotedHours)
	}
	if rows[0].QuotedAmount != 150 {
		t.Errorf("QuotedAmount = %v, want 150 (not 250)", rows[0].QuotedAmount)
	}
}

func TestQuoteLines_FirstSeenWins(t *testing.T) {
	facts := []model.TimesheetFact{
		fact("J1", "T1", "D1", 1, 0, 0, 10, 100),
		fact("J1", "T1", "D2", 1, 0, 0, 10, 100),
	}
	lines := QuoteLines(facts)
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	if lines[0].Department != "D1" {
		t.Errorf("Department = %q, want first-seen D1", lines[0].Department)
	}
}

func TestProfitability_ZeroRevenueGroup(t *testing.T) {
	facts := []model.TimesheetFact{
		fact("J1", "T1", "D1", 10, 500, 0, 0, 0),
	}
	rows := Profitability(facts, []Dimension{Department})
	if len(rows) != 1 {
		t.Fatalf("got %d groups, want 1", len(rows))
	}
	if rows[0].MarginPct != nil {
		t.Errorf("MarginPct = %v, want nil on zero revenue", *rows[0].MarginPct)
	}
	if rows[0].Margin != -500 {
		t.Errorf("Margin = %v, want -500", rows[0].Margin)
	}
	if rows[0].RealisedRate == nil || *rows[0].RealisedRate != 0 {
		t.Errorf("RealisedRate = %v, want 0", rows[0].RealisedRate)
	}
}

func TestProfitability_ZeroHoursRate(t *testing.T) {
	facts := []model.TimesheetFact{
		fact("J1", "T1", "D1", 0, 0, 100, 0, 0),
	}
	rows := Profitability(facts, []Dimension{Department})
	if rows[0].RealisedRate != nil {
		t.Errorf("RealisedRate = %v, want nil on zero hours", *rows[0].RealisedRate)
	}
}

func TestProfitability_MissingKeyKeepsOwnBucket(t *testing.T) {
	facts := []model.TimesheetFact{
		fact("J1", "T1", "", 5, 0, 0, 0, 0),
		fact("J2", "T1", "D1", 3, 0, 0, 0, 0),
	}
	rows := Profitability(facts, []Dimension{Department})
	if len(rows) != 2 {
		t.Fatalf("got %d groups, want 2 (missing department is its own bucket)", len(rows))
	}
	if rows[0].Key.Department != "" || rows[0].Hours != 5 {
		t.Errorf("missing-key bucket = %+v, want 5 hours under empty department", rows[0])
	}
}

func TestRates_LeftJoinQuoteSide(t *testing.T) {
	facts := []model.TimesheetFact{
		fact("J1", "T1", "D1", 10, 0, 2000, 8, 1200),
		fact("", "", "D2", 5, 0, 500, 0, 0),
	}
	rows := Rates(facts, []Dimension{Department})
	if len(rows) != 2 {
		t.Fatalf("got %d groups, want 2", len(rows))
	}

	d1 := rows[0]
	if d1.RealisedRate == nil || *d1.RealisedRate != 200 {
		t.Errorf("D1 RealisedRate = %v, want 200", d1.RealisedRate)
	}
	if d1.QuoteRate == nil || *d1.QuoteRate != 150 {
		t.Errorf("D1 QuoteRate = %v, want 150", d1.QuoteRate)
	}

	d2 := rows[1]
	if d2.QuotedHours == nil || *d2.QuotedHours != 0 {
		t.Errorf("D2 QuotedHours = %v, want 0 (quote line exists with zero quote)", d2.QuotedHours)
	}
	if d2.QuoteRate != nil {
		t.Errorf("D2 QuoteRate = %v, want nil on zero quoted hours", *d2.QuoteRate)
	}
}

func TestKeyOf_FiscalYear(t *testing.T) {
	f := fact("J1", "T1", "D1", 1, 0, 0, 0, 0)
	f.MonthKey = "2024-08"
	k := KeyOf(f, []Dimension{FiscalYear})
	if k.FY != "FY2025" {
		t.Errorf("FY = %q, want FY2025", k.FY)
	}
}
