package source

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/oakline-data/jobpulse/internal/model"
)

// ResolveTable returns the path of a named table under <dataDir>/processed,
// or a MissingInputError when no file exists.
func ResolveTable(dataDir, name string) (string, error) {
	dir := filepath.Join(dataDir, "processed")
	path := filepath.Join(dir, name+".csv")
	if _, err := os.Stat(path); err != nil {
		return "", &MissingInputError{Table: name, Dir: dir}
	}
	return path, nil
}

// table is a parsed CSV file with a column index.
type table struct {
	head []string
	cols map[string]int
	rows [][]string
}

func readCSV(path string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: empty file, expected a header row", path)
	}

	head := make([]string, len(records[0]))
	cols := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		head[i] = strings.TrimSpace(name)
		cols[head[i]] = i
	}
	return &table{head: head, cols: cols, rows: records[1:]}, nil
}

func (t *table) header() []string {
	return t.head
}

// cell returns the trimmed value of a column, or "" when the column is absent
// or the row is short.
func (t *table) cell(row []string, col string) string {
	i, ok := t.cols[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (t *table) float(row []string, col string) float64 {
	v, _ := strconv.ParseFloat(t.cell(row, col), 64)
	return v
}

func (t *table) boolean(row []string, col string) bool {
	switch strings.ToLower(t.cell(row, col)) {
	case "true", "1", "yes", "y", "t":
		return true
	}
	return false
}

func (t *table) optString(row []string, col string) *string {
	if _, ok := t.cols[col]; !ok {
		return nil
	}
	v := t.cell(row, col)
	if v == "" {
		return nil
	}
	return &v
}

var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05"}

func (t *table) optDate(row []string, col string) *time.Time {
	raw := t.cell(row, col)
	if raw == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, raw); err == nil {
			return &d
		}
	}
	return nil
}

// ValidateTable checks a CSV file's header against a spec without building
// fact rows.
func ValidateTable(path string, spec TableSpec) (SchemaResult, error) {
	t, err := readCSV(path)
	if err != nil {
		return SchemaResult{}, err
	}
	return spec.Validate(t.header())
}

// ReadTimesheetFacts loads and validates fact_timesheet_day_enriched. Rows
// come back stably sorted by (month, job, task, staff) so that first-seen
// semantics downstream are deterministic regardless of file row order.
func ReadTimesheetFacts(path string) ([]model.TimesheetFact, SchemaResult, error) {
	t, err := readCSV(path)
	if err != nil {
		return nil, SchemaResult{}, err
	}
	result, err := TimesheetSpec.Validate(t.header())
	if err != nil {
		return nil, SchemaResult{}, err
	}

	facts := make([]model.TimesheetFact, 0, len(t.rows))
	for _, row := range t.rows {
		facts = append(facts, model.TimesheetFact{
			JobNo:         t.cell(row, "job_no"),
			Department:    t.cell(row, "department_final"),
			JobCategory:   t.cell(row, "job_category"),
			TaskName:      t.cell(row, "task_name"),
			StaffName:     t.cell(row, "staff_name"),
			MonthKey:      t.cell(row, "month_key"),
			Hours:         t.float(row, "hours_raw"),
			BaseCost:      t.float(row, "base_cost"),
			RevAlloc:      t.float(row, "rev_alloc"),
			Billable:      t.boolean(row, "is_billable"),
			QuotedHours:   t.float(row, "quoted_time_total"),
			QuotedAmount:  t.float(row, "quoted_amount_total"),
			QuoteMatch:    t.cell(row, "quote_match_flag"),
			UtilTarget:    t.float(row, "utilisation_target"),
			FTEScaling:    t.float(row, "fte_hours_scaling"),
			Breakdown:     t.cell(row, "breakdown"),
			Client:        t.optString(row, "client"),
			JobStatus:     t.optString(row, "job_status"),
			DueDate:       t.optDate(row, "job_due_date"),
			CompletedDate: t.optDate(row, "job_completed_date"),
			WorkDate:      t.optDate(row, "work_date"),
		})
	}

	sort.SliceStable(facts, func(i, j int) bool {
		a, b := facts[i], facts[j]
		if a.MonthKey != b.MonthKey {
			return a.MonthKey < b.MonthKey
		}
		if a.JobNo != b.JobNo {
			return a.JobNo < b.JobNo
		}
		if a.TaskName != b.TaskName {
			return a.TaskName < b.TaskName
		}
		return a.StaffName < b.StaffName
	})

	return facts, result, nil
}

// ReadJobTaskMonthFacts loads and validates fact_job_task_month.
func ReadJobTaskMonthFacts(path string) ([]model.JobTaskMonthFact, SchemaResult, error) {
	t, err := readCSV(path)
	if err != nil {
		return nil, SchemaResult{}, err
	}
	result, err := JobTaskMonthSpec.Validate(t.header())
	if err != nil {
		return nil, SchemaResult{}, err
	}

	facts := make([]model.JobTaskMonthFact, 0, len(t.rows))
	for _, row := range t.rows {
		facts = append(facts, model.JobTaskMonthFact{
			JobNo:        t.cell(row, "job_no"),
			TaskName:     t.cell(row, "task_name"),
			MonthKey:     t.cell(row, "month_key"),
			Department:   t.cell(row, "department_final"),
			JobCategory:  t.cell(row, "job_category"),
			HoursSum:     t.float(row, "hours_raw_sum"),
			BaseCostSum:  t.float(row, "base_cost_sum"),
			RevAllocSum:  t.float(row, "rev_alloc_sum"),
			QuotedHours:  t.float(row, "quoted_time_total"),
			QuotedAmount: t.float(row, "quoted_amount_total"),
			QuoteMatch:   t.optString(row, "quote_match_flag"),
		})
	}

	sort.SliceStable(facts, func(i, j int) bool {
		a, b := facts[i], facts[j]
		if a.MonthKey != b.MonthKey {
			return a.MonthKey < b.MonthKey
		}
		if a.JobNo != b.JobNo {
			return a.JobNo < b.JobNo
		}
		return a.TaskName < b.TaskName
	})

	return facts, result, nil
}

// ReadRevenueAudit loads and validates audit_revenue_reconciliation_job_month.
func ReadRevenueAudit(path string) ([]model.RevenueAuditRow, error) {
	t, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	if _, err := RevenueAuditSpec.Validate(t.header()); err != nil {
		return nil, err
	}

	rows := make([]model.RevenueAuditRow, 0, len(t.rows))
	for _, row := range t.rows {
		rows = append(rows, model.RevenueAuditRow{
			JobNo:            t.cell(row, "job_no"),
			MonthKey:         t.cell(row, "month_key"),
			RevAllocTotal:    t.float(row, "rev_alloc_total"),
			RevenuePoolTotal: t.float(row, "revenue_pool_total"),
			Diff:             t.float(row, "diff"),
		})
	}
	return rows, nil
}

// ReadUnallocatedAudit loads and validates audit_unallocated_revenue.
func ReadUnallocatedAudit(path string) ([]model.UnallocatedAuditRow, error) {
	t, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	if _, err := UnallocatedAuditSpec.Validate(t.header()); err != nil {
		return nil, err
	}

	rows := make([]model.UnallocatedAuditRow, 0, len(t.rows))
	for _, row := range t.rows {
		rows = append(rows, model.UnallocatedAuditRow{
			MonthKey:    t.cell(row, "month_key"),
			Unallocated: t.float(row, "unallocated_revenue"),
		})
	}
	return rows, nil
}
