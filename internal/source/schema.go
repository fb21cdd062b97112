// Package source reads and validates the CSV fact tables the analytics run on.
package source

import (
	"fmt"
	"sort"
	"strings"
)

// Table names as they appear on disk (without extension).
const (
	TableTimesheet        = "fact_timesheet_day_enriched"
	TableJobTaskMonth     = "fact_job_task_month"
	TableRevenueAudit     = "audit_revenue_reconciliation_job_month"
	TableUnallocatedAudit = "audit_unallocated_revenue"
)

// TableSpec describes the column contract of one input table. Required
// columns fail validation when absent; soft columns only disable the features
// depending on them.
type TableSpec struct {
	Name     string
	Required []string
	Soft     []string
}

var TimesheetSpec = TableSpec{
	Name: TableTimesheet,
	Required: []string{
		"department_final", "job_category", "task_name", "staff_name",
		"month_key", "hours_raw", "base_cost", "rev_alloc",
		"quoted_time_total", "quoted_amount_total", "quote_match_flag",
		"is_billable", "utilisation_target", "fte_hours_scaling", "breakdown",
	},
	Soft: []string{
		"job_no", "client", "job_status", "job_due_date",
		"job_completed_date", "work_date", "business_unit", "role",
		"function", "onshore_flag", "state",
	},
}

var JobTaskMonthSpec = TableSpec{
	Name: TableJobTaskMonth,
	Required: []string{
		"job_no", "task_name", "month_key", "department_final",
		"job_category", "hours_raw_sum", "base_cost_sum", "rev_alloc_sum",
		"quoted_time_total", "quoted_amount_total",
	},
	Soft: []string{"quote_match_flag"},
}

var RevenueAuditSpec = TableSpec{
	Name: TableRevenueAudit,
	Required: []string{
		"job_no", "month_key", "rev_alloc_total", "revenue_pool_total", "diff",
	},
}

var UnallocatedAuditSpec = TableSpec{
	Name:     TableUnallocatedAudit,
	Required: []string{"month_key", "unallocated_revenue"},
}

// SchemaError reports required columns absent from a loaded table. It lists
// every missing column, not just the first.
type SchemaError struct {
	Table   string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s missing required columns: %s", e.Table, strings.Join(e.Missing, ", "))
}

// MissingInputError reports an absent source table file.
type MissingInputError struct {
	Table string
	Dir   string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("missing input table %s in %s", e.Table, e.Dir)
}

// SchemaResult is the outcome of validating a table's header. A table with
// missing soft columns loads in degraded mode, not as an error.
type SchemaResult struct {
	MissingSoft []string
}

// Degraded reports whether any optional feature is disabled.
func (r SchemaResult) Degraded() bool {
	return len(r.MissingSoft) > 0
}

// Validate checks a header against the spec. Missing required columns are a
// SchemaError; missing soft columns are reported on the result.
func (s TableSpec) Validate(columns []string) (SchemaResult, error) {
	present := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		present[c] = struct{}{}
	}

	var missing []string
	for _, c := range s.Required {
		if _, ok := present[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return SchemaResult{}, &SchemaError{Table: s.Name, Missing: missing}
	}

	var soft []string
	for _, c := range s.Soft {
		if _, ok := present[c]; !ok {
			soft = append(soft, c)
		}
	}
	sort.Strings(soft)
	return SchemaResult{MissingSoft: soft}, nil
}
