// Package model defines the immutable fact rows loaded from the source tables.
package model

import (
	"strings"
	"time"
)

// TimesheetFact is one row of fact_timesheet_day_enriched: one staff/day/task/job
// combination. QuotedHours and QuotedAmount repeat identically across every row
// of a (job, task) and must never be summed at row grain; use the rollup package.
type TimesheetFact struct {
	JobNo        string
	Department   string
	JobCategory  string
	TaskName     string
	StaffName    string
	MonthKey     string
	Hours        float64
	BaseCost     float64
	RevAlloc     float64
	Billable     bool
	QuotedHours  float64
	QuotedAmount float64
	QuoteMatch   string
	UtilTarget   float64
	FTEScaling   float64
	Breakdown    string

	// Soft columns. Nil when the column is absent from the source table or
	// the cell is empty.
	Client        *string
	JobStatus     *string
	DueDate       *time.Time
	CompletedDate *time.Time
	WorkDate      *time.Time
}

// QuoteKey returns the grain at which quote fields repeat.
func (f TimesheetFact) QuoteKey() (jobNo, taskName string) {
	return f.JobNo, f.TaskName
}

// QuoteTotals returns the repeating quote fields.
func (f TimesheetFact) QuoteTotals() (hours, amount float64) {
	return f.QuotedHours, f.QuotedAmount
}

// IsScopeCreep reports whether the row's hours have no matching quote line.
func (f TimesheetFact) IsScopeCreep() bool {
	switch strings.ToLower(strings.TrimSpace(f.QuoteMatch)) {
	case "no_match", "no match", "false", "0":
		return true
	}
	return false
}

// IsLeave reports whether the row records leave time (task name contains
// "leave", case-insensitive).
func (f TimesheetFact) IsLeave() bool {
	return strings.Contains(strings.ToLower(f.TaskName), "leave")
}

// JobTaskMonthFact is one row of fact_job_task_month: hours, cost and revenue
// pre-aggregated to job/task/month grain. The quote fields still repeat per
// (job, task) across months and carry the same dedup rule.
type JobTaskMonthFact struct {
	JobNo        string
	TaskName     string
	MonthKey     string
	Department   string
	JobCategory  string
	HoursSum     float64
	BaseCostSum  float64
	RevAllocSum  float64
	QuotedHours  float64
	QuotedAmount float64
	QuoteMatch   *string // soft
}

// QuoteKey returns the grain at which quote fields repeat.
func (f JobTaskMonthFact) QuoteKey() (jobNo, taskName string) {
	return f.JobNo, f.TaskName
}

// QuoteTotals returns the repeating quote fields.
func (f JobTaskMonthFact) QuoteTotals() (hours, amount float64) {
	return f.QuotedHours, f.QuotedAmount
}

// QuoteCarrier is any fact row carrying the repeating per-(job, task) quote
// fields.
type QuoteCarrier interface {
	QuoteKey() (jobNo, taskName string)
	QuoteTotals() (hours, amount float64)
}

// Activity returns the job, month key and revenue of the row, the common
// grain for job-lifecycle lookups.
func (f TimesheetFact) Activity() (jobNo, monthKey string, revenue float64) {
	return f.JobNo, f.MonthKey, f.RevAlloc
}

// Activity returns the job, month key and revenue of the row.
func (f JobTaskMonthFact) Activity() (jobNo, monthKey string, revenue float64) {
	return f.JobNo, f.MonthKey, f.RevAllocSum
}

// ActivityRow is any fact row that can feed job-lifecycle lookups.
type ActivityRow interface {
	Activity() (jobNo, monthKey string, revenue float64)
}

// RevenueAuditRow is one row of audit_revenue_reconciliation_job_month, a
// reconciliation snapshot of allocated revenue per job and month.
type RevenueAuditRow struct {
	JobNo            string
	MonthKey         string
	RevAllocTotal    float64
	RevenuePoolTotal float64
	Diff             float64
}

// UnallocatedAuditRow is one row of audit_unallocated_revenue.
type UnallocatedAuditRow struct {
	MonthKey    string
	Unallocated float64
}
