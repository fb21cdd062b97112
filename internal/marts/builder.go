// Package marts builds the persisted derived tables consumed downstream.
package marts

import (
	"fmt"
	"strconv"
	"time"

	"github.com/oakline-data/jobpulse/internal/metrics"
	"github.com/oakline-data/jobpulse/internal/model"
	"github.com/oakline-data/jobpulse/internal/rollup"
)

// Mart names, which double as the output file names.
const (
	MartDeptMonth         = "cube_dept_month"
	MartDeptCategoryMonth = "cube_dept_category_month"
	MartDeptCategoryTask  = "cube_dept_category_task"
	MartDeptCategoryStaff = "cube_dept_category_staff"
	MartActiveJobs        = "active_jobs_snapshot"
	MartJobMixMonth       = "job_mix_month"
)

// Params holds the build knobs.
type Params struct {
	Company                 string
	RecencyDays             int
	WeeksInWindow           int
	UtilTarget              float64
	SevereOverrunMultiplier float64
}

// Table is one built mart, ready to be written as CSV.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

// BuildAll builds every mart from the two fact tables. A missing required
// input fails the whole build; no partial mart set is returned.
func BuildAll(timesheet []model.TimesheetFact, jobTask []model.JobTaskMonthFact, p Params) (map[string]Table, error) {
	if timesheet == nil {
		return nil, fmt.Errorf("building marts: required input fact_timesheet_day_enriched is absent")
	}
	if jobTask == nil {
		return nil, fmt.Errorf("building marts: required input fact_job_task_month is absent")
	}

	tables := map[string]Table{
		MartDeptMonth:         buildCube(timesheet, p, []rollup.Dimension{rollup.Department, rollup.Month, rollup.FiscalYear}),
		MartDeptCategoryMonth: buildCube(timesheet, p, []rollup.Dimension{rollup.Department, rollup.Category, rollup.Month, rollup.FiscalYear}),
		MartDeptCategoryTask:  buildTaskCube(timesheet, p),
		MartDeptCategoryStaff: buildStaffCube(timesheet, p),
		MartActiveJobs:        buildActiveJobs(timesheet, p),
	}

	capacity := metrics.Capacity(timesheet, []rollup.Dimension{rollup.Staff}, p.WeeksInWindow)
	tables[MartJobMixMonth] = buildJobMix(jobTask, capacity, p)

	return tables, nil
}

// buildCube merges profitability, rates and deduped quotes at the given grain.
func buildCube(facts []model.TimesheetFact, p Params, dims []rollup.Dimension) Table {
	rates := make(map[rollup.Key]rollup.RateRow)
	for _, r := range rollup.Rates(facts, dims) {
		rates[r.Key] = r
	}

	name := MartDeptMonth
	header := []string{"company", "department_final", "month_key", "aus_fy"}
	withCategory := hasDim(dims, rollup.Category)
	if withCategory {
		name = MartDeptCategoryMonth
		header = []string{"company", "department_final", "job_category", "month_key", "aus_fy"}
	}
	header = append(header,
		"hours", "cost", "revenue", "margin", "margin_pct", "realised_rate",
		"quoted_hours", "quoted_amount", "quote_rate")

	t := Table{Name: name, Header: header}
	for _, row := range rollup.Profitability(facts, dims) {
		r := rates[row.Key]
		cells := []string{p.Company, row.Key.Department}
		if withCategory {
			cells = append(cells, row.Key.Category)
		}
		cells = append(cells, row.Key.Month, row.Key.FY,
			fnum(row.Hours), fnum(row.Cost), fnum(row.Revenue), fnum(row.Margin),
			fopt(row.MarginPct), fopt(row.RealisedRate),
			fopt(r.QuotedHours), fopt(r.QuotedAmount), fopt(r.QuoteRate))
		t.Rows = append(t.Rows, cells)
	}
	return t
}

func buildTaskCube(facts []model.TimesheetFact, p Params) Table {
	dims := []rollup.Dimension{rollup.Department, rollup.Category, rollup.Task}
	delivery := make(map[rollup.Key]metrics.QuoteDeliveryRow)
	for _, d := range metrics.QuoteDelivery(facts, dims, p.SevereOverrunMultiplier) {
		delivery[d.Key] = d
	}

	t := Table{
		Name: MartDeptCategoryTask,
		Header: []string{
			"company", "department_final", "job_category", "task_name",
			"hours", "cost", "revenue", "margin", "margin_pct", "realised_rate",
			"quoted_hours", "quoted_amount", "hours_variance", "hours_variance_pct",
			"unquoted_hours", "unquoted_share", "overrun_rate", "severe_overrun_rate",
		},
	}
	for _, row := range rollup.Profitability(facts, dims) {
		d := delivery[row.Key]
		t.Rows = append(t.Rows, []string{
			p.Company, row.Key.Department, row.Key.Category, row.Key.Task,
			fnum(row.Hours), fnum(row.Cost), fnum(row.Revenue), fnum(row.Margin),
			fopt(row.MarginPct), fopt(row.RealisedRate),
			fopt(d.QuotedHours), fopt(d.QuotedAmount),
			fopt(d.HoursVariance), fopt(d.HoursVariancePct),
			fnum(d.UnquotedHours), fopt(d.UnquotedShare),
			fopt(d.OverrunRate), fopt(d.SevereOverrunRate),
		})
	}
	return t
}

func buildStaffCube(facts []model.TimesheetFact, p Params) Table {
	dims := []rollup.Dimension{rollup.Department, rollup.Category, rollup.Staff}
	quotes := make(map[rollup.Key]rollup.QuoteRow)
	for _, q := range rollup.QuoteRollup(facts, dims) {
		quotes[q.Key] = q
	}
	util := make(map[rollup.Key]metrics.UtilisationRow)
	for _, u := range metrics.Utilisation(facts, dims, true) {
		util[u.Key] = u
	}

	t := Table{
		Name: MartDeptCategoryStaff,
		Header: []string{
			"company", "department_final", "job_category", "staff_name",
			"hours", "cost", "revenue", "margin", "margin_pct", "realised_rate",
			"quoted_hours", "quoted_amount",
			"billable_hours", "total_hours", "utilisation", "target", "util_gap",
		},
	}
	for _, row := range rollup.Profitability(facts, dims) {
		q := quotes[row.Key]
		u := util[row.Key]
		t.Rows = append(t.Rows, []string{
			p.Company, row.Key.Department, row.Key.Category, row.Key.Staff,
			fnum(row.Hours), fnum(row.Cost), fnum(row.Revenue), fnum(row.Margin),
			fopt(row.MarginPct), fopt(row.RealisedRate),
			fnum(q.QuotedHours), fnum(q.QuotedAmount),
			fnum(u.BillableHours), fnum(u.TotalHours),
			fopt(u.Utilisation), fopt(u.Target), fopt(u.Gap),
		})
	}
	return t
}

func buildActiveJobs(facts []model.TimesheetFact, p Params) Table {
	t := Table{
		Name: MartActiveJobs,
		Header: []string{
			"company", "job_no", "department_final", "job_category",
			"actual_hours", "revenue", "quoted_hours", "quoted_amount",
			"quote_consumed_pct", "scope_creep_hours", "scope_creep_share",
			"realised_rate", "quote_rate", "rate_variance", "job_due_date", "client",
		},
	}
	for _, row := range metrics.ActiveProjects(facts, p.RecencyDays) {
		t.Rows = append(t.Rows, []string{
			p.Company, row.Key.Job, row.Key.Department, row.Key.Category,
			fnum(row.ActualHours), fnum(row.Revenue),
			fopt(row.QuotedHours), fopt(row.QuotedAmount), fopt(row.QuoteConsumed),
			fnum(row.ScopeCreepHours), fopt(row.ScopeCreepShare),
			fopt(row.RealisedRate), fopt(row.QuoteRate), fopt(row.RateVariance),
			fdate(row.DueDate), fstr(row.Client),
		})
	}
	return t
}

func buildJobMix(facts []model.JobTaskMonthFact, capacity []metrics.CapacityRow, p Params) Table {
	t := Table{
		Name: MartJobMixMonth,
		Header: []string{
			"company", "month_key", "department_final", "job_category",
			"job_count", "total_quoted_hours", "total_quoted_amount",
			"avg_quoted_hours_per_job", "avg_quoted_amount_per_job", "value_per_quoted_hour",
			"new_quoted_hours", "new_quoted_amount", "jobs_first_revenue",
			"implied_fte_required", "implied_utilisation", "implied_slack",
		},
	}
	for _, row := range metrics.JobMix(facts, capacity, p.WeeksInWindow, p.UtilTarget) {
		t.Rows = append(t.Rows, []string{
			p.Company, row.Key.Month, row.Key.Department, row.Key.Category,
			strconv.Itoa(row.JobCount),
			fnum(row.TotalQuotedHours), fnum(row.TotalQuotedAmount),
			fopt(row.AvgQuotedHoursPerJob), fopt(row.AvgQuotedAmountPerJob), fopt(row.ValuePerQuotedHour),
			fnum(row.NewQuotedHours), fnum(row.NewQuotedAmount),
			strconv.Itoa(row.JobsFirstRevenue),
			fopt(row.ImpliedFTERequired), fopt(row.ImpliedUtilisation), fopt(row.ImpliedSlack),
		})
	}
	return t
}

func hasDim(dims []rollup.Dimension, d rollup.Dimension) bool {
	for _, x := range dims {
		if x == d {
			return true
		}
	}
	return false
}

func fnum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// fopt renders a missing value as an empty cell, never as 0.
func fopt(v *float64) string {
	if v == nil {
		return ""
	}
	return fnum(*v)
}

func fdate(v *time.Time) string {
	if v == nil {
		return ""
	}
	return v.Format("2006-01-02")
}

func fstr(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
