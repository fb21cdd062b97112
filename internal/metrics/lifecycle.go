package metrics

import (
	"time"

	"github.com/oakline-data/jobpulse/internal/model"
	"github.com/oakline-data/jobpulse/internal/period"
)

// FirstActivityMonth returns the earliest valid month with any recorded
// activity per job.
func FirstActivityMonth[T model.ActivityRow](rows []T) map[string]period.Period {
	first := make(map[string]period.Period)
	for _, r := range rows {
		job, monthKey, _ := r.Activity()
		p, err := period.Parse(monthKey)
		if err != nil || p.IsZero() {
			continue
		}
		if cur, ok := first[job]; !ok || p.Before(cur) {
			first[job] = p
		}
	}
	return first
}

// FirstRevenueMonth returns the earliest valid month with positive allocated
// revenue per job.
func FirstRevenueMonth[T model.ActivityRow](rows []T) map[string]period.Period {
	first := make(map[string]period.Period)
	for _, r := range rows {
		job, monthKey, revenue := r.Activity()
		if revenue <= 0 {
			continue
		}
		p, err := period.Parse(monthKey)
		if err != nil || p.IsZero() {
			continue
		}
		if cur, ok := first[job]; !ok || p.Before(cur) {
			first[job] = p
		}
	}
	return first
}

// factDate resolves the best available activity date for a row: the work date
// when present, otherwise the first day of the row's month.
func factDate(f model.TimesheetFact) (time.Time, bool) {
	if f.WorkDate != nil {
		return *f.WorkDate, true
	}
	p, err := period.Parse(f.MonthKey)
	if err != nil || p.IsZero() {
		return time.Time{}, false
	}
	return time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC), true
}

// notCompleted reports whether the row's job is still open. A completed date
// marks the job done; failing that, a job_status of "completed" does.
func notCompleted(f model.TimesheetFact) bool {
	if f.CompletedDate != nil {
		return false
	}
	if f.JobStatus != nil && equalsFoldTrim(*f.JobStatus, "completed") {
		return false
	}
	return true
}

// ActiveJobs filters to rows of jobs that are not completed and had activity
// within the trailing recencyDays window ending at the latest observed date.
func ActiveJobs(facts []model.TimesheetFact, recencyDays int) []model.TimesheetFact {
	var latest time.Time
	dates := make([]time.Time, len(facts))
	valid := make([]bool, len(facts))
	for i, f := range facts {
		d, ok := factDate(f)
		dates[i], valid[i] = d, ok
		if ok && d.After(latest) {
			latest = d
		}
	}
	if latest.IsZero() {
		return nil
	}
	cutoff := latest.AddDate(0, 0, -recencyDays)

	var active []model.TimesheetFact
	for i, f := range facts {
		if !valid[i] || dates[i].Before(cutoff) {
			continue
		}
		if !notCompleted(f) {
			continue
		}
		active = append(active, f)
	}
	return active
}
