// Package store provides a SQLite-backed cache for parsed fact tables.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/oakline-data/jobpulse/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Cache provides SQLite-backed fact caching keyed by source file identity.
type Cache struct {
	db *sql.DB
}

// Open opens or creates the cache database at the given path.
func Open(dbPath string) (*Cache, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Stamp holds the tracked identity of a cached source file.
type Stamp struct {
	MtimeNs   int64
	SizeBytes int64
	ParsedAt  time.Time
}

// Fresh reports whether the cached rows for path still match the file on disk
// and were parsed within ttl. A zero ttl disables the age check.
func (c *Cache) Fresh(path string, info os.FileInfo, ttl time.Duration) (bool, error) {
	var s Stamp
	var parsedAt string
	err := c.db.QueryRow(
		"SELECT mtime_ns, size_bytes, parsed_at FROM file_tracker WHERE file_path = ?", path,
	).Scan(&s.MtimeNs, &s.SizeBytes, &parsedAt)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if s.MtimeNs != info.ModTime().UnixNano() || s.SizeBytes != info.Size() {
		return false, nil
	}
	if ttl > 0 {
		s.ParsedAt, err = time.Parse(time.RFC3339, parsedAt)
		if err != nil || time.Since(s.ParsedAt) > ttl {
			return false, nil
		}
	}
	return true, nil
}

// SaveTimesheetFacts replaces the cached rows for path, preserving order.
func (c *Cache) SaveTimesheetFacts(path string, info os.FileInfo, facts []model.TimesheetFact) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM timesheet_facts WHERE file_path = ?", path); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO timesheet_facts
		(file_path, row_idx, job_no, department_final, job_category, task_name,
		 staff_name, month_key, hours_raw, base_cost, rev_alloc, is_billable,
		 quoted_time_total, quoted_amount_total, quote_match_flag,
		 utilisation_target, fte_hours_scaling, breakdown,
		 client, job_status, job_due_date, job_completed_date, work_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for i, f := range facts {
		billable := 0
		if f.Billable {
			billable = 1
		}
		_, err = stmt.Exec(path, i, f.JobNo, f.Department, f.JobCategory, f.TaskName,
			f.StaffName, f.MonthKey, f.Hours, f.BaseCost, f.RevAlloc, billable,
			f.QuotedHours, f.QuotedAmount, f.QuoteMatch,
			f.UtilTarget, f.FTEScaling, f.Breakdown,
			nullStr(f.Client), nullStr(f.JobStatus),
			nullDate(f.DueDate), nullDate(f.CompletedDate), nullDate(f.WorkDate))
		if err != nil {
			return err
		}
	}

	if err := trackFile(tx, path, info); err != nil {
		return err
	}
	return tx.Commit()
}

// LoadTimesheetFacts reads the cached rows for path in original order.
func (c *Cache) LoadTimesheetFacts(path string) ([]model.TimesheetFact, error) {
	rows, err := c.db.Query(`SELECT
		job_no, department_final, job_category, task_name, staff_name, month_key,
		hours_raw, base_cost, rev_alloc, is_billable,
		quoted_time_total, quoted_amount_total, quote_match_flag,
		utilisation_target, fte_hours_scaling, breakdown,
		client, job_status, job_due_date, job_completed_date, work_date
		FROM timesheet_facts WHERE file_path = ? ORDER BY row_idx`, path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var facts []model.TimesheetFact
	for rows.Next() {
		var f model.TimesheetFact
		var billable int
		var client, status, due, completed, workDate sql.NullString
		err := rows.Scan(&f.JobNo, &f.Department, &f.JobCategory, &f.TaskName,
			&f.StaffName, &f.MonthKey, &f.Hours, &f.BaseCost, &f.RevAlloc, &billable,
			&f.QuotedHours, &f.QuotedAmount, &f.QuoteMatch,
			&f.UtilTarget, &f.FTEScaling, &f.Breakdown,
			&client, &status, &due, &completed, &workDate)
		if err != nil {
			return nil, err
		}
		f.Billable = billable != 0
		f.Client = strPtr(client)
		f.JobStatus = strPtr(status)
		f.DueDate = datePtr(due)
		f.CompletedDate = datePtr(completed)
		f.WorkDate = datePtr(workDate)
		facts = append(facts, f)
	}
	return facts, rows.Err()
}

// SaveJobTaskFacts replaces the cached rows for path, preserving order.
func (c *Cache) SaveJobTaskFacts(path string, info os.FileInfo, facts []model.JobTaskMonthFact) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM job_task_month_facts WHERE file_path = ?", path); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO job_task_month_facts
		(file_path, row_idx, job_no, task_name, month_key, department_final,
		 job_category, hours_raw_sum, base_cost_sum, rev_alloc_sum,
		 quoted_time_total, quoted_amount_total, quote_match_flag)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for i, f := range facts {
		_, err = stmt.Exec(path, i, f.JobNo, f.TaskName, f.MonthKey, f.Department,
			f.JobCategory, f.HoursSum, f.BaseCostSum, f.RevAllocSum,
			f.QuotedHours, f.QuotedAmount, nullStr(f.QuoteMatch))
		if err != nil {
			return err
		}
	}

	if err := trackFile(tx, path, info); err != nil {
		return err
	}
	return tx.Commit()
}

// LoadJobTaskFacts reads the cached rows for path in original order.
func (c *Cache) LoadJobTaskFacts(path string) ([]model.JobTaskMonthFact, error) {
	rows, err := c.db.Query(`SELECT
		job_no, task_name, month_key, department_final, job_category,
		hours_raw_sum, base_cost_sum, rev_alloc_sum,
		quoted_time_total, quoted_amount_total, quote_match_flag
		FROM job_task_month_facts WHERE file_path = ? ORDER BY row_idx`, path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var facts []model.JobTaskMonthFact
	for rows.Next() {
		var f model.JobTaskMonthFact
		var match sql.NullString
		err := rows.Scan(&f.JobNo, &f.TaskName, &f.MonthKey, &f.Department,
			&f.JobCategory, &f.HoursSum, &f.BaseCostSum, &f.RevAllocSum,
			&f.QuotedHours, &f.QuotedAmount, &match)
		if err != nil {
			return nil, err
		}
		f.QuoteMatch = strPtr(match)
		facts = append(facts, f)
	}
	return facts, rows.Err()
}

// Evict drops the cached rows and tracking entry for path.
func (c *Cache) Evict(path string) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, q := range []string{
		"DELETE FROM timesheet_facts WHERE file_path = ?",
		"DELETE FROM job_task_month_facts WHERE file_path = ?",
		"DELETE FROM file_tracker WHERE file_path = ?",
	} {
		if _, err := tx.Exec(q, path); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func trackFile(tx *sql.Tx, path string, info os.FileInfo) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := tx.Exec(`INSERT OR REPLACE INTO file_tracker (file_path, mtime_ns, size_bytes, parsed_at)
		VALUES (?, ?, ?, ?)`, path, info.ModTime().UnixNano(), info.Size(), now)
	return err
}

func nullStr(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format("2006-01-02")
}

func strPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func datePtr(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s.String)
	if err != nil {
		return nil
	}
	return &t
}
