package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS file_tracker (
    file_path            TEXT PRIMARY KEY,
    mtime_ns             INTEGER NOT NULL,
    size_bytes           INTEGER NOT NULL,
    parsed_at            TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS timesheet_facts (
    file_path            TEXT NOT NULL,
    row_idx              INTEGER NOT NULL,
    job_no               TEXT NOT NULL,
    department_final     TEXT NOT NULL,
    job_category         TEXT NOT NULL,
    task_name            TEXT NOT NULL,
    staff_name           TEXT NOT NULL,
    month_key            TEXT NOT NULL,
    hours_raw            REAL NOT NULL,
    base_cost            REAL NOT NULL,
    rev_alloc            REAL NOT NULL,
    is_billable          INTEGER NOT NULL DEFAULT 0,
    quoted_time_total    REAL NOT NULL,
    quoted_amount_total  REAL NOT NULL,
    quote_match_flag     TEXT NOT NULL,
    utilisation_target   REAL NOT NULL,
    fte_hours_scaling    REAL NOT NULL,
    breakdown            TEXT NOT NULL,
    client               TEXT,
    job_status           TEXT,
    job_due_date         TEXT,
    job_completed_date   TEXT,
    work_date            TEXT,
    PRIMARY KEY (file_path, row_idx)
);

CREATE TABLE IF NOT EXISTS job_task_month_facts (
    file_path            TEXT NOT NULL,
    row_idx              INTEGER NOT NULL,
    job_no               TEXT NOT NULL,
    task_name            TEXT NOT NULL,
    month_key            TEXT NOT NULL,
    department_final     TEXT NOT NULL,
    job_category         TEXT NOT NULL,
    hours_raw_sum        REAL NOT NULL,
    base_cost_sum        REAL NOT NULL,
    rev_alloc_sum        REAL NOT NULL,
    quoted_time_total    REAL NOT NULL,
    quoted_amount_total  REAL NOT NULL,
    quote_match_flag     TEXT,
    PRIMARY KEY (file_path, row_idx)
);
`
