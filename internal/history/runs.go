package history

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/jmylchreest/wxscrape/pkg/forecast"
)

// Status is the outcome of one run.
type Status string

const (
	StatusOK           Status = "ok"
	StatusNoData       Status = "no_data"
	StatusFetchFailed  Status = "fetch_failed"
	StatusExportFailed Status = "export_failed"
)

// Run is one pipeline invocation.
type Run struct {
	ID         string          `json:"id" yaml:"id"`
	URL        string          `json:"url" yaml:"url"`
	StartedAt  time.Time       `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time       `json:"finished_at" yaml:"finished_at"`
	Status     Status          `json:"status" yaml:"status"`
	Counts     forecast.Counts `json:"counts" yaml:"counts"`
	JSONPath   string          `json:"json_path,omitempty" yaml:"json_path,omitempty"`
	Error      string          `json:"error,omitempty" yaml:"error,omitempty"`
}

// Duration is how long the run took.
func (r Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Columns names the table columns for Values.
func (r Run) Columns() []string {
	return []string{"STARTED", "STATUS", "DURATION", "LOCATIONS", "HOURLY", "MONTHLY", "URL", "DETAIL"}
}

// Values renders r as one table row. DETAIL is the error for failed runs
// and the JSON path otherwise.
func (r Run) Values() []string {
	detail := r.JSONPath
	if r.Error != "" {
		detail = r.Error
	}
	return []string{
		r.StartedAt.Local().Format("2006-01-02 15:04:05") + " (" + humanize.Time(r.StartedAt) + ")",
		string(r.Status),
		r.Duration().Round(time.Second).String(),
		strconv.Itoa(r.Counts.Locations),
		strconv.Itoa(r.Counts.HourlyEntries),
		strconv.Itoa(r.Counts.MonthlyEntries),
		r.URL,
		detail,
	}
}

const timeLayout = time.RFC3339Nano

// Record inserts run, assigning an ID when it has none. It returns the ID.
func (s *Store) Record(ctx context.Context, run Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (run_id, url, started_at, finished_at, status,
			locations, daily_entries, hourly_groups, hourly_entries, monthly_entries,
			json_path, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.URL,
		run.StartedAt.UTC().Format(timeLayout), run.FinishedAt.UTC().Format(timeLayout),
		string(run.Status),
		run.Counts.Locations, run.Counts.DailyEntries, run.Counts.HourlyGroups,
		run.Counts.HourlyEntries, run.Counts.MonthlyEntries,
		nullString(run.JSONPath), nullString(run.Error),
	)
	if err != nil {
		return "", fmt.Errorf("failed to record run: %w", err)
	}
	return run.ID, nil
}

// List returns the most recent runs, newest first. limit <= 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	query := `
		SELECT run_id, url, started_at, finished_at, status,
			locations, daily_entries, hourly_groups, hourly_entries, monthly_entries,
			json_path, error
		FROM runs
		ORDER BY started_at DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r                   Run
			started, finished   string
			status              string
			jsonPath, errString sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.URL, &started, &finished, &status,
			&r.Counts.Locations, &r.Counts.DailyEntries, &r.Counts.HourlyGroups,
			&r.Counts.HourlyEntries, &r.Counts.MonthlyEntries,
			&jsonPath, &errString); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		if r.StartedAt, err = time.Parse(timeLayout, started); err != nil {
			return nil, fmt.Errorf("run %s: bad started_at: %w", r.ID, err)
		}
		if r.FinishedAt, err = time.Parse(timeLayout, finished); err != nil {
			return nil, fmt.Errorf("run %s: bad finished_at: %w", r.ID, err)
		}
		r.Status = Status(status)
		r.JSONPath = jsonPath.String
		r.Error = errString.String
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
