package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// Run status values.
const (
	RunRunning   = "running"
	RunSucceeded = "succeeded"
	RunDegraded  = "degraded"
	RunFailed    = "failed"
)

// Run summarizes one batch invocation.
type Run struct {
	ID           string
	StartedAt    time.Time
	FinishedAt   time.Time
	Eligible     int
	Recorded     int
	Skipped      int
	Status       string
	ManifestPath string
	ErrorMessage string
}

// ErrRunNotFound is returned when a run identifier has no row.
var ErrRunNotFound = errors.New("run not found")

// StartRun inserts a running row for id.
func (s *Store) StartRun(ctx context.Context, id string, startedAt time.Time, eligible int) error {
	insert := sq.Insert("runs").
		Columns("id", "started_at", "eligible", "status").
		Values(id, formatTime(startedAt), eligible, RunRunning)
	if err := s.exec(ctx, insert); err != nil {
		return fmt.Errorf("start run %s: %w", id, err)
	}
	return nil
}

// FinishRun stores the final counts and status for run.ID.
func (s *Store) FinishRun(ctx context.Context, run Run) error {
	update := sq.Update("runs").
		Set("finished_at", formatTime(run.FinishedAt)).
		Set("eligible", run.Eligible).
		Set("recorded", run.Recorded).
		Set("skipped", run.Skipped).
		Set("status", run.Status).
		Set("manifest_path", run.ManifestPath).
		Set("error_message", run.ErrorMessage).
		Where(sq.Eq{"id": run.ID})
	if err := s.exec(ctx, update); err != nil {
		return fmt.Errorf("finish run %s: %w", run.ID, err)
	}
	return nil
}

var runColumns = []string{
	"id", "started_at", "COALESCE(finished_at, '')", "eligible", "recorded",
	"skipped", "status", "manifest_path", "error_message",
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	query, args, err := sq.Select(runColumns...).
		From("runs").
		OrderBy("started_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list runs: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun loads one run by identifier or prefix of at least eight characters.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	where := sq.Or{sq.Eq{"id": id}}
	if len(id) >= 8 {
		where = append(where, sq.Like{"id": id + "%"})
	}
	query, args, err := sq.Select(runColumns...).
		From("runs").
		Where(where).
		OrderBy("started_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return Run{}, fmt.Errorf("build get run: %w", err)
	}
	run, err := scanRun(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return run, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run               Run
		started, finished string
	)
	if err := row.Scan(&run.ID, &started, &finished, &run.Eligible, &run.Recorded,
		&run.Skipped, &run.Status, &run.ManifestPath, &run.ErrorMessage); err != nil {
		return Run{}, err
	}
	run.StartedAt = parseTime(started)
	run.FinishedAt = parseTime(finished)
	return run, nil
}
