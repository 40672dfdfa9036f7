package history

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// Item records the terminal state of one track within a run.
type Item struct {
	RunID        string
	Position     int
	Slug         string
	MediaID      string
	Title        string
	State        string
	FailedStage  string
	FailureKind  string
	ErrorMessage string
	Duration     string
	RequestID    string
	RecordedAt   time.Time
}

// RecordItem inserts or replaces the outcome row for (RunID, Position).
func (s *Store) RecordItem(ctx context.Context, item Item) error {
	if item.RecordedAt.IsZero() {
		item.RecordedAt = time.Now()
	}
	insert := sq.Insert("items").
		Options("OR REPLACE").
		Columns("run_id", "position", "slug", "media_id", "title", "state",
			"failed_stage", "failure_kind", "error_message", "duration", "request_id", "recorded_at").
		Values(item.RunID, item.Position, item.Slug, item.MediaID, item.Title, item.State,
			item.FailedStage, item.FailureKind, item.ErrorMessage, item.Duration, item.RequestID,
			formatTime(item.RecordedAt))
	if err := s.exec(ctx, insert); err != nil {
		return fmt.Errorf("record item %s: %w", item.Slug, err)
	}
	return nil
}

// ListItems returns the outcomes for runID in processing order.
func (s *Store) ListItems(ctx context.Context, runID string) ([]Item, error) {
	query, args, err := sq.Select("run_id", "position", "slug", "media_id", "title", "state",
		"failed_stage", "failure_kind", "error_message", "duration", "request_id", "recorded_at").
		From("items").
		Where(sq.Eq{"run_id": runID}).
		OrderBy("position ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list items: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var (
			item     Item
			recorded string
		)
		if err := rows.Scan(&item.RunID, &item.Position, &item.Slug, &item.MediaID, &item.Title,
			&item.State, &item.FailedStage, &item.FailureKind, &item.ErrorMessage, &item.Duration,
			&item.RequestID, &recorded); err != nil {
			return nil, err
		}
		item.RecordedAt = parseTime(recorded)
		items = append(items, item)
	}
	return items, rows.Err()
}
