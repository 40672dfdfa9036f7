package logging

import (
	"context"
	"log/slog"

	"freestyle/internal/services"
)

// Structured keys shared by every component.
const (
	FieldComponent     = "component"
	FieldRunID         = "run_id"
	FieldSlug          = "slug"
	FieldStage         = "stage"
	FieldCorrelationID = "correlation_id"
	// FieldEventType is a stable machine label such as "cover_failed".
	FieldEventType = "event_type"
	// FieldErrorHint tells the operator what to check next.
	FieldErrorHint = "error_hint"
	// FieldImpact says what the warning costs the published collection.
	FieldImpact = "impact"
)

// ContextFields returns the run, track and stage attributes carried by ctx,
// in that order.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	var fields []slog.Attr
	add := func(key string, value string, ok bool) {
		if ok {
			fields = append(fields, slog.String(key, value))
		}
	}
	id, ok := services.RunIDFromContext(ctx)
	add(FieldRunID, id, ok)
	slug, ok := services.SlugFromContext(ctx)
	add(FieldSlug, slug, ok)
	stage, ok := services.StageFromContext(ctx)
	add(FieldStage, stage, ok)
	rid, ok := services.RequestIDFromContext(ctx)
	add(FieldCorrelationID, rid, ok)
	return fields
}

// WithContext decorates logger with ContextFields(ctx).
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if fields := ContextFields(ctx); len(fields) > 0 {
		return logger.With(toArgs(fields)...)
	}
	return logger
}
