package services

import "context"

// ctxKey scopes the batch identifiers attached to a context as a track moves
// through extraction, mastering and packaging.
type ctxKey uint8

const (
	runIDKey ctxKey = iota
	slugKey
	stageKey
	requestIDKey
)

func withValue(ctx context.Context, key ctxKey, value string) context.Context {
	if value == "" {
		return ctx
	}
	return context.WithValue(ctx, key, value)
}

func valueOf(ctx context.Context, key ctxKey) (string, bool) {
	v, _ := ctx.Value(key).(string)
	return v, v != ""
}

// WithRunID tags ctx with the batch run UUID.
func WithRunID(ctx context.Context, id string) context.Context { return withValue(ctx, runIDKey, id) }

func RunIDFromContext(ctx context.Context) (string, bool) { return valueOf(ctx, runIDKey) }

// WithSlug tags ctx with the track currently being processed.
func WithSlug(ctx context.Context, slug string) context.Context { return withValue(ctx, slugKey, slug) }

func SlugFromContext(ctx context.Context) (string, bool) { return valueOf(ctx, slugKey) }

// WithStage tags ctx with the pipeline stage; failures wrapped while it is
// set report that stage.
func WithStage(ctx context.Context, stage string) context.Context {
	return withValue(ctx, stageKey, stage)
}

func StageFromContext(ctx context.Context) (string, bool) { return valueOf(ctx, stageKey) }

// WithRequestID tags ctx with the per-track correlation ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return withValue(ctx, requestIDKey, id)
}

func RequestIDFromContext(ctx context.Context) (string, bool) { return valueOf(ctx, requestIDKey) }
