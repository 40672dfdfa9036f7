package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"freestyle/internal/catalog"
	"freestyle/internal/config"
	"freestyle/internal/engine"
	"freestyle/internal/extraction"
	"freestyle/internal/history"
	"freestyle/internal/logging"
	"freestyle/internal/manifest"
	"freestyle/internal/mastering"
	"freestyle/internal/metadata"
	"freestyle/internal/notifications"
	"freestyle/internal/packaging"
	"freestyle/internal/preflight"
	"freestyle/internal/services"
)

// Options wires a Runner's collaborators.
type Options struct {
	Engine   engine.Engine
	History  *history.Store
	Notifier notifications.Service
	Logger   *slog.Logger
	// SkipPreflight disables directory and binary checks before a batch.
	SkipPreflight bool
	// Now overrides the clock.
	Now func() time.Time
}

// Runner executes batches against one configuration.
type Runner struct {
	cfg       *config.Config
	history   *history.Store
	notifier  notifications.Service
	logger    *slog.Logger
	extractor *extraction.Extractor
	masterer  *mastering.Masterer
	packager  *packaging.Packager
	preflight bool
	now       func() time.Time
}

// NewRunner constructs a Runner.
func NewRunner(cfg *config.Config, opts Options) *Runner {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Runner{
		cfg:       cfg,
		history:   opts.History,
		notifier:  notifier,
		logger:    logging.NewComponentLogger(logger, "workflow"),
		extractor: extraction.New(opts.Engine, logger),
		masterer:  mastering.New(opts.Engine, mastering.PolicyFromConfig(cfg.Mastering), logger),
		packager:  packaging.New(opts.Engine, packaging.OptionsFromConfig(cfg), logger),
		preflight: !opts.SkipPreflight,
		now:       now,
	}
}

// Run processes one batch and writes the manifest. Per-track failures are
// reported in the Summary, not as an error. An error means the batch could
// not run or its manifest could not be written.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	lock, err := acquireLock(r.cfg.LockPath())
	if err != nil {
		return Summary{}, err
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			r.logger.Warn("release batch lock", logging.Error(err))
		}
	}()

	if err := r.cfg.EnsureDirectories(); err != nil {
		return Summary{}, services.Wrap(services.ErrConfiguration, "workflow", "prepare directories", "", err)
	}
	if r.preflight {
		if failed := preflight.Failed(preflight.RunAll(ctx, r.cfg)); len(failed) > 0 {
			return Summary{}, preflightError(failed)
		}
	}

	records, err := metadata.Load(r.cfg.Paths.MetadataDir, r.cfg.Paths.VideoDir)
	if err != nil {
		return Summary{}, err
	}
	tracks := catalog.Plan(records, catalog.Options{
		Keyword:             r.cfg.Catalog.Keyword,
		FallbackDescription: r.cfg.Catalog.FallbackDescription,
		Disambiguate:        r.cfg.Catalog.DisambiguateSlugs,
	})

	summary := Summary{
		RunID:        uuid.NewString(),
		StartedAt:    r.now(),
		Eligible:     len(tracks),
		ManifestPath: r.cfg.Paths.ManifestPath,
	}
	ctx = services.WithRunID(ctx, summary.RunID)
	logger := logging.WithContext(ctx, r.logger)

	logger.Info("batch started",
		logging.String(logging.FieldEventType, "batch_start"),
		logging.Int("sidecars", len(records)),
		logging.Int("eligible", len(tracks)),
		logging.Int("workers", r.cfg.Workflow.Workers),
	)
	r.startHistory(ctx, logger, summary)
	r.notify(ctx, logger, notifications.EventBatchStarted, notifications.Payload{"count": len(tracks)})

	summary.Outcomes = runTracks(ctx, tracks, r.cfg.Workflow.Workers, func(ctx context.Context, track catalog.Track) Outcome {
		out := r.processTrack(ctx, track, len(tracks))
		r.recordItem(ctx, summary.RunID, out)
		return out
	})

	summary.Entries = []manifest.Entry{}
	for _, out := range summary.Outcomes {
		if out.Recorded() {
			summary.Recorded++
			summary.Entries = append(summary.Entries, out.Entry)
		} else {
			summary.Skipped++
		}
	}

	if err := ctx.Err(); err != nil {
		summary.Elapsed = r.now().Sub(summary.StartedAt)
		r.finishHistory(ctx, logger, summary, history.RunFailed, "interrupted before manifest write")
		return summary, fmt.Errorf("batch interrupted: %w", err)
	}

	if err := manifest.Write(summary.ManifestPath, summary.Entries); err != nil {
		summary.Elapsed = r.now().Sub(summary.StartedAt)
		r.finishHistory(ctx, logger, summary, history.RunFailed, err.Error())
		r.notify(ctx, logger, notifications.EventError, notifications.Payload{"context": "manifest", "error": err})
		return summary, err
	}
	summary.Elapsed = r.now().Sub(summary.StartedAt)

	status := history.RunSucceeded
	if summary.HasFailures() {
		status = history.RunDegraded
	}
	r.finishHistory(ctx, logger, summary, status, "")

	logger.Info(fmt.Sprintf("Total tracks processed: %d", summary.Recorded),
		logging.String(logging.FieldEventType, "batch_complete"),
		logging.Int("recorded", summary.Recorded),
		logging.Int("skipped", summary.Skipped),
		logging.String("manifest", summary.ManifestPath),
		logging.Duration("elapsed", summary.Elapsed),
	)
	r.notify(ctx, logger, notifications.EventBatchCompleted, notifications.Payload{
		"recorded": summary.Recorded,
		"failed":   summary.Skipped,
		"elapsed":  summary.Elapsed,
	})
	return summary, nil
}

func (r *Runner) startHistory(ctx context.Context, logger *slog.Logger, summary Summary) {
	if r.history == nil {
		return
	}
	if err := r.history.StartRun(ctx, summary.RunID, summary.StartedAt, summary.Eligible); err != nil {
		historyWarning(logger, "record run start failed", err)
	}
}

func (r *Runner) finishHistory(ctx context.Context, logger *slog.Logger, summary Summary, status, message string) {
	if r.history == nil {
		return
	}
	run := history.Run{
		ID:           summary.RunID,
		StartedAt:    summary.StartedAt,
		FinishedAt:   summary.StartedAt.Add(summary.Elapsed),
		Eligible:     summary.Eligible,
		Recorded:     summary.Recorded,
		Skipped:      summary.Skipped,
		Status:       status,
		ManifestPath: summary.ManifestPath,
		ErrorMessage: message,
	}
	if err := r.history.FinishRun(context.WithoutCancel(ctx), run); err != nil {
		historyWarning(logger, "record run finish failed", err)
	}
}

func (r *Runner) recordItem(ctx context.Context, runID string, out Outcome) {
	if r.history == nil {
		return
	}
	item := history.Item{
		RunID:       runID,
		Position:    out.Track.Position,
		Slug:        out.Track.Slug,
		MediaID:     out.Track.MediaID,
		Title:       out.Track.Title,
		State:       string(out.State),
		FailedStage: string(out.FailedStage),
		FailureKind: string(out.FailureKind),
		Duration:    out.Entry.Duration,
		RequestID:   out.RequestID,
		RecordedAt:  r.now(),
	}
	if out.Err != nil {
		item.ErrorMessage = out.Err.Error()
	}
	if err := r.history.RecordItem(context.WithoutCancel(ctx), item); err != nil {
		historyWarning(logging.WithContext(ctx, r.logger), "record item failed", err, logging.String(logging.FieldSlug, out.Track.Slug))
	}
}

func historyWarning(logger *slog.Logger, msg string, err error, attrs ...logging.Attr) {
	attrs = append(attrs,
		logging.Error(err),
		logging.String(logging.FieldImpact, "run history is incomplete for this batch"),
		logging.String(logging.FieldErrorHint, "check history.path is writable"),
	)
	logging.WarnWithContext(logger, msg, "history_write_failed", attrs...)
}

func (r *Runner) notify(ctx context.Context, logger *slog.Logger, event notifications.Event, payload notifications.Payload) {
	if err := r.notifier.Publish(ctx, event, payload); err != nil {
		logging.WarnWithContext(logger, "notification failed", "notification_failed",
			logging.String("event", string(event)),
			logging.Error(err),
			logging.String(logging.FieldImpact, "batch continues without this notification"),
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic is reachable"),
		)
	}
}

func preflightError(failed []preflight.Result) error {
	parts := make([]string, 0, len(failed))
	for _, f := range failed {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Name, f.Detail))
	}
	return services.Wrap(services.ErrConfiguration, "workflow", "preflight", strings.Join(parts, "; "), nil)
}

// IsBusy reports whether err came from lock contention.
func IsBusy(err error) bool {
	return errors.Is(err, ErrBatchRunning)
}
