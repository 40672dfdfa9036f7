package workflow

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	"freestyle/internal/catalog"
	"freestyle/internal/logging"
	"freestyle/internal/manifest"
	"freestyle/internal/notifications"
	"freestyle/internal/packaging"
	"freestyle/internal/services"
)

const progressTitleRunes = 50

// Intermediate file locations for a slug.
func (r *Runner) extractedPath(slug string) string {
	return filepath.Join(r.cfg.Paths.WorkDir, slug+".wav")
}

func (r *Runner) masterWAVPath(slug string) string {
	return filepath.Join(r.cfg.Paths.MastersDir, slug+"_MASTER.wav")
}

func (r *Runner) masterMP3Path(slug string) string {
	return filepath.Join(r.cfg.Paths.MastersDir, slug+"_MASTER.mp3")
}

// processTrack drives one track through its stages. It never returns an
// error: failures become a Skipped outcome.
func (r *Runner) processTrack(ctx context.Context, track catalog.Track, total int) Outcome {
	started := r.now()
	out := Outcome{Track: track, RequestID: uuid.NewString()}

	ctx = services.WithSlug(ctx, track.Slug)
	ctx = services.WithRequestID(ctx, out.RequestID)
	logger := logging.WithContext(ctx, r.logger)
	logger.Info(fmt.Sprintf("[%d/%d] Processing: %s...", track.Position+1, total, truncateRunes(track.Title, progressTitleRunes)),
		logging.String(logging.FieldEventType, "item_start"),
		logging.String("video", filepath.Base(track.VideoPath)),
	)

	skip := func(stage State, err error) Outcome {
		out.State = StateSkipped
		out.FailedStage = stage
		out.Err = err
		out.FailureKind = services.Classify(err)
		out.Elapsed = r.now().Sub(started)
		if out.FailureKind == services.FailureCanceled {
			logger.Info("track interrupted", logging.String(logging.FieldStage, string(stage)))
			return out
		}
		logging.ErrorWithContext(logger, "track skipped", "item_skipped",
			logging.String(logging.FieldStage, string(stage)),
			logging.String("failure_kind", string(out.FailureKind)),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "rerun with --log-level debug to see the ffmpeg command"),
		)
		r.notify(ctx, logger, notifications.EventItemFailed, notifications.Payload{
			"slug":  track.Slug,
			"stage": string(stage),
			"error": err,
		})
		return out
	}

	if err := ctx.Err(); err != nil {
		return skip(StateExtracting, err)
	}

	out.State = StateExtracting
	wav := r.extractedPath(track.Slug)
	if err := r.extractor.Extract(services.WithStage(ctx, string(StateExtracting)), track.VideoPath, wav); err != nil {
		return skip(StateExtracting, err)
	}

	out.State = StateMastering
	mastered, err := r.masterer.Master(services.WithStage(ctx, string(StateMastering)), wav, r.masterWAVPath(track.Slug), r.masterMP3Path(track.Slug))
	if err != nil {
		return skip(StateMastering, err)
	}

	out.State = StatePackaging
	art, err := r.packager.Package(services.WithStage(ctx, string(StatePackaging)), track.Slug, track.VideoPath, mastered.MP3Path)
	if err != nil {
		return skip(StatePackaging, err)
	}

	out.State = StateRecorded
	out.Artifacts = art
	out.Entry = r.entryFor(track, art)
	out.Elapsed = r.now().Sub(started)
	logger.Info("track recorded",
		logging.String(logging.FieldEventType, "item_recorded"),
		logging.String("duration", art.Duration),
		logging.Bool("measurement_exact", mastered.MeasurementExact),
		logging.Duration("elapsed", out.Elapsed),
	)
	return out
}

func (r *Runner) entryFor(track catalog.Track, art packaging.Artifacts) manifest.Entry {
	collection := r.cfg.Catalog.Collection
	entry := manifest.Entry{
		Title:       track.Title,
		Slug:        track.Slug,
		Duration:    art.Duration,
		File:        manifest.TrackURL(collection, track.Slug, packaging.MasterFilename),
		Description: track.Description,
		Date:        track.Date,
	}
	if art.HasCover() {
		entry.CoverArt = manifest.TrackURL(collection, track.Slug, packaging.CoverFilename)
	}
	return entry
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// FailedOutcomes returns the skipped outcomes in planned order.
func FailedOutcomes(outcomes []Outcome) []Outcome {
	var failed []Outcome
	for _, o := range outcomes {
		if !o.Recorded() {
			failed = append(failed, o)
		}
	}
	return failed
}

// ErrItemFailures is returned by callers that escalate skipped tracks.
var ErrItemFailures = errors.New("one or more tracks were skipped")
