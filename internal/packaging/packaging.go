package packaging

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"freestyle/internal/config"
	"freestyle/internal/engine"
	"freestyle/internal/fileutil"
	"freestyle/internal/logging"
	"freestyle/internal/services"
)

// Fixed filenames inside each track directory.
const (
	MasterFilename = "master.mp3"
	CoverFilename  = "cover.jpg"
)

// Cover sources reported in Artifacts.
const (
	CoverFromFrame       = "frame"
	CoverFromPlaceholder = "placeholder"
	CoverNone            = ""
)

// Options configures the packager.
type Options struct {
	CollectionDir    string
	CoverSize        int
	CoverOffset      time.Duration
	PlaceholderCover string
}

// Artifacts describes the delivered files for one track.
type Artifacts struct {
	Dir         string
	MP3Path     string
	CoverPath   string
	CoverSource string
	Seconds     float64
	Duration    string
}

// HasCover reports whether cover.jpg was written.
func (a Artifacts) HasCover() bool {
	return a.CoverSource != CoverNone
}

// Packager writes per-track delivery directories.
type Packager struct {
	engine engine.Engine
	opts   Options
	logger *slog.Logger
}

// New constructs a Packager.
func New(eng engine.Engine, opts Options, logger *slog.Logger) *Packager {
	if opts.CoverSize <= 0 {
		opts.CoverSize = 800
	}
	return &Packager{engine: eng, opts: opts, logger: logging.NewComponentLogger(logger, "packaging")}
}

// TrackDir returns <collection>/<slug>.
func (p *Packager) TrackDir(slug string) string {
	return filepath.Join(p.opts.CollectionDir, slug)
}

// OptionsFromConfig derives packager options from the loaded configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		CollectionDir:    cfg.CollectionDir(),
		CoverSize:        cfg.Mastering.CoverSize,
		CoverOffset:      time.Duration(cfg.Mastering.CoverOffsetSeconds * float64(time.Second)),
		PlaceholderCover: cfg.Paths.PlaceholderCover,
	}
}

// Package delivers masterMP3 for slug and derives its cover and duration.
func (p *Packager) Package(ctx context.Context, slug, video, masterMP3 string) (Artifacts, error) {
	logger := logging.WithContext(ctx, p.logger)
	dir := p.TrackDir(slug)
	art := Artifacts{
		Dir:       dir,
		MP3Path:   filepath.Join(dir, MasterFilename),
		CoverPath: filepath.Join(dir, CoverFilename),
		Duration:  UnknownDuration,
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Artifacts{}, services.Wrap(services.ErrExternalTool, "packaging", "create track dir", dir, err)
	}
	if err := fileutil.CopyFileVerified(masterMP3, art.MP3Path); err != nil {
		return Artifacts{}, services.Wrap(services.ErrExternalTool, "packaging", "copy master", art.MP3Path, err)
	}

	art.CoverSource = p.cover(ctx, logger, video, art.CoverPath)

	seconds, err := p.engine.ProbeDuration(ctx, art.MP3Path)
	if err != nil {
		logging.WarnWithContext(logger, "duration probe failed", "duration_probe_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "manifest duration set to "+UnknownDuration),
			logging.String(logging.FieldErrorHint, "run ffprobe on the delivered mp3"),
		)
	} else {
		art.Seconds = seconds
		art.Duration = FormatDuration(seconds)
	}

	logger.Info("track packaged",
		logging.String("dir", dir),
		logging.String("duration", art.Duration),
		logging.String("cover", coverLabel(art.CoverSource)),
	)
	return art, nil
}

// cover writes cover.jpg from the video frame, else from the placeholder, and
// returns which source succeeded. A stale cover from an earlier run is
// removed first so the result never points at an old image.
func (p *Packager) cover(ctx context.Context, logger *slog.Logger, video, dst string) string {
	if err := os.Remove(dst); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Debug("remove stale cover", logging.Error(err))
	}

	spec := engine.FrameSpec{Offset: p.opts.CoverOffset, Size: p.opts.CoverSize}
	frameErr := p.engine.ExtractFrame(ctx, video, dst, spec)
	if frameErr == nil {
		if exists(dst) {
			return CoverFromFrame
		}
		frameErr = services.Wrap(services.ErrMissingOutput, "packaging", "extract frame", dst, nil)
	}
	// A failed extraction may leave a truncated image that publish would upload.
	if err := os.Remove(dst); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Debug("remove partial cover", logging.Error(err))
	}

	placeholder := strings.TrimSpace(p.opts.PlaceholderCover)
	impact := "manifest entry omits coverArt"
	if placeholder != "" {
		impact = "placeholder cover used"
	}
	logging.WarnWithContext(logger, "cover extraction failed", "cover_failed",
		logging.Error(frameErr),
		logging.String(logging.FieldImpact, impact),
		logging.String(logging.FieldErrorHint, "check the source video has a frame at the cover offset"),
	)
	if placeholder == "" {
		return CoverNone
	}
	if err := RenderPlaceholder(placeholder, dst, p.opts.CoverSize); err != nil {
		logging.WarnWithContext(logger, "placeholder cover failed", "placeholder_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "manifest entry omits coverArt"),
			logging.String(logging.FieldErrorHint, "check paths.placeholder_cover is a readable JPEG or PNG"),
		)
		return CoverNone
	}
	return CoverFromPlaceholder
}

func coverLabel(source string) string {
	if source == CoverNone {
		return "none"
	}
	return source
}

func exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir() && info.Size() > 0
}
