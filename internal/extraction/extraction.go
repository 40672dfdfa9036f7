// Package extraction pulls lossless PCM audio out of source videos.
package extraction

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"freestyle/internal/engine"
	"freestyle/internal/logging"
	"freestyle/internal/services"
)

// Extractor writes 24-bit 48 kHz stereo WAVs with no video stream.
type Extractor struct {
	engine engine.Engine
	logger *slog.Logger
}

// New constructs an Extractor.
func New(eng engine.Engine, logger *slog.Logger) *Extractor {
	return &Extractor{engine: eng, logger: logging.NewComponentLogger(logger, "extraction")}
}

// Extract writes the audio of video to dst. The call fails when the engine
// errors or dst is absent afterwards; a failed call leaves no dst behind.
func (x *Extractor) Extract(ctx context.Context, video, dst string) error {
	started := time.Now()
	if err := os.Remove(dst); err != nil && !errors.Is(err, os.ErrNotExist) {
		return services.Wrap(services.ErrExternalTool, "extraction", "clear output", dst, err)
	}

	if err := x.engine.ExtractAudio(ctx, video, dst, engine.ExtractionFormat); err != nil {
		_ = os.Remove(dst)
		return services.Wrap(services.ErrExternalTool, "extraction", "extract audio", video, err)
	}
	if info, err := os.Stat(dst); err != nil || info.IsDir() {
		return services.Wrap(services.ErrMissingOutput, "extraction", "verify output", dst, err)
	}

	logging.WithContext(ctx, x.logger).Debug("audio extracted",
		logging.String("video", video),
		logging.String("wav", dst),
		logging.Duration("elapsed", time.Since(started)),
	)
	return nil
}
