package ffmpeg

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"freestyle/internal/engine"
	"freestyle/internal/logging"
	"freestyle/internal/media/ffprobe"
	"freestyle/internal/services"
)

// Timeouts bounds each class of invocation.
type Timeouts struct {
	Stage time.Duration
	Cover time.Duration
	Probe time.Duration
}

// Options configures an Engine.
type Options struct {
	FFmpegBinary  string
	FFprobeBinary string
	Timeouts      Timeouts
	Logger        *slog.Logger
}

// Engine runs engine operations through ffmpeg and ffprobe.
type Engine struct {
	ffmpeg   string
	ffprobe  string
	timeouts Timeouts
	logger   *slog.Logger
}

var _ engine.Engine = (*Engine)(nil)

// New constructs an Engine, defaulting binaries to ffmpeg/ffprobe on PATH.
func New(opts Options) *Engine {
	ffmpegBin := strings.TrimSpace(opts.FFmpegBinary)
	if ffmpegBin == "" {
		ffmpegBin = "ffmpeg"
	}
	ffprobeBin := strings.TrimSpace(opts.FFprobeBinary)
	if ffprobeBin == "" {
		ffprobeBin = "ffprobe"
	}
	return &Engine{
		ffmpeg:   ffmpegBin,
		ffprobe:  ffprobeBin,
		timeouts: opts.Timeouts,
		logger:   logging.NewComponentLogger(opts.Logger, "ffmpeg"),
	}
}

// ExtractAudio implements engine.Engine.
func (e *Engine) ExtractAudio(ctx context.Context, video, dst string, format engine.PCMFormat) error {
	args := []string{"-y", "-hide_banner", "-nostdin", "-i", video, "-vn"}
	args = append(args, pcmArgs(format)...)
	args = append(args, dst)
	err := e.runToFile(ctx, "extract", e.timeouts.Stage, dst, args)
	if err == nil || ctx.Err() != nil || services.Classify(err) != services.FailureExternalTool {
		return err
	}
	// A video without any audio track is a bad input, not a tool fault.
	if e.hasNoAudio(ctx, video) {
		return services.Wrap(services.ErrValidation, "extract", "source", fmt.Sprintf("no audio stream in %s (%v)", video, err), nil)
	}
	return err
}

// hasNoAudio reports whether ffprobe positively lists zero audio streams in
// video. Probe errors and timeouts report false.
func (e *Engine) hasNoAudio(ctx context.Context, video string) bool {
	ctx, cancel := e.probeContext(ctx)
	defer cancel()
	probe, err := ffprobe.Inspect(ctx, e.ffprobe, video)
	return err == nil && probe.AudioStreamCount() == 0
}

// probeContext bounds an ffprobe call by the probe timeout.
func (e *Engine) probeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.timeouts.Probe > 0 {
		return context.WithTimeout(ctx, e.timeouts.Probe)
	}
	return context.WithCancel(ctx)
}

// Analyze implements engine.Engine. The analysis output is discarded with the
// null muxer; diagnostics are returned even when ffmpeg fails.
func (e *Engine) Analyze(ctx context.Context, src string, chain engine.Chain) (string, error) {
	graph, err := Filtergraph(chain)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "analyze", "filtergraph", "", err)
	}
	args := []string{"-hide_banner", "-nostdin", "-i", src, "-af", graph, "-f", "null", "-"}
	e.log(ctx).Debug("ffmpeg analyze", logging.String("filtergraph", graph))
	return run(ctx, "analyze", e.ffmpeg, e.timeouts.Stage, args...)
}

// Render implements engine.Engine.
func (e *Engine) Render(ctx context.Context, src, dst string, chain engine.Chain, format engine.PCMFormat) error {
	graph, err := Filtergraph(chain)
	if err != nil {
		return services.Wrap(services.ErrValidation, "render", "filtergraph", "", err)
	}
	args := []string{"-y", "-hide_banner", "-nostdin", "-i", src, "-af", graph}
	args = append(args, pcmArgs(format)...)
	args = append(args, dst)
	e.log(ctx).Debug("ffmpeg render", logging.String("filtergraph", graph))
	return e.runToFile(ctx, "render", e.timeouts.Stage, dst, args)
}

// TranscodeMP3 implements engine.Engine.
func (e *Engine) TranscodeMP3(ctx context.Context, src, dst string, opts engine.MP3Options) error {
	bitrate := opts.BitrateKbps
	if bitrate <= 0 {
		bitrate = 320
	}
	args := []string{
		"-y", "-hide_banner", "-nostdin", "-i", src,
		"-codec:a", "libmp3lame",
		"-b:a", fmt.Sprintf("%dk", bitrate),
		"-q:a", strconv.Itoa(opts.Quality),
		dst,
	}
	return e.runToFile(ctx, "encode", e.timeouts.Stage, dst, args)
}

// ExtractFrame implements engine.Engine.
func (e *Engine) ExtractFrame(ctx context.Context, video, dst string, spec engine.FrameSpec) error {
	if spec.Size <= 0 {
		return services.Wrap(services.ErrValidation, "cover", "frame", fmt.Sprintf("invalid size %d", spec.Size), nil)
	}
	scale := fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d", spec.Size, spec.Size, spec.Size, spec.Size)
	args := []string{
		"-y", "-hide_banner", "-nostdin", "-i", video,
		"-ss", Timestamp(spec.Offset),
		"-vframes", "1",
		"-vf", scale,
		dst,
	}
	return e.runToFile(ctx, "cover", e.timeouts.Cover, dst, args)
}

// ProbeDuration implements engine.Engine.
func (e *Engine) ProbeDuration(ctx context.Context, path string) (float64, error) {
	ctx, cancel := e.probeContext(ctx)
	defer cancel()
	seconds, err := ffprobe.Duration(ctx, e.ffprobe, path)
	if err != nil {
		if ctx.Err() != nil {
			return 0, services.Wrap(services.ErrTimeout, "probe", e.ffprobe, "", err)
		}
		return 0, services.Wrap(services.ErrExternalTool, "probe", e.ffprobe, "", err)
	}
	return seconds, nil
}

func (e *Engine) runToFile(ctx context.Context, stage string, timeout time.Duration, dst string, args []string) error {
	started := time.Now()
	if _, err := run(ctx, stage, e.ffmpeg, timeout, args...); err != nil {
		return err
	}
	if err := requireOutput(stage, dst); err != nil {
		return err
	}
	e.log(ctx).Debug("ffmpeg finished",
		logging.String("operation", stage),
		logging.String("output", dst),
		logging.Duration("elapsed", time.Since(started)))
	return nil
}

func (e *Engine) log(ctx context.Context) *slog.Logger {
	return logging.WithContext(ctx, e.logger)
}

func pcmArgs(format engine.PCMFormat) []string {
	var args []string
	if format.SampleRate > 0 {
		args = append(args, "-ar", strconv.Itoa(format.SampleRate))
	}
	if format.Channels > 0 {
		args = append(args, "-ac", strconv.Itoa(format.Channels))
	}
	if format.SampleFormat != "" {
		args = append(args, "-sample_fmt", format.SampleFormat)
	}
	codec := format.Codec
	if codec == "" {
		codec = "pcm_s24le"
	}
	return append(args, "-c:a", codec)
}

// Timestamp formats d as HH:MM:SS with milliseconds when non-zero.
func Timestamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)
	ms := int(d % time.Second / time.Millisecond)
	if ms > 0 {
		return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
	}
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
