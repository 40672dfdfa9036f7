package mastering

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

// Stage names used in errors and logs.
const (
	StepAnalyze = "analyze"
	StepRender  = "render"
	StepEncode  = "encode"
)

// Result describes a successful master.
type Result struct {
	Measurement engine.Measurement
	// MeasurementExact is false when any field came from the fallback.
	MeasurementExact bool
	WAVPath          string
	MP3Path          string
	Elapsed          time.Duration
}

// Masterer runs the mastering protocol through an engine.
type Masterer struct {
	engine engine.Engine
	policy Policy
	logger *slog.Logger
}

// New constructs a Masterer.
func New(eng engine.Engine, policy Policy, logger *slog.Logger) *Masterer {
	return &Masterer{
		engine: eng,
		policy: policy,
		logger: logging.NewComponentLogger(logger, "mastering"),
	}
}

// Policy returns the policy in effect.
func (m *Masterer) Policy() Policy {
	return m.policy
}

// Master analyzes input, renders wavOut and encodes mp3Out. Existing outputs
// are removed first so a stale file never satisfies the output check. On
// failure any partial outputs are removed.
func (m *Masterer) Master(ctx context.Context, input, wavOut, mp3Out string) (Result, error) {
	started := time.Now()
	logger := logging.WithContext(ctx, m.logger)

	for _, path := range []string{wavOut, mp3Out} {
		if err := removeIfExists(path); err != nil {
			return Result{}, services.Wrap(services.ErrExternalTool, "mastering", "clear output", path, err)
		}
	}

	measured, exact, err := m.analyze(ctx, input, logger)
	if err != nil {
		return Result{}, err
	}

	if err := m.engine.Render(ctx, input, wavOut, m.policy.RenderChain(measured), engine.MasterFormat); err != nil {
		m.cleanup(wavOut, mp3Out)
		return Result{}, services.Wrap(services.ErrExternalTool, "mastering", StepRender, "", err)
	}
	if err := expectOutput(StepRender, wavOut); err != nil {
		m.cleanup(wavOut, mp3Out)
		return Result{}, err
	}

	if err := m.engine.TranscodeMP3(ctx, wavOut, mp3Out, m.policy.MP3Options()); err != nil {
		m.cleanup(wavOut, mp3Out)
		return Result{}, services.Wrap(services.ErrExternalTool, "mastering", StepEncode, "", err)
	}
	if err := expectOutput(StepEncode, mp3Out); err != nil {
		m.cleanup(wavOut, mp3Out)
		return Result{}, err
	}

	result := Result{
		Measurement:      measured,
		MeasurementExact: exact,
		WAVPath:          wavOut,
		MP3Path:          mp3Out,
		Elapsed:          time.Since(started),
	}
	logger.Info("mastering complete",
		logging.String("input_i", measured.InputI),
		logging.String("input_lra", measured.InputLRA),
		logging.String("input_tp", measured.InputTP),
		logging.String("input_thresh", measured.InputThresh),
		logging.Bool("measurement_exact", exact),
		logging.Duration("elapsed", result.Elapsed),
	)
	return result, nil
}

// analyze runs pass one. Engine or parse failures fall back to the target
// measurement; only cancellation of ctx is returned as an error.
func (m *Masterer) analyze(ctx context.Context, input string, logger *slog.Logger) (engine.Measurement, bool, error) {
	diag, err := m.engine.Analyze(ctx, input, m.policy.AnalysisChain())
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return engine.Measurement{}, false, services.Wrap(services.ErrExternalTool, "mastering", StepAnalyze, "canceled", ctxErr)
		}
		logging.WarnWithContext(logger, "loudness analysis failed", "analysis_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "normalizing with target values as the measurement"),
			logging.String(logging.FieldErrorHint, "check the extracted WAV plays and ffmpeg has the loudnorm filter"),
		)
		return FallbackMeasurement(m.policy.Target), false, nil
	}

	measured, exact := ParseMeasurement(diag, m.policy.Target)
	if !exact {
		logger.Debug("loudness report incomplete, using fallback values")
	}
	return measured, exact, nil
}

func (m *Masterer) cleanup(paths ...string) {
	for _, path := range paths {
		if err := removeIfExists(path); err != nil {
			m.logger.Debug("remove partial output", logging.String("path", path), logging.Error(err))
		}
	}
}

func expectOutput(step, path string) error {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return services.Wrap(services.ErrMissingOutput, "mastering", step, path, err)
	}
	return nil
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
