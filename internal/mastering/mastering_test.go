package mastering

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"freestyle/internal/engine"
	"freestyle/internal/engine/enginetest"
	"freestyle/internal/services"
)

func newPaths(t *testing.T) (input, wav, mp3 string) {
	t.Helper()
	dir := t.TempDir()
	input = filepath.Join(dir, "track.wav")
	if err := os.WriteFile(input, []byte("pcm"), 0o644); err != nil {
		t.Fatal(err)
	}
	return input, filepath.Join(dir, "masters", "track_MASTER.wav"), filepath.Join(dir, "masters", "track_MASTER.mp3")
}

func TestMasterRunsThreePassesWithMeasurementFedBack(t *testing.T) {
	fake := enginetest.New()
	fake.Diagnostics = loudnormReport
	m := New(fake, DefaultPolicy(), nil)
	input, wav, mp3 := newPaths(t)

	result, err := m.Master(context.Background(), input, wav, mp3)
	if err != nil {
		t.Fatalf("Master: %v", err)
	}
	if !result.MeasurementExact || result.Measurement.InputI != "-20.31" {
		t.Fatalf("unexpected measurement: %#v", result)
	}

	calls := fake.Calls()
	if len(calls) != 3 || calls[0].Op != enginetest.OpAnalyze || calls[1].Op != enginetest.OpRender || calls[2].Op != enginetest.OpTranscode {
		t.Fatalf("unexpected call sequence: %#v", calls)
	}

	analysis := calls[0].Chain
	if ln, ok := analysis[len(analysis)-1].(engine.LoudNorm); !ok || ln.Measured != nil || !ln.ReportJSON {
		t.Fatalf("analysis chain should end in a reporting loudnorm: %#v", analysis[len(analysis)-1])
	}

	render := calls[1].Chain
	if len(render) != len(analysis)+2 {
		t.Fatalf("render chain length %d, analysis %d", len(render), len(analysis))
	}
	for i := 0; i < 5; i++ {
		if render[i] != analysis[i] {
			t.Fatalf("tone filter %d differs between passes", i)
		}
	}
	if _, ok := render[5].(engine.StereoTools); !ok {
		t.Fatalf("expected stereo tools after tone chain, got %T", render[5])
	}
	ln, ok := render[6].(engine.LoudNorm)
	if !ok || !ln.Linear || ln.Measured == nil || *ln.Measured != result.Measurement {
		t.Fatalf("render loudnorm not seeded with measurement: %#v", render[6])
	}
	if lim, ok := render[7].(engine.Limiter); !ok || lim.CeilingDB != -1 {
		t.Fatalf("expected -1 dB limiter last, got %#v", render[7])
	}
	if calls[2].Input != wav || calls[2].Output != mp3 {
		t.Fatalf("encode should read the master wav: %#v", calls[2])
	}
}

func TestMasterAnalysisFailureFallsBack(t *testing.T) {
	fake := enginetest.New()
	fake.FailOn(enginetest.OpAnalyze, "", nil)
	m := New(fake, DefaultPolicy(), nil)
	input, wav, mp3 := newPaths(t)

	result, err := m.Master(context.Background(), input, wav, mp3)
	if err != nil {
		t.Fatalf("analysis failure must not abort mastering: %v", err)
	}
	if result.MeasurementExact || result.Measurement != FallbackMeasurement(DefaultPolicy().Target) {
		t.Fatalf("expected fallback measurement, got %#v", result)
	}
}

func TestMasterGarbledReportFallsBack(t *testing.T) {
	fake := enginetest.New()
	fake.Diagnostics = "no report here"
	m := New(fake, DefaultPolicy(), nil)
	input, wav, mp3 := newPaths(t)

	result, err := m.Master(context.Background(), input, wav, mp3)
	if err != nil {
		t.Fatalf("Master: %v", err)
	}
	if result.Measurement.InputThresh != "-24" {
		t.Fatalf("expected fallback threshold, got %#v", result.Measurement)
	}
}

func TestMasterFailures(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*enginetest.Fake)
		want  services.FailureKind
	}{
		{name: "render error", setup: func(f *enginetest.Fake) { f.FailOn(enginetest.OpRender, "", nil) }, want: services.FailureExternalTool},
		{name: "render silent", setup: func(f *enginetest.Fake) { f.SkipOutputOn(enginetest.OpRender, "") }, want: services.FailureMissingOutput},
		{name: "encode error", setup: func(f *enginetest.Fake) {
			f.FailOn(enginetest.OpTranscode, "", services.Wrap(services.ErrTimeout, "encode", "ffmpeg", "", nil))
		}, want: services.FailureTimeout},
		{name: "encode silent", setup: func(f *enginetest.Fake) { f.SkipOutputOn(enginetest.OpTranscode, "") }, want: services.FailureMissingOutput},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fake := enginetest.New()
			tc.setup(fake)
			m := New(fake, DefaultPolicy(), nil)
			input, wav, mp3 := newPaths(t)

			_, err := m.Master(context.Background(), input, wav, mp3)
			if err == nil {
				t.Fatal("expected failure")
			}
			if got := services.Classify(err); got != tc.want {
				t.Fatalf("Classify = %q, want %q (%v)", got, tc.want, err)
			}
			for _, path := range []string{wav, mp3} {
				if _, statErr := os.Stat(path); !errors.Is(statErr, os.ErrNotExist) {
					t.Fatalf("partial output %s left behind", path)
				}
			}
		})
	}
}

func TestMasterIgnoresStaleOutputs(t *testing.T) {
	fake := enginetest.New()
	fake.SkipOutputOn(enginetest.OpTranscode, "")
	m := New(fake, DefaultPolicy(), nil)
	input, wav, mp3 := newPaths(t)

	if err := os.MkdirAll(filepath.Dir(mp3), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(mp3, []byte("previous run"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Master(context.Background(), input, wav, mp3); !errors.Is(err, services.ErrMissingOutput) {
		t.Fatalf("stale mp3 should not satisfy the encode check, got %v", err)
	}
}

func TestMasterCanceledDuringAnalysis(t *testing.T) {
	fake := enginetest.New()
	m := New(fake, DefaultPolicy(), nil)
	input, wav, mp3 := newPaths(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := m.Master(ctx, input, wav, mp3); services.Classify(err) != services.FailureCanceled {
		t.Fatalf("expected canceled, got %v", err)
	}
}
