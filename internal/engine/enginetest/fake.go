// Package enginetest provides a scriptable engine.Engine for tests.
package enginetest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"freestyle/internal/engine"
	"freestyle/internal/services"
)

// Op names an engine operation for failure injection and call records.
type Op string

const (
	OpExtract   Op = "extract"
	OpAnalyze   Op = "analyze"
	OpRender    Op = "render"
	OpTranscode Op = "transcode"
	OpFrame     Op = "frame"
	OpProbe     Op = "probe"
)

// Call records one engine invocation.
type Call struct {
	Op     Op
	Input  string
	Output string
	Chain  engine.Chain
}

// Fake writes small placeholder files for every output unless told to fail.
// Failures can be keyed by operation alone or by operation plus a substring
// of the input path, which lets a test fail one track in a batch.
type Fake struct {
	// Diagnostics is returned from Analyze.
	Diagnostics string
	// Duration is returned from ProbeDuration.
	Duration float64

	mu       sync.Mutex
	calls    []Call
	failures map[Op][]failure
}

type failure struct {
	match string
	err   error
	// silent produces no output and no error, mimicking a tool that exits
	// cleanly without writing its file.
	silent bool
	// partial leaves a truncated output behind before returning err, as a
	// tool killed mid-write does.
	partial bool
}

var _ engine.Engine = (*Fake)(nil)

// New returns a Fake reporting a 10 second duration.
func New() *Fake {
	return &Fake{Duration: 10, failures: make(map[Op][]failure)}
}

// FailOn makes op return err for inputs containing match ("" matches all).
func (f *Fake) FailOn(op Op, match string, err error) {
	if err == nil {
		err = services.Wrap(services.ErrExternalTool, string(op), "fake", "injected failure", nil)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[op] = append(f.failures[op], failure{match: match, err: err})
}

// SkipOutputOn makes op succeed without writing its output file.
func (f *Fake) SkipOutputOn(op Op, match string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[op] = append(f.failures[op], failure{match: match, silent: true})
}

// PartialOutputOn makes op write a truncated output file and then fail.
func (f *Fake) PartialOutputOn(op Op, match string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[op] = append(f.failures[op], failure{
		match:   match,
		err:     services.Wrap(services.ErrExternalTool, string(op), "fake", "killed mid-write", nil),
		partial: true,
	})
}

// Calls returns a copy of the recorded invocations.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallsFor returns recorded invocations of op.
func (f *Fake) CallsFor(op Op) []Call {
	var out []Call
	for _, c := range f.Calls() {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

func (f *Fake) record(c Call) (failure, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
	for _, fl := range f.failures[c.Op] {
		if fl.match == "" || strings.Contains(c.Input, fl.match) {
			return fl, true
		}
	}
	return failure{}, false
}

func (f *Fake) produce(ctx context.Context, c Call) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if fl, ok := f.record(c); ok {
		if fl.silent {
			return nil
		}
		if fl.partial && c.Output != "" {
			if err := os.MkdirAll(filepath.Dir(c.Output), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(c.Output, []byte{0xFF, 0xD8}, 0o644); err != nil {
				return err
			}
		}
		return fl.err
	}
	if c.Output == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(c.Output), 0o755); err != nil {
		return err
	}
	return os.WriteFile(c.Output, []byte(fmt.Sprintf("%s of %s\n", c.Op, filepath.Base(c.Input))), 0o644)
}

// ExtractAudio implements engine.Engine.
func (f *Fake) ExtractAudio(ctx context.Context, video, dst string, _ engine.PCMFormat) error {
	return f.produce(ctx, Call{Op: OpExtract, Input: video, Output: dst})
}

// Analyze implements engine.Engine.
func (f *Fake) Analyze(ctx context.Context, src string, chain engine.Chain) (string, error) {
	if err := f.produce(ctx, Call{Op: OpAnalyze, Input: src, Chain: chain}); err != nil {
		return "", err
	}
	return f.Diagnostics, nil
}

// Render implements engine.Engine.
func (f *Fake) Render(ctx context.Context, src, dst string, chain engine.Chain, _ engine.PCMFormat) error {
	return f.produce(ctx, Call{Op: OpRender, Input: src, Output: dst, Chain: chain})
}

// TranscodeMP3 implements engine.Engine.
func (f *Fake) TranscodeMP3(ctx context.Context, src, dst string, _ engine.MP3Options) error {
	return f.produce(ctx, Call{Op: OpTranscode, Input: src, Output: dst})
}

// ExtractFrame implements engine.Engine.
func (f *Fake) ExtractFrame(ctx context.Context, video, dst string, _ engine.FrameSpec) error {
	return f.produce(ctx, Call{Op: OpFrame, Input: video, Output: dst})
}

// ProbeDuration implements engine.Engine.
func (f *Fake) ProbeDuration(ctx context.Context, path string) (float64, error) {
	if err := f.produce(ctx, Call{Op: OpProbe, Input: path}); err != nil {
		return 0, err
	}
	return f.Duration, nil
}
