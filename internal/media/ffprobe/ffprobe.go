package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Result is the subset of `ffprobe -show_format -show_streams` output the
// pipeline reads.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

type Stream struct {
	Index      int    `json:"index"`
	CodecName  string `json:"codec_name"`
	CodecType  string `json:"codec_type"`
	Duration   string `json:"duration"`
	SampleRate string `json:"sample_rate"`
	Channels   int    `json:"channels"`
}

type Format struct {
	Filename   string `json:"filename"`
	Duration   string `json:"duration"`
	FormatName string `json:"format_name"`
}

// Inspect decodes the stream and container listing for path.
func Inspect(ctx context.Context, binary, path string) (Result, error) {
	out, err := probe(ctx, "inspect", binary, path, "-v", "error", "-show_format", "-show_streams", "-of", "json")
	if err != nil {
		return Result{}, err
	}
	var result Result
	if err := json.Unmarshal(out, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe inspect: decode: %w", err)
	}
	return result, nil
}

// Duration returns the container duration of path in seconds. Output that is
// not a finite, non-negative number is an error.
func Duration(ctx context.Context, binary, path string) (float64, error) {
	out, err := probe(ctx, "duration", binary, path, "-v", "quiet", "-show_entries", "format=duration", "-of", "default=noprint_wrappers=1:nokey=1")
	if err != nil {
		return 0, err
	}
	seconds := parseFloat(string(out))
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return 0, fmt.Errorf("ffprobe duration: unexpected output %q", strings.TrimSpace(string(out)))
	}
	return seconds, nil
}

func probe(ctx context.Context, op, binary, path string, args ...string) ([]byte, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("ffprobe %s: %w", op, errors.New("empty path"))
	}
	if binary = strings.TrimSpace(binary); binary == "" {
		binary = "ffprobe"
	}
	cmd := exec.CommandContext(ctx, binary, append(args, "--", path)...)
	// Stop waiting on pipes held open by orphaned children once ctx ends.
	cmd.WaitDelay = time.Second
	var stderr strings.Builder
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe %s: %w: %s", op, err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

func (r Result) VideoStreamCount() int { return r.count("video") }

func (r Result) AudioStreamCount() int { return r.count("audio") }

func (r Result) count(kind string) int {
	n := 0
	for _, s := range r.Streams {
		if strings.EqualFold(s.CodecType, kind) {
			n++
		}
	}
	return n
}

// DurationSeconds is the container duration, 0 when absent and NaN when
// unparseable.
func (r Result) DurationSeconds() float64 {
	return parseFloat(r.Format.Duration)
}

func parseFloat(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}
