package engine

import (
	"context"
	"time"
)

// PCMFormat describes an uncompressed WAV output.
type PCMFormat struct {
	SampleRate int
	Channels   int
	// Codec is the PCM codec name, e.g. "pcm_s24le".
	Codec string
	// SampleFormat optionally forces the internal sample container, e.g. "s32".
	SampleFormat string
}

// ExtractionFormat is lossless 24-bit stereo at 48 kHz.
var ExtractionFormat = PCMFormat{SampleRate: 48000, Channels: 2, Codec: "pcm_s24le"}

// MasterFormat is 24-bit PCM at 44.1 kHz in a 32-bit sample container.
var MasterFormat = PCMFormat{SampleRate: 44100, Codec: "pcm_s24le", SampleFormat: "s32"}

// MP3Options configures a constant-bitrate MP3 encode.
type MP3Options struct {
	BitrateKbps int
	Quality     int
}

// FrameSpec selects a single video frame and the square it is cropped to.
type FrameSpec struct {
	Offset time.Duration
	// Size is the edge length in pixels; the frame is scaled to fill then
	// center-cropped.
	Size int
}

// Engine is the codec capability boundary. Every call blocks until the
// engine finishes or its own deadline expires. A call that returns nil has
// produced its output file.
type Engine interface {
	// ExtractAudio writes the audio of video to dst with no video stream.
	ExtractAudio(ctx context.Context, video, dst string, format PCMFormat) error
	// Analyze runs chain over src without writing audio and returns the
	// engine's diagnostic text.
	Analyze(ctx context.Context, src string, chain Chain) (string, error)
	// Render applies chain to src and writes dst in the given format.
	Render(ctx context.Context, src, dst string, chain Chain, format PCMFormat) error
	// TranscodeMP3 encodes src to dst.
	TranscodeMP3(ctx context.Context, src, dst string, opts MP3Options) error
	// ExtractFrame writes one square still image from video to dst.
	ExtractFrame(ctx context.Context, video, dst string, spec FrameSpec) error
	// ProbeDuration reports the duration of a media file in seconds.
	ProbeDuration(ctx context.Context, path string) (float64, error)
}
