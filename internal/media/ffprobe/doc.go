// Package ffprobe provides a typed wrapper around ffprobe output.
//
// Inspect returns parsed stream and container metadata for a media file;
// Duration runs the narrow duration-only query used when packaging delivered
// audio. The package has no freestyle-specific dependencies.
package ffprobe
