// Package engine describes the audio/video codec capability the pipeline
// drives: PCM extraction, filter-chain analysis and rendering, MP3 transcode,
// frame grabs, and duration probing.
//
// Filter chains are typed values so mastering policy can be stated without
// reference to any particular engine's syntax. The ffmpeg subpackage renders
// them to filtergraphs; enginetest provides an in-memory fake for tests.
package engine
