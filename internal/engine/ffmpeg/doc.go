// Package ffmpeg implements engine.Engine by shelling out to ffmpeg and
// ffprobe.
//
// Typed filter chains are rendered to -af filtergraphs. Each invocation runs
// under its own deadline (stage, cover, or probe timeout); on expiry the whole
// process group is killed so encoder helpers do not outlive the call. A call
// only succeeds when ffmpeg exits cleanly and the expected output file exists
// with non-zero size.
package ffmpeg
