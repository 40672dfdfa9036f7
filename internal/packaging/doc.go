// Package packaging produces the delivery files for one track.
//
// Package copies the delivery MP3 into <collection>/<slug>/master.mp3, grabs
// a square cover at a fixed offset into the source video, and probes the
// delivered file's duration. Cover and duration failures degrade the track
// (no cover or a "0:00" duration) instead of failing it; a failed copy fails
// the track.
//
// When frame extraction fails and a placeholder image is configured, it is
// scaled to fill the cover square, center-cropped, and written as cover.jpg.
package packaging
