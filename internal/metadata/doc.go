// Package metadata loads the JSON caption sidecars that accompany each
// downloaded video.
//
// A sidecar is named <video_filename>.json and carries at least description,
// date (or post_date), and media_id. Load pairs every sidecar with its video
// path and returns the records in filename order. A sidecar that is not valid
// JSON is a hard error naming the file; missing optional fields default to
// empty strings.
package metadata
