package catalog

import (
	"os"
	"sort"
	"strconv"

	"freestyle/internal/metadata"
)

// Track is the immutable unit threaded through extraction, mastering and
// packaging. Position is its index in processing order.
type Track struct {
	Position    int
	Title       string
	Slug        string
	Description string
	Date        string
	MediaID     string
	VideoPath   string
}

// Options controls track derivation.
type Options struct {
	Keyword             string
	FallbackDescription string
	// Disambiguate appends -<media_id> to a slug already used earlier in the
	// batch. When false later tracks overwrite earlier ones on disk.
	Disambiguate bool
}

// Eligible reports whether rec's caption contains keyword (case-insensitive)
// and its video file exists.
func Eligible(rec metadata.Record, keyword string) bool {
	if !MatchesKeyword(rec.Caption, keyword) {
		return false
	}
	info, err := os.Stat(rec.VideoPath)
	return err == nil && !info.IsDir()
}

// Filter returns the eligible records, preserving order.
func Filter(records []metadata.Record, keyword string) []metadata.Record {
	out := make([]metadata.Record, 0, len(records))
	for _, rec := range records {
		if Eligible(rec, keyword) {
			out = append(out, rec)
		}
	}
	return out
}

// SortNewestFirst orders records by Date descending using plain string
// comparison. Records with equal dates keep their relative order.
func SortNewestFirst(records []metadata.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date > records[j].Date
	})
}

// Plan filters, orders and derives the tracks for a batch. The returned
// order is the processing order and the manifest order.
func Plan(records []metadata.Record, opts Options) []Track {
	eligible := Filter(records, opts.Keyword)
	SortNewestFirst(eligible)

	tracks := make([]Track, 0, len(eligible))
	used := make(map[string]struct{}, len(eligible))
	for i, rec := range eligible {
		track := Build(rec, opts.FallbackDescription)
		track.Position = i
		if opts.Disambiguate {
			track.Slug = uniqueSlug(track.Slug, rec.MediaID, used)
		}
		used[track.Slug] = struct{}{}
		tracks = append(tracks, track)
	}
	return tracks
}

// Build derives a Track from one record without consulting the filesystem.
func Build(rec metadata.Record, fallbackDescription string) Track {
	title := CleanTitle(rec.Caption, rec.MediaID)
	return Track{
		Title:       title,
		Slug:        SlugFor(title, rec.MediaID),
		Description: Describe(title, rec.Caption, fallbackDescription),
		Date:        rec.Date,
		MediaID:     rec.MediaID,
		VideoPath:   rec.VideoPath,
	}
}

// SlugFor slugifies title, falling back to "freestyle-<media_id>".
func SlugFor(title, mediaID string) string {
	if slug := Slugify(title); slug != "" {
		return slug
	}
	if id := Slugify(mediaID); id != "" {
		return "freestyle-" + id
	}
	return "freestyle"
}

func uniqueSlug(slug, mediaID string, used map[string]struct{}) string {
	if _, taken := used[slug]; !taken {
		return slug
	}
	base := slug
	if id := Slugify(mediaID); id != "" {
		base = slug + "-" + id
		if _, taken := used[base]; !taken {
			return base
		}
	}
	for n := 2; ; n++ {
		candidate := base + "-" + strconv.Itoa(n)
		if _, taken := used[candidate]; !taken {
			return candidate
		}
	}
}
