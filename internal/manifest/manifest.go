// Package manifest reads and writes the JSON catalog consumed by the site.
package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"

	"freestyle/internal/fileutil"
	"freestyle/internal/services"
)

// Entry is one track in the manifest. Field order is the serialized order.
type Entry struct {
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Duration    string `json:"duration"`
	File        string `json:"file"`
	CoverArt    string `json:"coverArt,omitempty"`
	Description string `json:"description"`
	Date        string `json:"date"`
}

// AssetsPrefix is the site path under which collections are served.
const AssetsPrefix = "/assets"

// TrackURL returns the site path of a file inside a track directory.
func TrackURL(collection, slug, name string) string {
	return path.Join(AssetsPrefix, collection, slug, name)
}

// Write serializes entries as a two-space indented JSON array and replaces
// path atomically. A nil slice is written as an empty array.
func Write(path string, entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	data := bytes.TrimRight(buf.Bytes(), "\n")
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return services.Wrap(services.ErrExternalTool, "manifest", "write", path, err)
	}
	return nil
}

// Read loads a manifest written by Write.
func Read(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, services.Wrap(services.ErrNotFound, "manifest", "read", path, err)
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, services.Wrap(services.ErrValidation, "manifest", "decode", path, err)
	}
	return entries, nil
}

// Rewrite replaces file and coverArt values found in urls, leaving others
// untouched. It returns the number of fields changed.
func Rewrite(entries []Entry, urls map[string]string) int {
	changed := 0
	for i := range entries {
		if u, ok := urls[entries[i].File]; ok && u != entries[i].File {
			entries[i].File = u
			changed++
		}
		if entries[i].CoverArt == "" {
			continue
		}
		if u, ok := urls[entries[i].CoverArt]; ok && u != entries[i].CoverArt {
			entries[i].CoverArt = u
			changed++
		}
	}
	return changed
}
