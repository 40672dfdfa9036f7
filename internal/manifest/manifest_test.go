package manifest_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"freestyle/internal/manifest"
	"freestyle/internal/services"
)

func TestWriteKeyOrderAndIndent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "tracks.json")
	entries := []manifest.Entry{{
		Title:       "Late night <bars>",
		Slug:        "late-night-bars",
		Duration:    "2:05",
		File:        manifest.TrackURL("freestyle", "late-night-bars", "master.mp3"),
		CoverArt:    manifest.TrackURL("freestyle", "late-night-bars", "cover.jpg"),
		Description: "desc",
		Date:        "2024-05-01",
	}}
	if err := manifest.Write(path, entries); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := `[
  {
    "title": "Late night <bars>",
    "slug": "late-night-bars",
    "duration": "2:05",
    "file": "/assets/freestyle/late-night-bars/master.mp3",
    "coverArt": "/assets/freestyle/late-night-bars/cover.jpg",
    "description": "desc",
    "date": "2024-05-01"
  }
]`
	if string(data) != want {
		t.Fatalf("manifest mismatch:\n%s\nwant:\n%s", data, want)
	}
}

func TestWriteEmptyAndOmittedCover(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.json")
	if err := manifest.Write(empty, nil); err != nil {
		t.Fatal(err)
	}
	if data, _ := os.ReadFile(empty); string(data) != "[]" {
		t.Fatalf("empty manifest = %q", data)
	}

	noCover := filepath.Join(dir, "nocover.json")
	if err := manifest.Write(noCover, []manifest.Entry{{Title: "t", Slug: "t"}}); err != nil {
		t.Fatal(err)
	}
	if data, _ := os.ReadFile(noCover); strings.Contains(string(data), "coverArt") {
		t.Fatalf("expected coverArt omitted: %s", data)
	}
}

func TestReadRoundTripAndErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "m.json")
	in := []manifest.Entry{{Title: "a", Slug: "a", File: "/assets/c/a/master.mp3"}}
	if err := manifest.Write(path, in); err != nil {
		t.Fatal(err)
	}
	got, err := manifest.Read(path)
	if err != nil || len(got) != 1 || got[0] != in[0] {
		t.Fatalf("Read = %+v, %v", got, err)
	}

	if _, err := manifest.Read(filepath.Join(dir, "missing.json")); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := manifest.Read(bad); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestRewrite(t *testing.T) {
	entries := []manifest.Entry{
		{File: "/assets/c/a/master.mp3", CoverArt: "/assets/c/a/cover.jpg"},
		{File: "/assets/c/b/master.mp3"},
	}
	urls := map[string]string{
		"/assets/c/a/master.mp3": "https://cdn/a.mp3",
		"/assets/c/a/cover.jpg":  "https://cdn/a.jpg",
	}
	if n := manifest.Rewrite(entries, urls); n != 2 {
		t.Fatalf("changed = %d", n)
	}
	if entries[0].File != "https://cdn/a.mp3" || entries[0].CoverArt != "https://cdn/a.jpg" {
		t.Fatalf("rewrite failed: %+v", entries[0])
	}
	if entries[1].File != "/assets/c/b/master.mp3" || entries[1].CoverArt != "" {
		t.Fatalf("unexpected change: %+v", entries[1])
	}
}
