package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"freestyle/internal/config"
)

// Sidecar mirrors the caption record written next to each downloaded video.
type Sidecar struct {
	Description string `json:"description,omitempty"`
	Date        string `json:"date,omitempty"`
	PostDate    string `json:"post_date,omitempty"`
	MediaID     string `json:"media_id,omitempty"`
}

// WriteSidecar writes <video>.json into the metadata directory.
func WriteSidecar(t testing.TB, cfg *config.Config, video string, sidecar Sidecar) string {
	t.Helper()

	data, err := json.Marshal(sidecar)
	if err != nil {
		t.Fatalf("marshal sidecar: %v", err)
	}
	path := filepath.Join(cfg.Paths.MetadataDir, video+".json")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write sidecar %s: %v", path, err)
	}
	return path
}

// WriteVideo drops a stand-in video into the video directory. The engine
// fakes never decode it.
func WriteVideo(t testing.TB, cfg *config.Config, video string) string {
	t.Helper()

	path := filepath.Join(cfg.Paths.VideoDir, video)
	if err := os.WriteFile(path, []byte("\x00\x00\x00\x18ftypmp42"), 0o644); err != nil {
		t.Fatalf("write video %s: %v", path, err)
	}
	return path
}
