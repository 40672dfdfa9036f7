package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"freestyle/internal/config"
)

// ConfigOption adjusts the config returned by NewConfig.
type ConfigOption func(*config.Config)

// NewConfig returns defaults rooted in a fresh temp directory laid out like
// a real collection: inputs/ for downloads, outputs/ for masters and the
// manifest, public/assets/ for delivered tracks. The video and metadata
// directories already exist.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	root := t.TempDir()
	at := func(parts ...string) string { return filepath.Join(append([]string{root}, parts...)...) }

	cfg := config.Default()
	cfg.Paths.WorkDir = at("inputs")
	cfg.Paths.VideoDir = at("inputs", "videos")
	cfg.Paths.MetadataDir = at("inputs", "metadata")
	cfg.Paths.MastersDir = at("outputs", "masters")
	cfg.Paths.ManifestPath = at("outputs", "freestyle_tracks.json")
	cfg.Paths.AssetsDir = at("public", "assets")
	cfg.Paths.LogDir = at("logs")

	for _, dir := range []string{cfg.Paths.VideoDir, cfg.Paths.MetadataDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

func WithWorkers(n int) ConfigOption {
	return func(cfg *config.Config) { cfg.Workflow.Workers = n }
}

// WithoutHistory turns off the SQLite run history.
func WithoutHistory() ConfigOption {
	return func(cfg *config.Config) { cfg.History.Enabled = false }
}
