package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"freestyle/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("NTFY_TOPIC", "")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantWork := filepath.Join(tempHome, "freestyle", "inputs")
	if cfg.Paths.WorkDir != wantWork {
		t.Fatalf("unexpected work dir: got %q want %q", cfg.Paths.WorkDir, wantWork)
	}
	if cfg.Catalog.Collection != "detbom-freestyles" {
		t.Fatalf("unexpected collection: %q", cfg.Catalog.Collection)
	}
	if cfg.CollectionDir() != filepath.Join(tempHome, "freestyle", "public", "assets", "detbom-freestyles") {
		t.Fatalf("unexpected collection dir: %q", cfg.CollectionDir())
	}
	if cfg.Mastering.TargetLUFS != -14 || cfg.Mastering.TargetLRA != 11 || cfg.Mastering.TargetTP != -1 {
		t.Fatalf("unexpected loudness targets: %+v", cfg.Mastering)
	}
	if cfg.StageTimeout().Seconds() != 300 {
		t.Fatalf("unexpected stage timeout: %v", cfg.StageTimeout())
	}
	if cfg.Workflow.Workers != 1 {
		t.Fatalf("expected sequential default, got %d workers", cfg.Workflow.Workers)
	}
	if !cfg.History.Enabled {
		t.Fatal("expected history enabled by default")
	}
	if cfg.HistoryPath() != filepath.Join(cfg.Paths.LogDir, "history.db") {
		t.Fatalf("unexpected history path: %q", cfg.HistoryPath())
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.WorkDir, cfg.Paths.MastersDir, cfg.CollectionDir(), cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "freestyle.toml")

	type payload struct {
		Paths struct {
			VideoDir string `toml:"video_dir"`
		} `toml:"paths"`
		Catalog struct {
			Collection string `toml:"collection"`
		} `toml:"catalog"`
		Workflow struct {
			Workers int `toml:"workers"`
		} `toml:"workflow"`
		Logging struct {
			Format string `toml:"format"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Paths.VideoDir = filepath.Join(tempDir, "videos")
	custom.Catalog.Collection = "/singles/"
	custom.Workflow.Workers = 3
	custom.Logging.Format = "JSON"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Paths.VideoDir != filepath.Join(tempDir, "videos") {
		t.Fatalf("expected video dir from file, got %q", cfg.Paths.VideoDir)
	}
	if cfg.Catalog.Collection != "singles" {
		t.Fatalf("expected collection slashes trimmed, got %q", cfg.Catalog.Collection)
	}
	if cfg.Workflow.Workers != 3 {
		t.Fatalf("expected 3 workers, got %d", cfg.Workflow.Workers)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected json log format, got %q", cfg.Logging.Format)
	}
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "broken.toml")
	if err := os.WriteFile(configPath, []byte("[paths\nvideo_dir = 1"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil || !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{
			name:   "fallback without placeholder",
			mutate: func(c *config.Config) { c.Catalog.FallbackDescription = "static text" },
			want:   "{title}",
		},
		{
			name:   "positive lufs",
			mutate: func(c *config.Config) { c.Mastering.TargetLUFS = 3 },
			want:   "mastering.target_lufs",
		},
		{
			name:   "zero workers",
			mutate: func(c *config.Config) { c.Workflow.Workers = 0 },
			want:   "workflow.workers",
		},
		{
			name:   "missing manifest path",
			mutate: func(c *config.Config) { c.Paths.ManifestPath = "" },
			want:   "paths.manifest_path",
		},
		{
			name:   "bad schedule",
			mutate: func(c *config.Config) { c.Workflow.Schedule = "every six hours" },
			want:   "workflow.schedule",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestValidateReportsFirstInvalidKeyInOrder(t *testing.T) {
	for i := 0; i < 20; i++ {
		cfg := config.Default()
		cfg.Paths.ManifestPath = ""
		cfg.Paths.VideoDir = " "
		cfg.Paths.AssetsDir = ""
		if err := cfg.Validate(); err == nil || err.Error() != "paths.video_dir must be set" {
			t.Fatalf("paths: got %v", err)
		}

		cfg = config.Default()
		cfg.Mastering.MP3BitrateKbps = 0
		cfg.Mastering.CoverSize = -1
		cfg.Mastering.StageTimeoutSeconds = 0
		if err := cfg.Validate(); err == nil || err.Error() != "mastering.stage_timeout_seconds must be positive" {
			t.Fatalf("mastering: got %v", err)
		}
	}
}

func TestValidateAcceptsFiveFieldSchedule(t *testing.T) {
	cfg := config.Default()
	cfg.Workflow.Schedule = "0 */6 * * *"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestPublishEnvFallbacks(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("SUPABASE_URL", "https://example.supabase.co/")
	t.Setenv("SUPABASE_SERVICE_ROLE_KEY", "service-key")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Publish.SupabaseURL != "https://example.supabase.co" {
		t.Fatalf("unexpected supabase url: %q", cfg.Publish.SupabaseURL)
	}
	if cfg.Publish.SupabaseKey != "service-key" {
		t.Fatalf("unexpected supabase key: %q", cfg.Publish.SupabaseKey)
	}
	if err := cfg.ValidatePublish(); err != nil {
		t.Fatalf("expected publish config valid, got %v", err)
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	if _, _, exists, err := config.Load(path); err != nil || !exists {
		t.Fatalf("expected sample config to load, exists=%v err=%v", exists, err)
	}
}
