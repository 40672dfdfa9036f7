package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"freestyle/internal/config"
	"freestyle/internal/engine"
	"freestyle/internal/engine/enginetest"
	"freestyle/internal/manifest"
	"freestyle/internal/workflow"
)

type cliEnv struct {
	base       string
	configPath string
	videoDir   string
	metaDir    string
	manifest   string
	engine     *enginetest.Fake
}

func setupCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Setenv("NTFY_TOPIC", "")
	env := &cliEnv{
		base:       base,
		configPath: filepath.Join(base, "freestyle.toml"),
		videoDir:   filepath.Join(base, "videos"),
		metaDir:    filepath.Join(base, "metadata"),
		manifest:   filepath.Join(base, "out", "tracks.json"),
		engine:     enginetest.New(),
	}
	for _, dir := range []string{env.videoDir, env.metaDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	bin := filepath.Join(base, "bin")
	if err := os.MkdirAll(bin, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"ffmpeg", "ffprobe"} {
		if err := os.WriteFile(filepath.Join(bin, name), []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	t.Setenv("PATH", bin+string(os.PathListSeparator)+os.Getenv("PATH"))

	cfg := fmt.Sprintf(`[paths]
video_dir = %q
metadata_dir = %q
work_dir = %q
masters_dir = %q
assets_dir = %q
manifest_path = %q
log_dir = %q

[logging]
level = "error"
`, env.videoDir, env.metaDir, filepath.Join(base, "work"), filepath.Join(base, "masters"),
		filepath.Join(base, "public", "assets"), env.manifest, filepath.Join(base, "logs"))
	if err := os.WriteFile(env.configPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	return env
}

func (e *cliEnv) addTrack(t *testing.T, video, caption, date, mediaID string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(e.videoDir, video), []byte("video"), 0o644); err != nil {
		t.Fatal(err)
	}
	sidecar := fmt.Sprintf(`{"description": %q, "date": %q, "media_id": %q}`, caption, date, mediaID)
	if err := os.WriteFile(filepath.Join(e.metaDir, video+".json"), []byte(sidecar), 0o644); err != nil {
		t.Fatal(err)
	}
}

func (e *cliEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	ctx := newCommandContext()
	ctx.newEngine = func(*config.Config, *slog.Logger) engine.Engine { return e.engine }
	cmd := newRootCommand(ctx)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", e.configPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}

func TestProcessWritesManifestAndHistory(t *testing.T) {
	env := setupCLIEnv(t)
	env.addTrack(t, "a.mp4", "Dropped a new Freestyle today!", "2024-01-15", "999")

	out, err := env.run(t, "process")
	if err != nil {
		t.Fatalf("process: %v\n%s", err, out)
	}
	requireContains(t, out, "Total tracks processed: 1")
	requireContains(t, out, "dropped-a-new-freestyle-today")

	entries, err := manifest.Read(env.manifest)
	if err != nil || len(entries) != 1 {
		t.Fatalf("manifest = %+v, %v", entries, err)
	}

	out, err = env.run(t, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "succeeded")
}

func TestProcessStrictExitsNonZeroOnSkippedTrack(t *testing.T) {
	env := setupCLIEnv(t)
	env.addTrack(t, "a.mp4", "Alpha freestyle", "2024-01-15", "1")
	env.engine.FailOn(enginetest.OpRender, "", nil)

	out, err := env.run(t, "process")
	if err != nil {
		t.Fatalf("non-strict process should succeed: %v", err)
	}
	requireContains(t, out, "Total tracks processed: 0 (skipped 1)")

	_, err = env.run(t, "process", "--strict")
	if !errors.Is(err, workflow.ErrItemFailures) || exitCode(err) != 2 {
		t.Fatalf("expected exit status 2, got %v (code %d)", err, exitCode(err))
	}
}

func TestProcessDryRunListsPlan(t *testing.T) {
	env := setupCLIEnv(t)
	env.addTrack(t, "a.mp4", "Alpha freestyle", "2024-01-15", "1")
	env.addTrack(t, "b.mp4", "not eligible", "2024-01-16", "2")

	out, err := env.run(t, "process", "--dry-run")
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}
	requireContains(t, out, "alpha-freestyle")
	requireContains(t, out, "1 of 2 sidecars eligible")
	if len(env.engine.Calls()) != 0 {
		t.Fatal("dry run invoked the engine")
	}
}

func TestConfigInitAndShow(t *testing.T) {
	env := setupCLIEnv(t)
	target := filepath.Join(env.base, "new", "config.toml")

	out, err := env.run(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := env.run(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected refusal to overwrite")
	}

	out, err = env.run(t, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, env.videoDir)

	out, err = env.run(t, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
}

func TestDepsReportsStubbedBinaries(t *testing.T) {
	env := setupCLIEnv(t)
	out, err := env.run(t, "deps")
	if err != nil {
		t.Fatalf("deps: %v\n%s", err, out)
	}
	requireContains(t, out, "FFmpeg")
}

func TestPublishDryRunNeedsNoCredentials(t *testing.T) {
	env := setupCLIEnv(t)
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("SUPABASE_SERVICE_ROLE_KEY", "")
	t.Setenv("SUPABASE_KEY", "")
	env.addTrack(t, "a.mp4", "Alpha freestyle", "2024-01-15", "1")
	if _, err := env.run(t, "process"); err != nil {
		t.Fatal(err)
	}

	out, err := env.run(t, "publish", "--dry-run")
	if err != nil {
		t.Fatalf("publish --dry-run: %v", err)
	}
	requireContains(t, out, "assets/detbom-freestyles/alpha-freestyle/master.mp3")
}

func TestExitCodeDefaultsToOne(t *testing.T) {
	if got := exitCode(errors.New("boom")); got != 1 {
		t.Fatalf("exitCode = %d", got)
	}
}
