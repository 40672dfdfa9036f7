package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains input, working, and output directory configuration.
type Paths struct {
	VideoDir         string `toml:"video_dir"`
	MetadataDir      string `toml:"metadata_dir"`
	WorkDir          string `toml:"work_dir"`
	MastersDir       string `toml:"masters_dir"`
	AssetsDir        string `toml:"assets_dir"`
	ManifestPath     string `toml:"manifest_path"`
	LogDir           string `toml:"log_dir"`
	PlaceholderCover string `toml:"placeholder_cover"`
}

// Catalog controls how caption records become tracks.
type Catalog struct {
	Collection          string `toml:"collection"`
	Keyword             string `toml:"keyword"`
	FallbackDescription string `toml:"fallback_description"`
	DisambiguateSlugs   bool   `toml:"disambiguate_slugs"`
}

// Mastering contains codec engine binaries, timeouts, and loudness targets.
type Mastering struct {
	FFmpegBinary        string  `toml:"ffmpeg_binary"`
	FFprobeBinary       string  `toml:"ffprobe_binary"`
	StageTimeoutSeconds int     `toml:"stage_timeout_seconds"`
	CoverTimeoutSeconds int     `toml:"cover_timeout_seconds"`
	ProbeTimeoutSeconds int     `toml:"probe_timeout_seconds"`
	TargetLUFS          float64 `toml:"target_lufs"`
	TargetLRA           float64 `toml:"target_lra"`
	TargetTP            float64 `toml:"target_tp"`
	CoverSize           int     `toml:"cover_size"`
	CoverOffsetSeconds  float64 `toml:"cover_offset_seconds"`
	MP3BitrateKbps      int     `toml:"mp3_bitrate_kbps"`
}

// Workflow contains batch orchestration settings.
type Workflow struct {
	Workers         int    `toml:"workers"`
	FailOnItemError bool   `toml:"fail_on_item_error"`
	Schedule        string `toml:"schedule"`
}

// History contains configuration for the run history database.
type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Publish contains Supabase storage settings used by `freestyle publish`.
type Publish struct {
	SupabaseURL   string `toml:"supabase_url"`
	SupabaseKey   string `toml:"supabase_key"`
	Bucket        string `toml:"bucket"`
	PublicBaseURL string `toml:"public_base_url"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for freestyle.
//
// Configuration sections by subsystem:
//   - Paths: input videos and sidecars, intermediates, public assets, manifest
//   - Catalog: collection name, eligibility keyword, description fallback
//   - Mastering: ffmpeg/ffprobe binaries, timeouts, loudness targets
//   - Workflow: worker count, exit policy, cron schedule
//   - History: SQLite run ledger
//   - Notifications: ntfy push notification settings
//   - Publish: Supabase storage upload target
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Catalog       Catalog       `toml:"catalog"`
	Mastering     Mastering     `toml:"mastering"`
	Workflow      Workflow      `toml:"workflow"`
	History       History       `toml:"history"`
	Notifications Notifications `toml:"notifications"`
	Publish       Publish       `toml:"publish"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/freestyle/config.toml")
}

// Load reads the TOML file at path (or the default locations when path is
// empty), applies defaults for anything unset, and validates the result. It
// also reports the resolved path and whether that file existed.
func Load(path string) (*Config, string, bool, error) {
	resolved, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}
	cfg := Default()
	if exists {
		if err := decodeFile(resolved, &cfg); err != nil {
			return nil, "", false, err
		}
	}
	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolved, exists, nil
}

func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// resolveConfigPath returns the file Load should read and whether it exists.
// An explicit path is used as given; otherwise the per-user file wins over
// ./freestyle.toml, and the per-user path is reported when neither exists.
func resolveConfigPath(path string) (string, bool, error) {
	var candidates []string
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		candidates = []string{expanded}
	} else {
		userPath, err := DefaultConfigPath()
		if err != nil {
			return "", false, err
		}
		localPath, err := filepath.Abs("freestyle.toml")
		if err != nil {
			return "", false, err
		}
		candidates = []string{userPath, localPath}
	}

	for _, candidate := range candidates {
		info, err := os.Stat(candidate)
		switch {
		case err == nil && !info.IsDir():
			return candidate, true, nil
		case err != nil && !errors.Is(err, fs.ErrNotExist) && path != "":
			return "", false, fmt.Errorf("stat config: %w", err)
		}
	}
	return candidates[0], false, nil
}

// EnsureDirectories creates the working and output directories a batch writes
// into. Input directories are left alone; a missing video dir simply yields an
// empty batch.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, c.Paths.MastersDir, c.CollectionDir(), c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if manifestDir := filepath.Dir(c.Paths.ManifestPath); manifestDir != "" {
		if err := os.MkdirAll(manifestDir, 0o755); err != nil {
			return fmt.Errorf("create manifest directory %q: %w", manifestDir, err)
		}
	}
	return nil
}

// CollectionDir is the on-disk directory holding one folder per track.
func (c *Config) CollectionDir() string {
	return filepath.Join(c.Paths.AssetsDir, c.Catalog.Collection)
}

// HistoryPath returns the SQLite file backing run history.
func (c *Config) HistoryPath() string {
	if strings.TrimSpace(c.History.Path) != "" {
		return c.History.Path
	}
	return filepath.Join(c.Paths.LogDir, "history.db")
}

// LockPath returns the lock file guarding a batch against concurrent runs.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.WorkDir, ".freestyle.lock")
}

// StageTimeout bounds extraction, mastering, and encoding invocations.
func (c *Config) StageTimeout() time.Duration {
	return time.Duration(c.Mastering.StageTimeoutSeconds) * time.Second
}

// CoverTimeout bounds cover frame extraction.
func (c *Config) CoverTimeout() time.Duration {
	return time.Duration(c.Mastering.CoverTimeoutSeconds) * time.Second
}

// ProbeTimeout bounds duration probing.
func (c *Config) ProbeTimeout() time.Duration {
	return time.Duration(c.Mastering.ProbeTimeoutSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
