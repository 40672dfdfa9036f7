package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if err := c.validateMastering(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	return firstInvalid([]setting[string]{
		{"paths.video_dir", c.Paths.VideoDir},
		{"paths.metadata_dir", c.Paths.MetadataDir},
		{"paths.work_dir", c.Paths.WorkDir},
		{"paths.masters_dir", c.Paths.MastersDir},
		{"paths.assets_dir", c.Paths.AssetsDir},
		{"paths.manifest_path", c.Paths.ManifestPath},
	}, func(v string) bool { return strings.TrimSpace(v) != "" }, "must be set")
}

func (c *Config) validateCatalog() error {
	if strings.ContainsAny(c.Catalog.Collection, `\ `) {
		return errors.New("catalog.collection must be a single URL-safe path segment")
	}
	if !strings.Contains(c.Catalog.FallbackDescription, "{title}") {
		return errors.New("catalog.fallback_description must contain the {title} placeholder")
	}
	return nil
}

func (c *Config) validateMastering() error {
	if err := firstInvalid([]setting[int]{
		{"mastering.stage_timeout_seconds", c.Mastering.StageTimeoutSeconds},
		{"mastering.cover_timeout_seconds", c.Mastering.CoverTimeoutSeconds},
		{"mastering.probe_timeout_seconds", c.Mastering.ProbeTimeoutSeconds},
		{"mastering.cover_size", c.Mastering.CoverSize},
		{"mastering.mp3_bitrate_kbps", c.Mastering.MP3BitrateKbps},
	}, func(v int) bool { return v > 0 }, "must be positive"); err != nil {
		return err
	}
	if c.Mastering.TargetLUFS >= 0 || c.Mastering.TargetLUFS < -70 {
		return errors.New("mastering.target_lufs must be between -70 and 0")
	}
	if c.Mastering.TargetLRA < 1 || c.Mastering.TargetLRA > 50 {
		return errors.New("mastering.target_lra must be between 1 and 50")
	}
	if c.Mastering.TargetTP > 0 || c.Mastering.TargetTP < -9 {
		return errors.New("mastering.target_tp must be between -9 and 0")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.Workers < 1 {
		return errors.New("workflow.workers must be >= 1")
	}
	if _, err := ScheduleParser.Parse(c.Workflow.Schedule); err != nil {
		return fmt.Errorf("workflow.schedule %q: %w", c.Workflow.Schedule, err)
	}
	return nil
}

// ValidatePublish reports whether the publish section can reach storage.
// It is checked only by the publish command so batches run without credentials.
func (c *Config) ValidatePublish() error {
	if c.Publish.SupabaseURL == "" {
		return errors.New("publish.supabase_url is required (or set SUPABASE_URL)")
	}
	if c.Publish.SupabaseKey == "" {
		return errors.New("publish.supabase_key is required (or set SUPABASE_SERVICE_ROLE_KEY)")
	}
	if c.Publish.Bucket == "" {
		return errors.New("publish.bucket must be set")
	}
	return nil
}

// setting pairs a config key with its value so checks run in a fixed order.
type setting[T any] struct {
	key   string
	value T
}

// firstInvalid reports the first setting, in slice order, that fails ok.
func firstInvalid[T any](settings []setting[T], ok func(T) bool, problem string) error {
	for _, s := range settings {
		if !ok(s.value) {
			return fmt.Errorf("%s %s", s.key, problem)
		}
	}
	return nil
}
