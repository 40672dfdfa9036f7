package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeCatalog()
	c.normalizeMastering()
	c.normalizeWorkflow()
	if err := c.normalizeHistory(); err != nil {
		return err
	}
	c.normalizeNotifications()
	c.normalizePublish()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	fields := []struct {
		key   string
		value *string
	}{
		{"paths.video_dir", &c.Paths.VideoDir},
		{"paths.metadata_dir", &c.Paths.MetadataDir},
		{"paths.work_dir", &c.Paths.WorkDir},
		{"paths.masters_dir", &c.Paths.MastersDir},
		{"paths.assets_dir", &c.Paths.AssetsDir},
		{"paths.manifest_path", &c.Paths.ManifestPath},
		{"paths.log_dir", &c.Paths.LogDir},
		{"paths.placeholder_cover", &c.Paths.PlaceholderCover},
	}
	for _, field := range fields {
		expanded, err := expandPath(strings.TrimSpace(*field.value))
		if err != nil {
			return fmt.Errorf("%s: %w", field.key, err)
		}
		*field.value = expanded
	}
	return nil
}

func (c *Config) normalizeCatalog() {
	c.Catalog.Collection = strings.Trim(strings.TrimSpace(c.Catalog.Collection), "/")
	if c.Catalog.Collection == "" {
		c.Catalog.Collection = defaultCollection
	}
	c.Catalog.Keyword = strings.ToLower(strings.TrimSpace(c.Catalog.Keyword))
	if c.Catalog.Keyword == "" {
		c.Catalog.Keyword = defaultKeyword
	}
	c.Catalog.FallbackDescription = strings.TrimSpace(c.Catalog.FallbackDescription)
	if c.Catalog.FallbackDescription == "" {
		c.Catalog.FallbackDescription = defaultFallbackDescription
	}
}

func (c *Config) normalizeMastering() {
	c.Mastering.FFmpegBinary = strings.TrimSpace(c.Mastering.FFmpegBinary)
	if c.Mastering.FFmpegBinary == "" {
		c.Mastering.FFmpegBinary = defaultFFmpegBinary
	}
	c.Mastering.FFprobeBinary = strings.TrimSpace(c.Mastering.FFprobeBinary)
	if c.Mastering.FFprobeBinary == "" {
		c.Mastering.FFprobeBinary = defaultFFprobeBinary
	}
	if c.Mastering.StageTimeoutSeconds <= 0 {
		c.Mastering.StageTimeoutSeconds = defaultStageTimeout
	}
	if c.Mastering.CoverTimeoutSeconds <= 0 {
		c.Mastering.CoverTimeoutSeconds = defaultCoverTimeout
	}
	if c.Mastering.ProbeTimeoutSeconds <= 0 {
		c.Mastering.ProbeTimeoutSeconds = defaultProbeTimeout
	}
	if c.Mastering.CoverSize <= 0 {
		c.Mastering.CoverSize = defaultCoverSize
	}
	if c.Mastering.CoverOffsetSeconds < 0 {
		c.Mastering.CoverOffsetSeconds = defaultCoverOffsetSeconds
	}
	if c.Mastering.MP3BitrateKbps <= 0 {
		c.Mastering.MP3BitrateKbps = defaultMP3BitrateKbps
	}
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.Workers <= 0 {
		c.Workflow.Workers = defaultWorkers
	}
	c.Workflow.Schedule = strings.TrimSpace(c.Workflow.Schedule)
	if c.Workflow.Schedule == "" {
		c.Workflow.Schedule = defaultSchedule
	}
}

func (c *Config) normalizeHistory() error {
	if strings.TrimSpace(c.History.Path) == "" {
		return nil
	}
	expanded, err := expandPath(strings.TrimSpace(c.History.Path))
	if err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	c.History.Path = expanded
	return nil
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		if value, ok := os.LookupEnv("NTFY_TOPIC"); ok {
			c.Notifications.NtfyTopic = strings.TrimSpace(value)
		}
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}

func (c *Config) normalizePublish() {
	c.Publish.SupabaseURL = strings.TrimRight(strings.TrimSpace(c.Publish.SupabaseURL), "/")
	if c.Publish.SupabaseURL == "" {
		if value, ok := os.LookupEnv("SUPABASE_URL"); ok {
			c.Publish.SupabaseURL = strings.TrimRight(strings.TrimSpace(value), "/")
		}
	}
	c.Publish.SupabaseKey = strings.TrimSpace(c.Publish.SupabaseKey)
	if c.Publish.SupabaseKey == "" {
		if value, ok := os.LookupEnv("SUPABASE_SERVICE_ROLE_KEY"); ok {
			c.Publish.SupabaseKey = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("SUPABASE_KEY"); ok {
			c.Publish.SupabaseKey = strings.TrimSpace(value)
		}
	}
	c.Publish.Bucket = strings.TrimSpace(c.Publish.Bucket)
	if c.Publish.Bucket == "" {
		c.Publish.Bucket = defaultPublishBucket
	}
	c.Publish.PublicBaseURL = strings.TrimRight(strings.TrimSpace(c.Publish.PublicBaseURL), "/")
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
