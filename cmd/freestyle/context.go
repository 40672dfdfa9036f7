package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"freestyle/internal/config"
	"freestyle/internal/engine"
	"freestyle/internal/engine/ffmpeg"
	"freestyle/internal/logging"
)

type commandContext struct {
	configFlag   string
	logLevelFlag string
	logFormat    string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error

	// newEngine builds the codec engine; tests replace it.
	newEngine func(cfg *config.Config, logger *slog.Logger) engine.Engine
}

func newCommandContext() *commandContext {
	return &commandContext{newEngine: defaultEngine}
}

func defaultEngine(cfg *config.Config, logger *slog.Logger) engine.Engine {
	return ffmpeg.New(ffmpeg.Options{
		FFmpegBinary:  cfg.Mastering.FFmpegBinary,
		FFprobeBinary: cfg.Mastering.FFprobeBinary,
		Timeouts: ffmpeg.Timeouts{
			Stage: cfg.StageTimeout(),
			Cover: cfg.CoverTimeout(),
			Probe: cfg.ProbeTimeout(),
		},
		Logger: logger,
	})
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		// A missing .env is normal.
		_ = godotenv.Load()

		cfg, path, _, err := config.Load(strings.TrimSpace(c.configFlag))
		if err != nil {
			c.configErr = err
			return
		}
		if level := strings.TrimSpace(c.logLevelFlag); level != "" {
			cfg.Logging.Level = strings.ToLower(level)
		}
		if format := strings.TrimSpace(c.logFormat); format != "" {
			cfg.Logging.Format = strings.ToLower(format)
		}
		c.config = cfg
		c.configPath = path
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
