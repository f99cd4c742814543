package main

import (
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"ripfeed/internal/config"
	"ripfeed/internal/logging"
	"ripfeed/internal/scanstore"
)

// commandContext lazily loads the config and logger shared by subcommands.
type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
		if err == nil {
			err = cfg.EnsureDirectories()
		}
		c.config, c.configErr = cfg, err
		if err != nil {
			c.config = nil
		}
	})
	return c.config, c.configErr
}

// ensureLogger builds the CLI logger once and prunes expired log files.
func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = err
			return
		}
		logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays,
			logging.RetentionTarget{
				Dir:     cfg.Paths.LogDir,
				Pattern: "*.log",
				Exclude: []string{filepath.Join(cfg.Paths.LogDir, "ripfeed.log")},
			},
			logging.RetentionTarget{Dir: filepath.Join(cfg.Paths.LogDir, "jobs"), Pattern: "*.log"},
		)
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) openStore() (*scanstore.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return scanstore.Open(cfg.ScanDBPath())
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
