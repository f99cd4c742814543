package config

import (
	"errors"
	"fmt"
)

var validLevels = map[string]struct{}{"debug": {}, "info": {}, "warn": {}, "error": {}}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if c.Paths.MinFreeMB < 0 {
		return errors.New("paths.min_free_mb must be zero or positive")
	}
	if err := c.validateReader(); err != nil {
		return err
	}
	if err := c.validateScan(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateReader() error {
	queues := []struct {
		name  string
		value int
	}{
		{"reader.video_queue", c.Reader.VideoQueue},
		{"reader.audio_queue", c.Reader.AudioQueue},
		{"reader.subtitle_queue", c.Reader.SubtitleQueue},
	}
	for _, q := range queues {
		if q.value < 1 {
			return fmt.Errorf("%s must be positive (got %d)", q.name, q.value)
		}
	}
	if c.Reader.PollIntervalMS < 1 || c.Reader.PollIntervalMS > 1000 {
		return fmt.Errorf("reader.poll_interval_ms must be between 1 and 1000 (got %d)", c.Reader.PollIntervalMS)
	}
	if c.Reader.LogLevel != "" {
		if _, ok := validLevels[c.Reader.LogLevel]; !ok {
			return fmt.Errorf("reader.log_level: unsupported value %q", c.Reader.LogLevel)
		}
	}
	return nil
}

func (c *Config) validateScan() error {
	if c.Scan.ProgressBucket < 0 || c.Scan.ProgressBucket > 100 {
		return errors.New("scan.progress_bucket must be between 0 and 100")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	if _, ok := validLevels[c.Logging.Level]; !ok {
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	if c.Logging.RetentionDays < 0 {
		return errors.New("logging.retention_days must be zero or positive")
	}
	return nil
}
