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
	c.normalizeSource()
	c.normalizeReader()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	fields := []struct {
		name     string
		value    *string
		fallback string
	}{
		{"paths.state_dir", &c.Paths.StateDir, defaultStateDir},
		{"paths.log_dir", &c.Paths.LogDir, defaultLogDir},
		{"paths.output_dir", &c.Paths.OutputDir, defaultOutputDir},
		{"paths.lock_dir", &c.Paths.LockDir, defaultLockDir},
	}
	for _, f := range fields {
		if strings.TrimSpace(*f.value) == "" {
			*f.value = f.fallback
		}
		expanded, err := ExpandPath(strings.TrimSpace(*f.value))
		if err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
		*f.value = expanded
	}
	return nil
}

func (c *Config) normalizeSource() {
	if value, ok := os.LookupEnv("RIPFEED_OPTICAL_DRIVE"); ok && strings.TrimSpace(value) != "" {
		c.Source.OpticalDrive = value
	}
	c.Source.OpticalDrive = strings.TrimSpace(c.Source.OpticalDrive)
	c.Source.DiscManifest = strings.TrimSpace(c.Source.DiscManifest)
	if c.Source.DiscManifest == "" {
		c.Source.DiscManifest = defaultDiscManifest
	}
}

func (c *Config) normalizeReader() {
	if c.Reader.VideoQueue == 0 {
		c.Reader.VideoQueue = defaultVideoQueue
	}
	if c.Reader.AudioQueue == 0 {
		c.Reader.AudioQueue = defaultAudioQueue
	}
	if c.Reader.SubtitleQueue == 0 {
		c.Reader.SubtitleQueue = defaultSubtitleQueue
	}
	if c.Reader.PollIntervalMS == 0 {
		c.Reader.PollIntervalMS = defaultPollIntervalMS
	}
	c.Reader.LogLevel = strings.ToLower(strings.TrimSpace(c.Reader.LogLevel))
	if c.Scan.ProgressBucket == 0 {
		c.Scan.ProgressBucket = defaultProgressBucket
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
