package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Paths contains directory configuration.
type Paths struct {
	StateDir  string `toml:"state_dir"`
	LogDir    string `toml:"log_dir"`
	OutputDir string `toml:"output_dir"`
	LockDir   string `toml:"lock_dir"`
	// MinFreeMB is the free space `ripfeed check` requires on OutputDir; zero disables the check.
	MinFreeMB int `toml:"min_free_mb"`
}

// Source contains settings for opening titles.
type Source struct {
	OpticalDrive string `toml:"optical_drive"`
	DiscManifest string `toml:"disc_manifest"`
}

// Reader contains queue sizing and flow-control settings.
type Reader struct {
	VideoQueue     int    `toml:"video_queue"`
	AudioQueue     int    `toml:"audio_queue"`
	SubtitleQueue  int    `toml:"subtitle_queue"`
	PollIntervalMS int    `toml:"poll_interval_ms"`
	LogLevel       string `toml:"log_level"`
}

// Scan contains settings for scan passes.
type Scan struct {
	ProgressBucket float64 `toml:"progress_bucket"`
	Persist        bool    `toml:"persist"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
	JobLogs       bool   `toml:"job_logs"`
}

// Config encapsulates all configuration values for ripfeed.
//
// Configuration sections by subsystem:
//   - Paths: state, log, output and lock directories
//   - Source: optical drive device and disc image manifest name
//   - Reader: per-kind queue capacities and backpressure polling
//   - Scan: progress sampling and result persistence
//   - Logging: log format, level, retention and per-job log files
type Config struct {
	Paths   Paths   `toml:"paths"`
	Source  Source  `toml:"source"`
	Reader  Reader  `toml:"reader"`
	Scan    Scan    `toml:"scan"`
	Logging Logging `toml:"logging"`
}

// EnsureDirectories creates the directories the reader and pipeline write to.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir, c.Paths.OutputDir, c.Paths.LockDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// PollInterval returns the backpressure polling interval.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Reader.PollIntervalMS) * time.Millisecond
}

// ScanDBPath returns the location of the scan result database.
func (c *Config) ScanDBPath() string {
	return filepath.Join(c.Paths.StateDir, "scans.db")
}

// JobLogPath returns the per-job log file for jobID.
func (c *Config) JobLogPath(jobID string) string {
	return filepath.Join(c.Paths.LogDir, "jobs", jobID+".log")
}
