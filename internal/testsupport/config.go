package testsupport

import (
	"path/filepath"
	"testing"

	"ripfeed/internal/config"
)

// ConfigOption adjusts a test configuration before its directories are created.
type ConfigOption func(*config.Config)

// NewConfig returns defaults rooted in a fresh temp directory, with fast
// backpressure polling and log retention disabled. Directories exist on return.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths = config.Paths{
		StateDir:  filepath.Join(base, "state"),
		LogDir:    filepath.Join(base, "logs"),
		OutputDir: filepath.Join(base, "output"),
		LockDir:   filepath.Join(base, "locks"),
	}
	cfg.Reader.PollIntervalMS = 1
	cfg.Logging.RetentionDays = 0

	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	return &cfg
}

// WithOpticalDrive points the config at a fake drive path.
func WithOpticalDrive(path string) ConfigOption {
	return func(c *config.Config) { c.Source.OpticalDrive = path }
}

// WithQueueCapacity sets every reader queue to capacity.
func WithQueueCapacity(capacity int) ConfigOption {
	return func(c *config.Config) {
		c.Reader.VideoQueue, c.Reader.AudioQueue, c.Reader.SubtitleQueue = capacity, capacity, capacity
	}
}

// WithoutJobLogs disables per-job log files.
func WithoutJobLogs() ConfigOption {
	return func(c *config.Config) { c.Logging.JobLogs = false }
}

// BaseDir returns the temp directory holding every path of cfg.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
