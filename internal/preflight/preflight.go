package preflight

import (
	"strings"

	"ripfeed/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every check that applies to cfg.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir),
	}
	if cfg.Paths.MinFreeMB > 0 {
		results = append(results, CheckFreeSpace("Output free space", cfg.Paths.OutputDir, uint64(cfg.Paths.MinFreeMB)<<20))
	}

	// Locking is disabled when no lock directory is configured.
	if cfg.Paths.LockDir != "" {
		results = append(results, CheckDirectoryAccess("Lock directory", cfg.Paths.LockDir))
	}

	if drive := strings.TrimSpace(cfg.Source.OpticalDrive); drive != "" {
		results = append(results, CheckSourceReadable("Optical drive", drive, cfg.Source.DiscManifest))
	}

	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
