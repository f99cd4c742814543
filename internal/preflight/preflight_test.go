package preflight

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ripfeed/internal/config"
)

func TestCheckDirectoryAccess(t *testing.T) {
	base := t.TempDir()
	file := filepath.Join(base, "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		path   string
		pass   bool
		detail string
	}{
		{name: "writable dir", path: base, pass: true},
		{name: "missing", path: filepath.Join(base, "nope"), detail: "nope"},
		{name: "regular file", path: file, detail: "not a directory"},
		{name: "unset", path: "", detail: "not configured"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CheckDirectoryAccess("Dir", tt.path)
			if result.Passed != tt.pass {
				t.Fatalf("Passed = %v, want %v (%s)", result.Passed, tt.pass, result.Detail)
			}
			if !strings.Contains(result.Detail, tt.detail) {
				t.Fatalf("detail %q does not mention %q", result.Detail, tt.detail)
			}
		})
	}
}

func TestCheckFreeSpace(t *testing.T) {
	dir := t.TempDir()
	if r := CheckFreeSpace("Free", dir, 1); !r.Passed {
		t.Fatalf("expected pass for 1 byte, got %s", r.Detail)
	}
	if r := CheckFreeSpace("Free", dir, 1<<62); r.Passed || !strings.Contains(r.Detail, "need") {
		t.Fatalf("expected failure for 4 EiB, got %+v", r)
	}
	if r := CheckFreeSpace("Free", filepath.Join(dir, "missing"), 1); r.Passed {
		t.Fatal("expected failure for missing path")
	}
}

func TestCheckSourceReadable(t *testing.T) {
	base := t.TempDir()

	image := filepath.Join(base, "image")
	if err := os.MkdirAll(image, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(image, "disc.toml"), []byte("label = \"x\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	bare := filepath.Join(base, "bare")
	if err := os.MkdirAll(bare, 0o755); err != nil {
		t.Fatal(err)
	}
	stream := filepath.Join(base, "feed.ts")
	if err := os.WriteFile(stream, []byte{0x47}, 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		locator  string
		manifest string
		pass     bool
		detail   string
	}{
		{name: "disc image", locator: image, pass: true, detail: "disc image"},
		{name: "custom manifest missing", locator: image, manifest: "other.toml", detail: "other.toml"},
		{name: "directory without manifest", locator: bare, detail: "disc.toml"},
		{name: "stream file", locator: stream, pass: true, detail: "stream file"},
		{name: "missing", locator: filepath.Join(base, "missing"), detail: "does not exist"},
		{name: "empty", locator: "  ", detail: "no locator"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CheckSourceReadable("Source", tt.locator, tt.manifest)
			if result.Passed != tt.pass {
				t.Fatalf("Passed = %v, want %v (%s)", result.Passed, tt.pass, result.Detail)
			}
			if !strings.Contains(result.Detail, tt.detail) {
				t.Fatalf("detail %q does not mention %q", result.Detail, tt.detail)
			}
		})
	}
}

func TestRunAll(t *testing.T) {
	if RunAll(nil) != nil {
		t.Fatal("expected nil results for nil config")
	}

	base := t.TempDir()
	cfg := &config.Config{}
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.OutputDir = filepath.Join(base, "out")
	cfg.Source.OpticalDrive = filepath.Join(base, "sr0")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	results := RunAll(cfg)
	if len(results) != 4 {
		t.Fatalf("expected 4 results (no lock dir), got %d", len(results))
	}
	failed := Failed(results)
	if len(failed) != 1 || failed[0].Name != "Optical drive" {
		t.Fatalf("expected only the optical drive to fail, got %#v", failed)
	}

	cfg.Paths.MinFreeMB = 1
	results = RunAll(cfg)
	if len(results) != 5 || results[3].Name != "Output free space" || !results[3].Passed {
		t.Fatalf("expected a passing free space check after the output dir, got %#v", results)
	}
}
