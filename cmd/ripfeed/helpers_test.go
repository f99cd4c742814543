package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"ripfeed/internal/config"
	"ripfeed/internal/es"
	"ripfeed/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	base := testsupport.BaseDir(cfg)
	t.Setenv("HOME", filepath.Join(base, "home"))

	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	configPath := filepath.Join(base, "config.toml")
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// writeDiscJob creates a two-chapter disc image with one audio and two
// subtitle tracks, and a job file describing it.
func writeDiscJob(t *testing.T, env *cliTestEnv) string {
	t.Helper()

	ac3 := es.Substream(0x80)
	sub0 := es.Substream(0x20)
	sub1 := es.Substream(0x21)
	testsupport.WriteDiscImage(t, filepath.Join(env.baseDir, "disc"), testsupport.DiscTitle{
		Index: 1,
		Chapters: [][]es.Packet{
			{
				{ID: es.VideoMPEG, PTS: 0, Data: []byte("VV")},
				{ID: ac3, PTS: 0, Data: []byte("AA")},
				{ID: sub0, PTS: es.NoPTS, Data: []byte("S0")},
			},
			{
				{ID: sub0, PTS: es.NoPTS, Data: []byte("s0")},
				{ID: es.VideoMPEG, PTS: 3003, Data: []byte("vv")},
				{ID: sub1, PTS: es.NoPTS, Data: []byte("S1")},
			},
		},
	})

	job := `
[title]
index = 1
locator = "disc"

[[title.chapters]]
ordinal = 1
index = 1

[[title.chapters]]
ordinal = 2
index = 2

[[title.audio]]
id = 0x80BD
language = "eng"
codec = "ac3"

[[title.subtitles]]
id = 0x20BD
language = "eng"

[[title.subtitles]]
id = 0x21BD
language = "fra"
`
	path := filepath.Join(env.baseDir, "job.toml")
	if err := os.WriteFile(path, []byte(job), 0o644); err != nil {
		t.Fatalf("write job: %v", err)
	}
	return path
}

func writeJobFile(t *testing.T, dir, locator string) string {
	t.Helper()
	path := filepath.Join(dir, "missing-job.toml")
	content := fmt.Sprintf("[title]\nlocator = %q\n", locator)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write job: %v", err)
	}
	return path
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
