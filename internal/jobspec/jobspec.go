package jobspec

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"ripfeed/internal/es"
	"ripfeed/internal/job"
	"ripfeed/internal/title"
)

// File is the on-disk layout of a job definition.
type File struct {
	Title TitleSpec `toml:"title" yaml:"title"`
	Job   JobSpec   `toml:"job" yaml:"job"`
}

// TitleSpec describes the medium.
type TitleSpec struct {
	Index     int           `toml:"index" yaml:"index"`
	Locator   string        `toml:"locator" yaml:"locator"`
	VideoID   uint32        `toml:"video_id" yaml:"video_id"`
	Chapters  []ChapterSpec `toml:"chapters" yaml:"chapters"`
	Audio     []TrackSpec   `toml:"audio" yaml:"audio"`
	Subtitles []TrackSpec   `toml:"subtitles" yaml:"subtitles"`
}

// ChapterSpec is one logical chapter and the on-media chapter holding it.
type ChapterSpec struct {
	Ordinal  int    `toml:"ordinal" yaml:"ordinal"`
	Index    int    `toml:"index" yaml:"index"`
	Name     string `toml:"name" yaml:"name"`
	Duration string `toml:"duration" yaml:"duration"`
}

// TrackSpec is one audio or subtitle stream.
type TrackSpec struct {
	ID       uint32 `toml:"id" yaml:"id"`
	Language string `toml:"language" yaml:"language"`
	Codec    string `toml:"codec" yaml:"codec"`
}

// JobSpec holds the per-run settings.
type JobSpec struct {
	ChapterStart  int      `toml:"chapter_start" yaml:"chapter_start"`
	ChapterEnd    int      `toml:"chapter_end" yaml:"chapter_end"`
	Audios        []uint32 `toml:"audios" yaml:"audios"`
	IndepthScan   bool     `toml:"indepth_scan" yaml:"indepth_scan"`
	SubtitleForce bool     `toml:"subtitle_force" yaml:"subtitle_force"`
}

// Load reads a job file. Files ending in .yaml or .yml are decoded as YAML,
// everything else as TOML. Relative locators resolve against the file's
// directory.
func Load(path string) (*job.Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read job file: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve job file path: %w", err)
	}
	parse := Parse
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parse = ParseYAML
	}
	j, err := parse(data, filepath.Dir(abs))
	if err != nil {
		return nil, fmt.Errorf("job file %s: %w", path, err)
	}
	return j, nil
}

// Parse decodes a job definition. baseDir anchors relative locators.
func Parse(data []byte, baseDir string) (*job.Job, error) {
	var f File
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return f.Build(baseDir)
}

// ParseYAML decodes a YAML job definition with the same layout as the TOML
// form. Unknown keys are rejected.
func ParseYAML(data []byte, baseDir string) (*job.Job, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return f.Build(baseDir)
}

// Build validates the definition and turns it into a job.
func (f *File) Build(baseDir string) (*job.Job, error) {
	t, err := f.Title.build(baseDir)
	if err != nil {
		return nil, err
	}

	j := job.New(t)
	if f.Job.ChapterStart != 0 {
		j.ChapterStart = f.Job.ChapterStart
	}
	if f.Job.ChapterEnd != 0 {
		j.ChapterEnd = f.Job.ChapterEnd
	}
	j.IndepthScan = f.Job.IndepthScan
	j.SubtitleForce = f.Job.SubtitleForce
	if len(f.Job.Audios) > 0 {
		j.Audios = make([]es.ID, 0, len(f.Job.Audios))
		for _, id := range f.Job.Audios {
			j.Audios = append(j.Audios, es.ID(id))
		}
	}
	if err := j.Validate(); err != nil {
		return nil, err
	}
	return j, nil
}

func (s *TitleSpec) build(baseDir string) (*title.Title, error) {
	locator := strings.TrimSpace(s.Locator)
	if locator == "" {
		return nil, errors.New("title.locator is required")
	}
	if !filepath.IsAbs(locator) && baseDir != "" {
		locator = filepath.Join(baseDir, locator)
	}

	t := &title.Title{
		Index:   s.Index,
		Locator: locator,
		VideoID: es.ID(s.VideoID),
	}
	if t.Index == 0 {
		t.Index = 1
	}
	if t.Index < 0 {
		return nil, fmt.Errorf("title.index %d must be positive", s.Index)
	}
	if t.VideoID == 0 {
		t.VideoID = es.VideoMPEG
	}

	chapters, err := buildChapters(s.Chapters)
	if err != nil {
		return nil, err
	}
	t.Chapters = chapters

	seen := map[es.ID]string{t.VideoID: "video"}
	for i, a := range s.Audio {
		id := es.ID(a.ID)
		if err := claim(seen, id, fmt.Sprintf("title.audio[%d]", i)); err != nil {
			return nil, err
		}
		t.Audios = append(t.Audios, &title.AudioTrack{ID: id, Language: a.Language, Codec: a.Codec})
	}
	for i, sub := range s.Subtitles {
		id := es.ID(sub.ID)
		if err := claim(seen, id, fmt.Sprintf("title.subtitles[%d]", i)); err != nil {
			return nil, err
		}
		t.Subtitles = append(t.Subtitles, &title.SubtitleTrack{ID: id, Language: sub.Language})
	}
	return t, nil
}

func claim(seen map[es.ID]string, id es.ID, field string) error {
	if id == 0 {
		return fmt.Errorf("%s: id is required", field)
	}
	if prev, ok := seen[id]; ok {
		return fmt.Errorf("%s: id %s already used by %s", field, id, prev)
	}
	seen[id] = field
	return nil
}

// buildChapters checks that ordinals run 1..n and on-media indices never go
// backwards. Without chapters the title is a single chapter.
func buildChapters(specs []ChapterSpec) ([]title.Chapter, error) {
	if len(specs) == 0 {
		return []title.Chapter{{Ordinal: 1, Index: 1}}, nil
	}
	chapters := make([]title.Chapter, 0, len(specs))
	for i, c := range specs {
		ordinal := c.Ordinal
		if ordinal == 0 {
			ordinal = i + 1
		}
		if ordinal != i+1 {
			return nil, fmt.Errorf("title.chapters[%d]: ordinal %d out of sequence", i, c.Ordinal)
		}
		index := c.Index
		if index == 0 {
			index = ordinal
		}
		if index < 1 {
			return nil, fmt.Errorf("title.chapters[%d]: index must be positive", i)
		}
		if i > 0 && index < chapters[i-1].Index {
			return nil, fmt.Errorf("title.chapters[%d]: index %d precedes previous chapter", i, index)
		}
		var duration time.Duration
		if c.Duration != "" {
			d, err := time.ParseDuration(c.Duration)
			if err != nil {
				return nil, fmt.Errorf("title.chapters[%d]: duration: %w", i, err)
			}
			duration = d
		}
		chapters = append(chapters, title.Chapter{Ordinal: ordinal, Index: index, Name: c.Name, Duration: duration})
	}
	return chapters, nil
}

// Marshal encodes f as TOML.
func (f *File) Marshal() ([]byte, error) {
	return toml.Marshal(f)
}
