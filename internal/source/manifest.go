package source

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// SectorSize is the size of one disc sector and of one disc container unit.
const SectorSize = 2048

// DefaultManifestName is the manifest file looked up inside a disc image.
const DefaultManifestName = "disc.toml"

// Manifest describes a disc image directory.
type Manifest struct {
	Label  string          `toml:"label"`
	Titles []ManifestTitle `toml:"titles"`
}

// ManifestTitle maps one title to its program-stream file and the start
// sector of every on-media chapter.
type ManifestTitle struct {
	Index    int     `toml:"index"`
	File     string  `toml:"file"`
	Chapters []int64 `toml:"chapters"`
}

// LoadManifest reads and validates the manifest at path.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %q: %w", path, err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("manifest %q: %w", path, err)
	}
	return &m, nil
}

// Validate checks title uniqueness and chapter ordering.
func (m *Manifest) Validate() error {
	if len(m.Titles) == 0 {
		return errors.New("no titles")
	}
	seen := make(map[int]bool, len(m.Titles))
	for _, t := range m.Titles {
		if t.Index < 1 {
			return fmt.Errorf("title index %d must be positive", t.Index)
		}
		if seen[t.Index] {
			return fmt.Errorf("duplicate title index %d", t.Index)
		}
		seen[t.Index] = true
		if t.File == "" || filepath.IsAbs(t.File) {
			return fmt.Errorf("title %d: file must be a relative path", t.Index)
		}
		if len(t.Chapters) == 0 {
			return fmt.Errorf("title %d: no chapters", t.Index)
		}
		for i, start := range t.Chapters {
			if start < 0 || (i > 0 && start <= t.Chapters[i-1]) {
				return fmt.Errorf("title %d: chapter start sectors must be ascending", t.Index)
			}
		}
	}
	return nil
}

// Title returns the title with the given index.
func (m *Manifest) Title(index int) (*ManifestTitle, bool) {
	for i := range m.Titles {
		if m.Titles[i].Index == index {
			return &m.Titles[i], true
		}
	}
	return nil, false
}

// WriteManifest encodes m as TOML into path.
func WriteManifest(path string, m *Manifest) error {
	data, err := toml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
