package source

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"ripfeed/internal/logging"
)

// ImageDisc reads titles from a disc image directory. The image is locked
// from open to close so two readers never share it.
type ImageDisc struct {
	dir      string
	manifest *Manifest
	lock     *flock.Flock
	logger   *slog.Logger

	title   *ManifestTitle
	file    *os.File
	sector  int64
	sectors int64
	closed  bool
}

func openImageDisc(dir, manifestName, lockDir string, logger *slog.Logger) (*ImageDisc, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrNotDisc, dir)
	}
	manifest, err := LoadManifest(filepath.Join(dir, manifestName))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotDisc, err)
	}

	d := &ImageDisc{dir: dir, manifest: manifest, logger: logger}
	if lockDir != "" {
		lockPath := filepath.Join(lockDir, sanitizeLocator(dir)+".lock")
		d.lock = flock.New(lockPath)
		ok, err := d.lock.TryLock()
		if err != nil {
			return nil, fmt.Errorf("%w: acquire lock: %w", ErrNotDisc, err)
		}
		if !ok {
			return nil, fmt.Errorf("%w: disc %s is in use (lock %s)", ErrNotDisc, dir, lockPath)
		}
	}
	return d, nil
}

// Kind reports KindDisc.
func (d *ImageDisc) Kind() Kind { return KindDisc }

// Manifest returns the parsed image manifest.
func (d *ImageDisc) Manifest() *Manifest { return d.manifest }

// Start opens the title's file and seeks to the chapter's first sector.
func (d *ImageDisc) Start(titleIndex, chapter int) bool {
	if d.closed {
		return false
	}
	d.Stop()
	title, ok := d.manifest.Title(titleIndex)
	if !ok {
		logging.WarnWithContext(d.logger, "disc title not found", "disc_start_failed",
			logging.Int(logging.FieldTitleIndex, titleIndex),
			logging.String(logging.FieldErrorHint, "check the title index against the disc manifest"),
			logging.String(logging.FieldImpact, "title cannot be read"),
		)
		return false
	}
	if chapter < 1 {
		chapter = 1
	}
	if chapter > len(title.Chapters) {
		logging.WarnWithContext(d.logger, "disc chapter out of range", "disc_start_failed",
			logging.Int(logging.FieldTitleIndex, titleIndex),
			logging.Int("chapter", chapter),
			logging.Int("chapters", len(title.Chapters)),
			logging.String(logging.FieldErrorHint, "check the job chapter range"),
			logging.String(logging.FieldImpact, "title cannot be read"),
		)
		return false
	}

	f, err := os.Open(filepath.Join(d.dir, title.File))
	if err != nil {
		logging.WarnWithContext(d.logger, "disc title file open failed", "disc_start_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "verify the disc image is complete"),
			logging.String(logging.FieldImpact, "title cannot be read"),
		)
		return false
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return false
	}
	start := title.Chapters[chapter-1]
	if start*SectorSize >= info.Size() {
		_ = f.Close()
		logging.WarnWithContext(d.logger, "disc chapter starts past end of title", "disc_start_failed",
			logging.Int("chapter", chapter),
			logging.Int64("sector", start),
			logging.String(logging.FieldErrorHint, "regenerate the disc manifest"),
			logging.String(logging.FieldImpact, "title cannot be read"),
		)
		return false
	}
	if _, err := f.Seek(start*SectorSize, io.SeekStart); err != nil {
		_ = f.Close()
		return false
	}

	d.title = title
	d.file = f
	d.sector = start
	d.sectors = info.Size() / SectorSize
	d.logger.Debug("disc started",
		logging.Int(logging.FieldTitleIndex, titleIndex),
		logging.Int("chapter", chapter),
		logging.Int64("sector", start),
		logging.Int64("sectors", d.sectors),
	)
	return true
}

// CurrentChapter returns the on-media chapter containing the next sector,
// -1 when no title is started or the title is exhausted.
func (d *ImageDisc) CurrentChapter() int {
	if d.file == nil || d.sector >= d.sectors {
		return -1
	}
	chapter := 1
	for i, start := range d.title.Chapters {
		if start > d.sector {
			break
		}
		chapter = i + 1
	}
	return chapter
}

// ReadUnit reads the next sector.
func (d *ImageDisc) ReadUnit(u *Unit) bool {
	if d.file == nil {
		return false
	}
	buf := u.grow(SectorSize)
	if _, err := io.ReadFull(d.file, buf); err != nil {
		if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
			logging.WarnWithContext(d.logger, "disc read failed", "disc_read_failed",
				logging.Error(err),
				logging.Int64("sector", d.sector),
				logging.String(logging.FieldErrorHint, "check the disc image for damage"),
				logging.String(logging.FieldImpact, "reading stops at this sector"),
			)
		}
		u.Reset()
		return false
	}
	d.sector++
	return true
}

// Stop releases the started title. Calling it again is a no-op.
func (d *ImageDisc) Stop() {
	if d.file == nil {
		return
	}
	_ = d.file.Close()
	d.file = nil
	d.title = nil
}

// Close stops the disc and releases the image lock. Calling it again is a
// no-op.
func (d *ImageDisc) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	d.Stop()
	if d.lock != nil {
		if err := d.lock.Unlock(); err != nil {
			return fmt.Errorf("release disc lock: %w", err)
		}
	}
	return nil
}

// sanitizeLocator turns a locator path into a lock file name.
func sanitizeLocator(locator string) string {
	clean := filepath.Clean(locator)
	var b strings.Builder
	for _, r := range clean {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	name := strings.Trim(b.String(), "_.")
	if name == "" {
		return "disc"
	}
	return name
}
