package source

import (
	"log/slog"

	"ripfeed/internal/logging"
)

// FileOpener opens disc image directories and transport stream files.
type FileOpener struct {
	// ManifestName is the manifest file inside a disc image directory.
	ManifestName string
	// LockDir holds per-disc lock files. Empty disables locking.
	LockDir string
	Logger  *slog.Logger
}

// OpenDisc opens locator as a disc image.
func (o FileOpener) OpenDisc(locator string) (Disc, error) {
	name := o.ManifestName
	if name == "" {
		name = DefaultManifestName
	}
	d, err := openImageDisc(locator, name, o.LockDir, o.logger())
	if err != nil {
		return nil, err
	}
	return d, nil
}

// OpenStream opens locator as a transport stream file.
func (o FileOpener) OpenStream(locator string) (Stream, error) {
	s, err := openTSStream(locator, o.logger())
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (o FileOpener) logger() *slog.Logger {
	return logging.NewComponentLogger(o.Logger, "source")
}
