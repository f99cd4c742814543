package source

import (
	"errors"
	"fmt"

	"ripfeed/internal/es"
)

// Kind names a source variant.
type Kind string

const (
	KindDisc   Kind = "disc"
	KindStream Kind = "stream"
)

var (
	// ErrNotDisc reports a locator that is not a readable disc image.
	ErrNotDisc = errors.New("source: not a disc")
	// ErrNotStream reports a locator that is not a readable stream.
	ErrNotStream = errors.New("source: not a stream")
	// ErrOpen reports that neither variant could open the locator.
	ErrOpen = errors.New("source: open failed")
	// ErrStart reports that a disc could not be positioned at a chapter.
	ErrStart = errors.New("source: start failed")
)

// Unit is the reusable scratch buffer filled by ReadUnit.
type Unit struct {
	Data []byte
}

// Reset empties the unit while keeping its storage.
func (u *Unit) Reset() {
	u.Data = u.Data[:0]
}

// grow returns u.Data resized to n bytes, reallocating only when needed.
func (u *Unit) grow(n int) []byte {
	if cap(u.Data) < n {
		u.Data = make([]byte, n)
	}
	u.Data = u.Data[:n]
	return u.Data
}

// Source is the capability set shared by both variants.
type Source interface {
	Kind() Kind
	// CurrentChapter returns the on-media chapter of the next unit, or a
	// negative value once the end of the title has been reached.
	CurrentChapter() int
	// ReadUnit fills u with one container unit. False signals end of source.
	ReadUnit(u *Unit) bool
	Close() error
}

// Disc is a chapter-addressable source.
type Disc interface {
	Source
	// Start positions the disc at the given on-media chapter of a title.
	// Chapter values below 1 start at the title's first chapter.
	Start(titleIndex, chapter int) bool
	Stop()
}

// Stream is a linear source with a single logical chapter.
type Stream interface {
	Source
	// SelectAudio restricts demultiplexing to one audio stream.
	SelectAudio(id es.ID)
}

// Opener opens locators as either variant.
type Opener interface {
	OpenDisc(locator string) (Disc, error)
	OpenStream(locator string) (Stream, error)
}

// Open tries the disc variant first and the stream variant second. The
// returned Source is a Disc or a Stream.
func Open(o Opener, locator string) (Source, error) {
	disc, discErr := o.OpenDisc(locator)
	if discErr == nil {
		return disc, nil
	}
	stream, streamErr := o.OpenStream(locator)
	if streamErr == nil {
		return stream, nil
	}
	return nil, fmt.Errorf("%w: %s: %w", ErrOpen, locator, errors.Join(discErr, streamErr))
}
