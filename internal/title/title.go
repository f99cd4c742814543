package title

import (
	"fmt"
	"sync/atomic"
	"time"

	"ripfeed/internal/es"
)

// Queue is the producer side of a bounded packet queue.
type Queue interface {
	IsFull() bool
	Push(*es.Packet)
}

// Title describes one playable title on a disc or one transport stream.
type Title struct {
	// Index is the title number on the medium (1-based).
	Index int
	// Locator names the medium: a disc image directory or a stream file.
	Locator string
	// VideoID is the primary video stream identifier.
	VideoID   es.ID
	Chapters  []Chapter
	Audios    []*AudioTrack
	Subtitles []*SubtitleTrack
	// VideoQueue receives the primary video packets.
	VideoQueue Queue
}

// Chapter maps a logical chapter ordinal to the on-media chapter holding it.
// Upstream chapter merging may map several ordinals to the same Index.
type Chapter struct {
	Ordinal  int
	Index    int
	Name     string
	Duration time.Duration
}

// AudioTrack is one selectable audio elementary stream.
type AudioTrack struct {
	ID       es.ID
	Language string
	Codec    string
	Queue    Queue
}

// SubtitleTrack is one subtitle elementary stream.
type SubtitleTrack struct {
	ID       es.ID
	Language string
	Queue    Queue

	hits atomic.Int64
}

// Hit records one packet seen for this track during a scan.
func (s *SubtitleTrack) Hit() {
	s.hits.Add(1)
}

// Hits returns the number of packets counted so far.
func (s *SubtitleTrack) Hits() int64 {
	return s.hits.Load()
}

// ResetHits clears the counter before a new scan.
func (s *SubtitleTrack) ResetHits() {
	s.hits.Store(0)
}

// Chapter returns the chapter with the given 1-based ordinal.
func (t *Title) Chapter(ordinal int) (Chapter, error) {
	if ordinal < 1 || ordinal > len(t.Chapters) {
		return Chapter{}, fmt.Errorf("chapter %d out of range 1..%d", ordinal, len(t.Chapters))
	}
	return t.Chapters[ordinal-1], nil
}

// Audio looks up an audio track by stream identifier.
func (t *Title) Audio(id es.ID) (*AudioTrack, bool) {
	for _, a := range t.Audios {
		if a.ID == id {
			return a, true
		}
	}
	return nil, false
}

// Duration sums the chapter durations.
func (t *Title) Duration() time.Duration {
	var total time.Duration
	for _, c := range t.Chapters {
		total += c.Duration
	}
	return total
}
