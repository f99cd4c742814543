package job

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"ripfeed/internal/es"
	"ripfeed/internal/jobstate"
	"ripfeed/internal/title"
)

// Job is owned by the pipeline; workers hold a non-owning reference.
type Job struct {
	ID    string
	Title *title.Title

	// ChapterStart and ChapterEnd are logical, 1-based and inclusive.
	ChapterStart int
	ChapterEnd   int

	// IndepthScan selects the reduced-work scan pass.
	IndepthScan bool
	// SubtitleForce routes scanned subtitle packets so forced subtitles can
	// be detected downstream.
	SubtitleForce bool
	// Audios lists the selected audio stream per output audio track.
	Audios []es.ID

	State jobstate.Sink

	done     atomic.Bool
	doneCh   chan struct{}
	initOnce sync.Once
	doneOnce sync.Once
}

// New creates a job over t covering every chapter, with the title's first
// audio track selected when it has any.
func New(t *title.Title) *Job {
	j := &Job{
		ID:           uuid.NewString(),
		Title:        t,
		ChapterStart: 1,
		ChapterEnd:   len(t.Chapters),
		doneCh:       make(chan struct{}),
	}
	if len(t.Audios) > 0 {
		j.Audios = []es.ID{t.Audios[0].ID}
	}
	return j
}

// MarkDone flags the job as complete. Safe to call more than once.
func (j *Job) MarkDone() {
	j.initDone()
	j.done.Store(true)
	j.doneOnce.Do(func() { close(j.doneCh) })
}

// IsDone reports whether MarkDone was called.
func (j *Job) IsDone() bool {
	return j.done.Load()
}

// DoneCh is closed by MarkDone.
func (j *Job) DoneCh() <-chan struct{} {
	j.initDone()
	return j.doneCh
}

func (j *Job) initDone() {
	j.initOnce.Do(func() {
		if j.doneCh == nil {
			j.doneCh = make(chan struct{})
		}
	})
}

// SetState forwards s to the job's sink when one is attached.
func (j *Job) SetState(s jobstate.State) {
	if j.State != nil {
		j.State.SetState(s)
	}
}

// Validate checks the chapter range and audio selection against the title.
func (j *Job) Validate() error {
	if j.Title == nil {
		return errors.New("job has no title")
	}
	chapters := len(j.Title.Chapters)
	if chapters == 0 {
		return errors.New("title has no chapters")
	}
	if j.ChapterStart < 1 || j.ChapterStart > chapters {
		return fmt.Errorf("chapter_start %d out of range 1..%d", j.ChapterStart, chapters)
	}
	if j.ChapterEnd < j.ChapterStart || j.ChapterEnd > chapters {
		return fmt.Errorf("chapter_end %d out of range %d..%d", j.ChapterEnd, j.ChapterStart, chapters)
	}
	for _, id := range j.Audios {
		if _, ok := j.Title.Audio(id); !ok {
			return fmt.Errorf("selected audio %s is not a title track", id)
		}
	}
	return nil
}

// SelectedAudios returns the title's audio tracks named in Audios, in
// selection order. Ids without a title track and repeats are skipped.
func (j *Job) SelectedAudios() []*title.AudioTrack {
	if j.Title == nil {
		return nil
	}
	var out []*title.AudioTrack
	for _, id := range j.Audios {
		a, ok := j.Title.Audio(id)
		if !ok || slices.Contains(out, a) {
			continue
		}
		out = append(out, a)
	}
	return out
}
