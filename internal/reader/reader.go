package reader

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"ripfeed/internal/demux"
	"ripfeed/internal/es"
	"ripfeed/internal/job"
	"ripfeed/internal/logging"
	"ripfeed/internal/source"
)

// DefaultPollInterval is the wait between fullness checks for queues that
// cannot block on a push.
const DefaultPollInterval = 50 * time.Millisecond

// State is a step of the reader lifecycle.
type State int32

const (
	StateInit State = iota
	StateOpening
	StateRangeResolved
	StateRunning
	StateStopping
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateOpening:
		return "opening"
	case StateRangeResolved:
		return "range_resolved"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// ExitReason records why a run ended.
type ExitReason string

const (
	ExitCancelled   ExitReason = "cancelled"
	ExitJobDone     ExitReason = "job_done"
	ExitEndOfTitle  ExitReason = "end_of_title"
	ExitEndOfRange  ExitReason = "end_of_range"
	ExitEndOfSource ExitReason = "end_of_source"
	ExitOpenFailed  ExitReason = "open_failed"
	ExitStartFailed ExitReason = "start_failed"
)

// Stats summarizes a finished run.
type Stats struct {
	SourceKind source.Kind
	Range      ChapterRange
	UnitsRead  uint64
	Routed     uint64
	Discarded  uint64
	// Dropped counts the packet refused on shutdown plus the rest of its
	// unit that would have been queued. Unrouted packets are not included.
	Dropped     uint64
	DemuxErrors uint64
	// LastChapter is the last on-media chapter observed.
	LastChapter int
	Exit        ExitReason
}

// Demuxer splits one container unit into elementary packets.
type Demuxer interface {
	Demux(unit []byte) ([]*es.Packet, error)
}

// Option customizes a Reader.
type Option func(*Reader)

// WithOpener sets how the title's locator is opened.
func WithOpener(o source.Opener) Option {
	return func(r *Reader) { r.opener = o }
}

// WithDemuxer replaces the program-stream demuxer.
func WithDemuxer(d Demuxer) Option {
	return func(r *Reader) { r.demuxer = d }
}

// WithLogger sets the base logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Reader) { r.logger = l }
}

// WithPollInterval sets the backpressure polling interval.
func WithPollInterval(d time.Duration) Option {
	return func(r *Reader) {
		if d > 0 {
			r.pollInterval = d
		}
	}
}

// Reader is the single producer for a job's queues. A Reader runs once.
type Reader struct {
	job          *job.Job
	opener       source.Opener
	demuxer      Demuxer
	logger       *slog.Logger
	pollInterval time.Duration

	state    atomic.Int32
	sequence uint64
	stats    Stats
}

// New builds a reader for j. Without WithOpener the filesystem opener is used.
func New(j *job.Job, opts ...Option) *Reader {
	r := &Reader{
		job:          j,
		opener:       source.FileOpener{},
		demuxer:      demux.NewPS(),
		pollInterval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.NewComponentLogger(r.logger, "reader").With(
		logging.String(logging.FieldJobID, j.ID),
		logging.Int(logging.FieldTitleIndex, j.Title.Index),
	)
	return r
}

// State returns the current lifecycle step. Safe for concurrent use.
func (r *Reader) State() State {
	return State(r.state.Load())
}

// Stats returns the run summary. Call it after Run returns.
func (r *Reader) Stats() Stats {
	return r.stats
}

func (r *Reader) setState(s State) {
	r.state.Store(int32(s))
	r.logger.Debug("reader state", logging.String("state", s.String()))
}

// Run executes the reader until the title, the chapter range or the source
// is exhausted, ctx is cancelled, or the job is marked done. Outcomes are
// observed through the queues, the subtitle hit counters and Stats.
func (r *Reader) Run(ctx context.Context) {
	defer func() {
		r.logger.Info("done",
			logging.String("exit", string(r.stats.Exit)),
			logging.Uint64("units", r.stats.UnitsRead),
			logging.Uint64("routed", r.stats.Routed),
			logging.Uint64("dropped", r.stats.Dropped),
		)
	}()

	// Job completion ends waits the same way cancellation does.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-r.job.DoneCh():
			cancel()
		case <-ctx.Done():
		}
	}()

	r.setState(StateOpening)
	src, err := source.Open(r.opener, r.job.Title.Locator)
	if err != nil {
		logging.ErrorWithContext(r.logger, "source open failed", "source_open_failed",
			logging.String("locator", r.job.Title.Locator),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the locator is a disc image directory or a transport stream file"),
		)
		r.finish(ExitOpenFailed)
		return
	}
	r.stats.SourceKind = src.Kind()
	logger := r.logger.With(logging.String(logging.FieldSourceKind, string(src.Kind())))

	rng := ChapterRange{Start: 1, End: 1}
	switch s := src.(type) {
	case source.Disc:
		rng, err = ResolveRange(r.job.Title.Chapters, r.job.ChapterStart, r.job.ChapterEnd)
		if err == nil && !s.Start(r.job.Title.Index, rng.Start) {
			err = source.ErrStart
		}
		if err != nil {
			logging.ErrorWithContext(logger, "disc start failed", "disc_start_failed",
				logging.Int("chapter_start", r.job.ChapterStart),
				logging.Int("chapter_end", r.job.ChapterEnd),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check the job chapter range against the disc"),
			)
			r.closeSource(logger, src)
			r.finish(ExitStartFailed)
			return
		}
		r.setState(StateRangeResolved)
	case source.Stream:
		if len(r.job.Audios) > 0 {
			s.SelectAudio(r.job.Audios[0])
		}
	}
	r.stats.Range = rng
	logger.Info("reading",
		logging.String("locator", r.job.Title.Locator),
		logging.Int("media_start", rng.Start),
		logging.Int("media_end", rng.End),
		logging.Bool("scan", r.job.IndepthScan),
	)

	exit := r.loop(ctx, logger, src, rng)

	r.setState(StateStopping)
	if d, ok := src.(source.Disc); ok {
		d.Stop()
	}
	r.closeSource(logger, src)
	r.finish(exit)
}

func (r *Reader) loop(ctx context.Context, logger *slog.Logger, src source.Source, rng ChapterRange) ExitReason {
	r.setState(StateRunning)
	dispatcher := NewDispatcher(r.job)
	unit := &source.Unit{}
	defer unit.Reset()

	for {
		if reason, stopped := r.stopped(ctx); stopped {
			return reason
		}

		chapter := src.CurrentChapter()
		if chapter < 0 {
			logger.Info("end of the title reached")
			return ExitEndOfTitle
		}
		r.stats.LastChapter = chapter
		if chapter > rng.End {
			logger.Info("end of chapter range reached",
				logging.Int("chapter_end", r.job.ChapterEnd),
				logging.Int("media_end", rng.End),
				logging.Int("media_chapter", chapter),
			)
			return ExitEndOfRange
		}

		if !src.ReadUnit(unit) {
			return ExitEndOfSource
		}
		r.stats.UnitsRead++

		if r.job.IndepthScan {
			r.reportProgress(chapter)
		}

		packets, err := r.demuxer.Demux(unit.Data)
		if err != nil {
			r.stats.DemuxErrors++
			logger.Debug("demux error", logging.Error(err), logging.Uint64("unit", r.stats.UnitsRead))
		}

		for i, pkt := range packets {
			route := dispatcher.Route(pkt.ID)
			if route.Queue == nil {
				r.stats.Discarded++
				continue
			}
			if !r.push(ctx, route.Queue, pkt) {
				r.stats.Dropped++
				for _, rest := range packets[i+1:] {
					if dispatcher.Queued(rest.ID) {
						r.stats.Dropped++
					}
				}
				if reason, stopped := r.stopped(ctx); stopped {
					return reason
				}
				return ExitCancelled
			}
			r.stats.Routed++
		}
	}
}

// stopped reports whether the job is done or the run was cancelled.
func (r *Reader) stopped(ctx context.Context) (ExitReason, bool) {
	if r.job.IsDone() {
		return ExitJobDone, true
	}
	if ctx.Err() != nil {
		return ExitCancelled, true
	}
	return "", false
}

func (r *Reader) closeSource(logger *slog.Logger, src source.Source) {
	if err := src.Close(); err != nil {
		logging.WarnWithContext(logger, "source close failed", "source_close_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "a stale disc lock may need removing"),
			logging.String(logging.FieldImpact, "the next open of this disc may fail"),
		)
	}
}

func (r *Reader) finish(exit ExitReason) {
	r.stats.Exit = exit
	r.setState(StateClosed)
}
