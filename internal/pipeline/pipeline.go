package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"ripfeed/internal/config"
	"ripfeed/internal/es"
	"ripfeed/internal/fifo"
	"ripfeed/internal/job"
	"ripfeed/internal/jobstate"
	"ripfeed/internal/logging"
	"ripfeed/internal/reader"
	"ripfeed/internal/source"
)

// Options configures one run.
type Options struct {
	Config *config.Config
	Logger *slog.Logger
	// Opener defaults to a source.FileOpener built from Config.
	Opener source.Opener
	// Discard drains every queue instead of writing stream files.
	Discard bool
	// State receives job state events in addition to the progress log.
	State jobstate.Sink
}

// SubtitleHit is the scan count of one subtitle track.
type SubtitleHit struct {
	ID       es.ID
	Language string
	Hits     int64
}

// Result describes a finished run.
type Result struct {
	RunID        string
	JobID        string
	Stats        reader.Stats
	SubtitleHits []SubtitleHit
	Outputs      []Output
	Started      time.Time
	Duration     time.Duration
}

// Failed reports whether the reader never got to read the title.
func (r *Result) Failed() bool {
	return r.Stats.Exit == reader.ExitOpenFailed || r.Stats.Exit == reader.ExitStartFailed
}

type consumer struct {
	queue *fifo.Fifo
	out   Output
}

// Run reads j's title into per-track queues and consumes them. The returned
// error covers consumer and setup failures; reader outcomes are in
// Result.Stats.
func Run(ctx context.Context, j *job.Job, opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, errors.New("pipeline: config is required")
	}
	if err := j.Validate(); err != nil {
		return nil, fmt.Errorf("pipeline: invalid job: %w", err)
	}
	cfg := opts.Config

	res := &Result{RunID: uuid.NewString(), JobID: j.ID, Started: time.Now()}
	logger := logging.WithRunID(logging.NewComponentLogger(opts.Logger, "pipeline"), res.RunID).
		With(logging.String(logging.FieldJobID, j.ID))

	if cfg.Logging.JobLogs {
		handler, closer, err := logging.NewFileHandler(cfg.JobLogPath(j.ID), cfg.Logging.Format, cfg.Logging.Level)
		if err != nil {
			logging.WarnWithContext(logger, "job log unavailable", "job_log_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check log_dir permissions"),
				logging.String(logging.FieldImpact, "this run logs to the main log only"),
			)
		} else {
			defer closer.Close()
			logger = logging.TeeLogger(logger, handler)
		}
	}

	readerLogger := logger
	if cfg.Reader.LogLevel != "" {
		readerLogger = logging.WithLevelOverride(logger, logging.ParseLevel(cfg.Reader.LogLevel))
	}

	opener := opts.Opener
	if opener == nil {
		opener = source.FileOpener{
			ManifestName: cfg.Source.DiscManifest,
			LockDir:      cfg.Paths.LockDir,
			Logger:       readerLogger,
		}
	}

	var sink Sink = FileSink{Dir: filepath.Join(cfg.Paths.OutputDir, j.ID)}
	if opts.Discard {
		sink = DiscardSink{}
	}

	consumers := attachQueues(j, cfg)
	for _, sub := range j.Title.Subtitles {
		sub.ResetHits()
	}
	j.State = jobstate.Multi{opts.State, jobstate.NewLogSink(logger, cfg.Scan.ProgressBucket)}
	j.SetState(jobstate.State{Kind: stateKind(j)})

	logger.Info("run starting",
		logging.String("locator", j.Title.Locator),
		logging.Int(logging.FieldTitleIndex, j.Title.Index),
		logging.Int("chapter_start", j.ChapterStart),
		logging.Int("chapter_end", j.ChapterEnd),
		logging.Bool("scan", j.IndepthScan),
		logging.Int("queues", len(consumers)),
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, c := range consumers {
		g.Go(func() error {
			out, err := sink.Consume(gctx, c.queue)
			c.out = out
			if err != nil {
				return fmt.Errorf("consume %s: %w", c.queue.Name(), err)
			}
			return nil
		})
	}

	rd := reader.New(j,
		reader.WithOpener(opener),
		reader.WithLogger(readerLogger),
		reader.WithPollInterval(cfg.PollInterval()),
	)
	g.Go(func() error {
		defer func() {
			for _, c := range consumers {
				c.queue.Close()
			}
		}()
		rd.Run(gctx)
		return nil
	})

	err := g.Wait()
	j.MarkDone()
	j.SetState(jobstate.State{Kind: jobstate.KindDone})

	res.Duration = time.Since(res.Started)
	res.Stats = rd.Stats()
	for _, sub := range j.Title.Subtitles {
		res.SubtitleHits = append(res.SubtitleHits, SubtitleHit{ID: sub.ID, Language: sub.Language, Hits: sub.Hits()})
	}
	for _, c := range consumers {
		res.Outputs = append(res.Outputs, c.out)
	}

	if err != nil {
		logging.ErrorWithContext(logger, "run failed", "run_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check output_dir free space and permissions"),
		)
		return res, err
	}
	logger.Info("run finished",
		logging.String("exit", string(res.Stats.Exit)),
		logging.Uint64("routed", res.Stats.Routed),
		logging.Duration("duration", res.Duration),
	)
	return res, nil
}

func stateKind(j *job.Job) jobstate.Kind {
	if j.IndepthScan {
		return jobstate.KindScanning
	}
	return jobstate.KindWorking
}

// attachQueues gives the title's video, the selected audio tracks and every
// subtitle track a queue sized from the reader settings. Unselected audio
// tracks get none.
func attachQueues(j *job.Job, cfg *config.Config) []*consumer {
	t := j.Title
	var consumers []*consumer
	add := func(kind es.Kind, id es.ID, capacity int) *fifo.Fifo {
		q := fifo.New(QueueName(kind, id), capacity)
		consumers = append(consumers, &consumer{queue: q})
		return q
	}

	t.VideoQueue = add(es.KindVideo, t.VideoID, cfg.Reader.VideoQueue)
	for _, a := range t.Audios {
		a.Queue = nil
	}
	for _, a := range j.SelectedAudios() {
		a.Queue = add(es.KindAudio, a.ID, cfg.Reader.AudioQueue)
	}
	for _, s := range t.Subtitles {
		s.Queue = add(es.KindSubtitle, s.ID, cfg.Reader.SubtitleQueue)
	}
	return consumers
}
