package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"ripfeed/internal/job"
	"ripfeed/internal/jobspec"
	"ripfeed/internal/language"
	"ripfeed/internal/pipeline"
	"ripfeed/internal/preflight"
	"ripfeed/internal/scanstore"
)

type chapterFlags struct {
	start int
	end   int
}

func (f *chapterFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.start, "start", 0, "First logical chapter (overrides the job file)")
	cmd.Flags().IntVar(&f.end, "end", 0, "Last logical chapter (overrides the job file)")
}

// loadJob reads a job file and applies command-line chapter overrides.
func loadJob(path string, chapters chapterFlags) (*job.Job, error) {
	j, err := jobspec.Load(path)
	if err != nil {
		return nil, err
	}
	if chapters.start > 0 {
		j.ChapterStart = chapters.start
	}
	if chapters.end > 0 {
		j.ChapterEnd = chapters.end
	}
	if err := j.Validate(); err != nil {
		return nil, fmt.Errorf("job file %s: %w", path, err)
	}
	return j, nil
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// runJob checks the source, runs the pipeline, and turns reader failures into
// errors. The result is returned whenever the pipeline ran.
func (c *commandContext) runJob(ctx context.Context, j *job.Job, discard bool) (*pipeline.Result, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}

	if check := preflight.CheckSourceReadable("Source", j.Title.Locator, cfg.Source.DiscManifest); !check.Passed {
		return nil, fmt.Errorf("source not readable: %s", check.Detail)
	}

	res, err := pipeline.Run(ctx, j, pipeline.Options{Config: cfg, Logger: logger, Discard: discard})
	if err != nil {
		return res, err
	}
	if ctx.Err() != nil {
		return res, ctx.Err()
	}
	if res.Failed() {
		return res, fmt.Errorf("%s: reader exited with %s", j.Title.Locator, res.Stats.Exit)
	}
	return res, nil
}

func newReadCommand(ctx *commandContext) *cobra.Command {
	var chapters chapterFlags
	var discard bool

	cmd := &cobra.Command{
		Use:   "read <jobfile>",
		Short: "Read a title into per-track elementary stream files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := loadJob(args[0], chapters)
			if err != nil {
				return err
			}
			runCtx, stop := signalContext(cmd.Context())
			defer stop()

			res, err := ctx.runJob(runCtx, j, discard)
			if res != nil {
				printRunSummary(cmd.OutOrStdout(), res)
				if !discard {
					printOutputs(cmd.OutOrStdout(), res)
				}
			}
			return err
		},
	}
	chapters.register(cmd)
	cmd.Flags().BoolVar(&discard, "discard", false, "Drain the queues without writing stream files")
	return cmd
}

func newScanCommand(ctx *commandContext) *cobra.Command {
	var chapters chapterFlags
	var force bool
	var noPersist bool

	cmd := &cobra.Command{
		Use:   "scan <jobfile>",
		Short: "Count subtitle packets per track without writing audio or video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := loadJob(args[0], chapters)
			if err != nil {
				return err
			}
			j.IndepthScan = true
			if force {
				j.SubtitleForce = true
			}
			runCtx, stop := signalContext(cmd.Context())
			defer stop()

			return ctx.scanAndReport(runCtx, cmd.OutOrStdout(), j, !noPersist)
		},
	}
	chapters.register(cmd)
	cmd.Flags().BoolVar(&force, "force", false, "Route subtitle packets to their queues for forced-subtitle detection")
	cmd.Flags().BoolVar(&noPersist, "no-persist", false, "Do not store the result in the scan database")
	return cmd
}

// scanAndReport runs a scan pass, prints the hit table and stores the result
// when persistence is enabled in both the config and the caller.
func (c *commandContext) scanAndReport(ctx context.Context, out io.Writer, j *job.Job, persist bool) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}

	res, runErr := c.runJob(ctx, j, !j.SubtitleForce)
	if res == nil {
		return runErr
	}
	printRunSummary(out, res)
	printSubtitleHits(out, res.SubtitleHits)

	if persist && cfg.Scan.Persist {
		store, err := c.openStore()
		if err != nil {
			return fmt.Errorf("open scan database: %w", err)
		}
		defer store.Close()
		// Persist with a fresh context so an interrupted scan is still recorded.
		if err := store.SaveScan(context.Background(), scanRecord(j, res)); err != nil {
			return fmt.Errorf("save scan: %w", err)
		}
		fmt.Fprintf(out, "Stored scan %s\n", res.RunID)
	}
	return runErr
}

func scanRecord(j *job.Job, res *pipeline.Result) scanstore.Scan {
	scan := scanstore.Scan{
		RunID:        res.RunID,
		JobID:        res.JobID,
		Locator:      j.Title.Locator,
		TitleIndex:   j.Title.Index,
		SourceKind:   string(res.Stats.SourceKind),
		ChapterStart: j.ChapterStart,
		ChapterEnd:   j.ChapterEnd,
		Exit:         string(res.Stats.Exit),
		UnitsRead:    res.Stats.UnitsRead,
		StartedAt:    res.Started,
		Duration:     res.Duration,
	}
	for _, h := range res.SubtitleHits {
		scan.Hits = append(scan.Hits, scanstore.Hit{StreamID: h.ID, Language: h.Language, Hits: h.Hits})
	}
	return scan
}

func printRunSummary(out io.Writer, res *pipeline.Result) {
	s := res.Stats
	fmt.Fprintf(out, "Run %s (job %s): %s (%s source, chapters %d-%d)\n",
		res.RunID, res.JobID, s.Exit, sourceLabel(string(s.SourceKind)), s.Range.Start, s.Range.End)
	fmt.Fprintf(out, "Units read: %s  Routed: %s  Discarded: %s  Dropped: %s  Duration: %s\n",
		humanize.Comma(int64(s.UnitsRead)),
		humanize.Comma(int64(s.Routed)),
		humanize.Comma(int64(s.Discarded)),
		humanize.Comma(int64(s.Dropped)),
		res.Duration.Round(time.Millisecond),
	)
}

func printOutputs(out io.Writer, res *pipeline.Result) {
	rows := make([][]string, 0, len(res.Outputs))
	for _, o := range res.Outputs {
		path := o.Path
		if path == "" {
			path = "-"
		}
		rows = append(rows, []string{
			o.Queue,
			humanize.Comma(o.Packets),
			humanize.Bytes(uint64(o.Bytes)),
			path,
		})
	}
	writeTable(out, []string{"Queue", "Packets", "Size", "File"}, rows, 1, 2)
}

func printSubtitleHits(out io.Writer, hits []pipeline.SubtitleHit) {
	if len(hits) == 0 {
		fmt.Fprintln(out, "Title has no subtitle tracks")
		return
	}
	rows := make([][]string, 0, len(hits))
	for i, h := range hits {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			h.ID.String(),
			language.DisplayName(h.Language),
			humanize.Comma(h.Hits),
		})
	}
	writeTable(out, []string{"#", "Stream", "Language", "Packets"}, rows, 0, 3)
}

func sourceLabel(kind string) string {
	if kind == "" {
		return "no"
	}
	return kind
}
