package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"ripfeed/internal/discwatch"
	"ripfeed/internal/logging"
	"ripfeed/internal/preflight"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var chapters chapterFlags
	var noPersist bool

	cmd := &cobra.Command{
		Use:   "watch <jobfile>",
		Short: "Scan the job's title each time media is inserted into the optical drive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			// Fail early on a broken job file rather than on the first insertion.
			if _, err := loadJob(args[0], chapters); err != nil {
				return err
			}
			if check := preflight.CheckSourceReadable("Optical drive", cfg.Source.OpticalDrive, ""); !check.Passed && cfg.Source.OpticalDrive != "" {
				logging.WarnWithContext(logger, "optical drive not readable yet", "drive_not_readable",
					logging.String("detail", check.Detail),
					logging.String(logging.FieldImpact, "scans start once the drive becomes readable"),
				)
			}

			out := cmd.OutOrStdout()
			handler := func(runCtx context.Context, device string) error {
				j, err := loadJob(args[0], chapters)
				if err != nil {
					return err
				}
				j.IndepthScan = true
				fmt.Fprintf(out, "Media inserted in %s, scanning %s\n", device, j.Title.Locator)
				return ctx.scanAndReport(runCtx, out, j, !noPersist)
			}

			monitor := discwatch.New(cfg, logger, handler)
			if monitor == nil {
				return errors.New("no optical drive configured (set source.optical_drive)")
			}

			runCtx, stop := signalContext(cmd.Context())
			defer stop()
			if err := monitor.Start(runCtx); err != nil {
				return fmt.Errorf("start disc watch: %w", err)
			}
			defer monitor.Stop()

			fmt.Fprintf(out, "Watching %s; press Ctrl-C to stop\n", monitor.Device())
			<-runCtx.Done()
			return nil
		},
	}
	chapters.register(cmd)
	cmd.Flags().BoolVar(&noPersist, "no-persist", false, "Do not store scan results")
	return cmd
}
