package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"ripfeed/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow bool

	cmd := &cobra.Command{
		Use:   "logs [job-id]",
		Short: "Show the main log or the log of one job",
		Long:  "Show the last lines of ripfeed.log, or of a per-job log when a job id (or unique prefix) is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			var jobID string
			if len(args) == 1 {
				jobID = args[0]
			}
			path, err := logs.Resolve(cfg.Paths.LogDir, jobID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			tail, offset, err := logs.Last(path, lines)
			if err != nil {
				return err
			}
			for _, line := range tail {
				fmt.Fprintln(out, line)
			}
			if !follow {
				return nil
			}

			runCtx, stop := signalContext(cmd.Context())
			defer stop()
			err = logs.Follow(runCtx, path, offset, 0, func(line string) {
				fmt.Fprintln(out, line)
			})
			if errors.Is(err, runCtx.Err()) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing lines as they are written")
	return cmd
}
