package main

import (
	"github.com/spf13/cobra"
)

// skipConfigAnnotation marks commands that must run without a loaded config.
const skipConfigAnnotation = "ripfeed/skip-config"

func newRootCommand() *cobra.Command {
	var configFlag string
	ctx := newCommandContext(&configFlag)

	root := &cobra.Command{
		Use:           "ripfeed",
		Short:         "Read disc titles and transport streams into elementary streams",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if skipsConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	root.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	for _, build := range []func(*commandContext) *cobra.Command{
		newReadCommand,
		newScanCommand,
		newHistoryCommand,
		newTracksCommand,
		newWatchCommand,
		newCheckCommand,
		newLogsCommand,
		newConfigCommand,
	} {
		root.AddCommand(build(ctx))
	}
	return root
}

func skipsConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[skipConfigAnnotation] == "true" {
			return true
		}
	}
	return false
}
