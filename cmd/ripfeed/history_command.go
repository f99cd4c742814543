package main

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"ripfeed/internal/language"
	"ripfeed/internal/scanstore"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var runID string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored scan results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return fmt.Errorf("open scan database: %w", err)
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if runID != "" {
				hits, err := store.SubtitleHits(cmd.Context(), runID)
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(hits))
				for i, h := range hits {
					rows = append(rows, []string{strconv.Itoa(i + 1), h.StreamID.String(), language.DisplayName(h.Language), humanize.Comma(h.Hits)})
				}
				writeTable(out, []string{"#", "Stream", "Language", "Packets"}, rows, 0, 3)
				return nil
			}

			scans, err := store.ListScans(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(scans) == 0 {
				fmt.Fprintln(out, "No scans recorded")
				return nil
			}
			writeTable(out,
				[]string{"Started", "Run", "Locator", "Title", "Chapters", "Exit", "Units", "Subtitle packets"},
				historyRows(scans), 3, 6, 7)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of scans to list")
	cmd.Flags().StringVar(&runID, "run", "", "Show per-track counts for one run")
	return cmd
}

func historyRows(scans []scanstore.Scan) [][]string {
	rows := make([][]string, 0, len(scans))
	for _, s := range scans {
		rows = append(rows, []string{
			humanize.Time(s.StartedAt),
			s.RunID,
			s.Locator,
			strconv.Itoa(s.TitleIndex),
			fmt.Sprintf("%d-%d", s.ChapterStart, s.ChapterEnd),
			s.Exit,
			humanize.Comma(int64(s.UnitsRead)),
			humanize.Comma(s.TotalHits()),
		})
	}
	return rows
}
