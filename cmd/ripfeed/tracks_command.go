package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	xlanguage "golang.org/x/text/language"

	"ripfeed/internal/es"
	"ripfeed/internal/jobspec"
	"ripfeed/internal/language"
	"ripfeed/internal/source"
	"ripfeed/internal/title"
)

var labelCaser = cases.Title(xlanguage.English)

func newTracksCommand(ctx *commandContext) *cobra.Command {
	var fromStream bool

	cmd := &cobra.Command{
		Use:   "tracks <jobfile>",
		Short: "List the tracks of a title",
		Long: "List the video, audio and subtitle tracks declared in a job file. " +
			"With --stream the argument is a transport stream file and the tracks are read from its program map.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if fromStream {
				tracks, err := source.StreamTracks(args[0])
				if err != nil {
					return err
				}
				writeTable(out, []string{"Kind", "Stream", "PID", "Type", "Language"}, streamRows(tracks), 2)
				return nil
			}

			j, err := jobspec.Load(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Title %d at %s, %d chapters\n", j.Title.Index, j.Title.Locator, len(j.Title.Chapters))
			writeTable(out, []string{"Kind", "Stream", "Language", "Codec", "Selected"}, titleRows(j.Title, j.Audios))
			return nil
		},
	}
	cmd.Flags().BoolVar(&fromStream, "stream", false, "Treat the argument as a transport stream file")
	return cmd
}

func titleRows(t *title.Title, selected []es.ID) [][]string {
	rows := [][]string{{kindLabel(es.KindVideo), t.VideoID.String(), "", "", yesNo(true)}}
	for _, a := range t.Audios {
		chosen := false
		for _, id := range selected {
			if id == a.ID {
				chosen = true
				break
			}
		}
		rows = append(rows, []string{kindLabel(es.KindAudio), a.ID.String(), language.DisplayName(a.Language), codecLabel(a.Codec), yesNo(chosen)})
	}
	for _, s := range t.Subtitles {
		rows = append(rows, []string{kindLabel(es.KindSubtitle), s.ID.String(), language.DisplayName(s.Language), "", yesNo(true)})
	}
	return rows
}

func streamRows(tracks []source.Track) [][]string {
	rows := make([][]string, 0, len(tracks))
	for _, tr := range tracks {
		lang := ""
		if tr.ID.Kind() != es.KindVideo {
			lang = language.DisplayName(tr.Language)
		}
		rows = append(rows, []string{
			kindLabel(tr.ID.Kind()),
			tr.ID.String(),
			strconv.Itoa(int(tr.PID)),
			fmt.Sprintf("0x%02X", tr.Type),
			lang,
		})
	}
	return rows
}

func kindLabel(kind es.Kind) string {
	return labelCaser.String(string(kind))
}

func codecLabel(codec string) string {
	codec = strings.TrimSpace(codec)
	if codec == "" {
		return ""
	}
	return strings.ToUpper(codec)
}
