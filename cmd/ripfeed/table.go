package main

import (
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

// writeTable prints rows under headers. Columns whose index appears in
// rightCols are right-aligned; short rows are padded. Terminals get rounded
// borders, pipes and files plain ASCII.
func writeTable(out io.Writer, headers []string, rows [][]string, rightCols ...int) {
	if len(headers) == 0 {
		return
	}
	tw := table.NewWriter()
	tw.SetStyle(table.StyleDefault)
	if f, ok := out.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		tw.SetStyle(table.StyleRounded)
	}

	tw.AppendHeader(cells(headers, len(headers)))
	for _, row := range rows {
		tw.AppendRow(cells(row, len(headers)))
	}

	configs := make([]table.ColumnConfig, len(headers))
	for i := range configs {
		configs[i] = table.ColumnConfig{Number: i + 1, AlignHeader: text.AlignLeft, Align: text.AlignLeft}
		if slices.Contains(rightCols, i) {
			configs[i].Align = text.AlignRight
		}
	}
	tw.SetColumnConfigs(configs)
	fmt.Fprintln(out, tw.Render())
}

func cells(values []string, width int) table.Row {
	row := make(table.Row, width)
	for i := range row {
		row[i] = ""
		if i < len(values) {
			row[i] = values[i]
		}
	}
	return row
}
