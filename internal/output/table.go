/*
PURPOSE:
  Prints one results table per (background, border color) pair to the terminal.

REQUIREMENTS:
  User-specified:
  - Columns: box size, EC Level, JPEG quality, downsized to, pre-processing,
    success rate, average time to read.
  - A "Background: ..., border color: ..." caption above each table.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine (GroupWriter), internal/cli (history)
  - Dependencies: github.com/olekukonko/tablewriter

ERROR HANDLING:
  - Returns render/write errors.

USAGE:
  output.NewTableWriter(os.Stdout).WriteGroup(group)

RELATED FILES:
  - internal/output/markdown.go
*/

package output

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/daryltucker/qr-bench/internal/model"
)

// TableHeader names the columns of a results table.
var TableHeader = []string{
	"box size", "EC Level", "JPEG quality", "downsized to",
	"pre-processing", "success rate", "average time to read",
}

// TableWriter renders groups as terminal tables.
type TableWriter struct {
	out io.Writer
}

// NewTableWriter creates a TableWriter writing to out.
func NewTableWriter(out io.Writer) *TableWriter {
	return &TableWriter{out: out}
}

// Caption is the line printed above a group's table.
func Caption(g model.Group) string {
	return "Background: " + g.Background + ", border color: " + g.BorderColor
}

// TableRows converts a group into table cells.
func TableRows(g model.Group) [][]string {
	rows := make([][]string, 0, len(g.Rows))
	for _, r := range g.Rows {
		rows = append(rows, []string{
			strconv.Itoa(r.BoxSize),
			r.ECLevel.String(),
			strconv.Itoa(r.Quality),
			r.Size.String(),
			strconv.FormatBool(r.Preprocess),
			fmt.Sprintf("%.2f", r.SuccessRate()),
			fmt.Sprintf("%.6f", r.AvgReadTime().Seconds()),
		})
	}
	return rows
}

func (tw *TableWriter) WriteGroup(g model.Group) error {
	if _, err := fmt.Fprintln(tw.out, Caption(g)); err != nil {
		return err
	}

	header := make([]any, len(TableHeader))
	for i, h := range TableHeader {
		header[i] = h
	}

	table := tablewriter.NewWriter(tw.out)
	table.Header(header...)
	if err := table.Bulk(TableRows(g)); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	_, err := fmt.Fprintln(tw.out)
	return err
}
