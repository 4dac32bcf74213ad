// Package render writes query results to a terminal.
package render

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/table"
	"github.com/jedib0t/go-pretty/text"

	"github.com/banshee-data/pitwall/internal/db"
	"github.com/banshee-data/pitwall/internal/views"
)

const nullValue = "NULL"

// Table writes t as a boxed table. An empty table still prints its header.
func Table(w io.Writer, t *db.Table) {
	if t == nil || len(t.Columns) == 0 {
		return
	}
	tw := table.NewWriter()
	tw.SetOutputMirror(w)

	// keep column names as the database spells them
	tw.Style().Format.Header = text.FormatDefault

	header := make(table.Row, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	tw.AppendHeader(header)
	for _, row := range t.Rows {
		out := make(table.Row, len(row))
		for i, v := range row {
			out[i] = cell(v)
		}
		tw.AppendRow(out)
	}
	tw.Render()
}

func cell(v any) any {
	switch x := v.(type) {
	case nil:
		return nullValue
	case []byte:
		return string(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return v
}

// View writes a section: subheader, error or message, table and summary.
func View(w io.Writer, v views.View) {
	fmt.Fprintf(w, "%s\n\n", v.Section.Subheader())
	if v.Err != nil {
		fmt.Fprintf(w, "Error: %s\n", views.ErrorMessage(v.Err))
		return
	}
	if v.Message != "" {
		fmt.Fprintf(w, "Warning: %s\n", v.Message)
	}
	if !v.Table.Empty() {
		Table(w, v.Table)
	}
	if s := v.Summary; s != nil {
		fmt.Fprintf(w, "\n%d entries, %.0f points, mean %.2f, median %.2f, stddev %.2f\n",
			s.Count, s.Total, s.Mean, s.Median, s.StdDev)
	}
}

// Outcome writes a command's message and, on success, the refreshed results.
func Outcome(w io.Writer, o views.Outcome) {
	if o.Err != nil {
		fmt.Fprintf(w, "Error: %s\n", o.Message)
		return
	}
	fmt.Fprintln(w, o.Message)
	if o.RefreshErr != nil {
		fmt.Fprintf(w, "Error: %s\n", views.ErrorMessage(o.RefreshErr))
		return
	}
	if !o.Results.Empty() {
		fmt.Fprintln(w)
		Table(w, o.Results)
	}
}
