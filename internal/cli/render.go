package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/JonMunkholm/conform/internal/core"
	"github.com/jedib0t/go-pretty/v6/table"
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

func renderTables(w io.Writer, infos []core.TableInfo) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Table", "Group", "Label", "Source", "Columns"})
	for _, info := range infos {
		t.AppendRow(table.Row{info.Key, info.Group, info.Label, info.Source, len(info.Columns)})
	}
	t.Render()
}

// renderRun prints one row per table followed by the quality issues.
func renderRun(w io.Writer, res core.RunResult) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Table", "Status", "Rows In", "Rows Out", "Issues", "Duration"})
	for _, tr := range res.Tables {
		status := "ok"
		if !tr.OK() {
			status = "failed " + tr.Code
		}
		t.AppendRow(table.Row{tr.Table, status, tr.RowsIn, tr.RowsOut, len(tr.Issues), formatDuration(tr.Duration)})
	}
	t.Render()

	var issues []string
	for _, tr := range res.Tables {
		for _, is := range tr.Issues {
			issues = append(issues, fmt.Sprintf("  %s.%s %s: %d rows", tr.Table, is.Column, is.Rule, is.Count))
		}
	}
	if len(issues) > 0 {
		fmt.Fprintln(w, "Quality issues:")
		fmt.Fprintln(w, strings.Join(issues, "\n"))
	}

	for _, tr := range res.Failed() {
		fmt.Fprintf(w, "%s: %s\n", tr.Table, core.FormatUserError(tr.Err))
	}
	fmt.Fprintf(w, "run %s: %d tables, %d failed, %s\n",
		res.RunID, len(res.Tables), len(res.Failed()), formatDuration(res.Duration))
}
