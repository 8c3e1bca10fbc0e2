// Package report prints a human-facing summary of one generator run: a
// per-unit outcome table and colorized warnings/errors, the way quad-ops's
// own "list" commands format their table output.
package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/rodaine/table"

	"github.com/qgen/quadlet-gen/pkg/generator"
)

// Print writes a summary table of every outcome in result to w: source
// unit, generated service name (blank on failure), and status. The header
// row, first column, failure/warning statuses and warning lines are
// colorized through fatih/color, which turns color off on its own when
// stdout is not a terminal.
func Print(w io.Writer, result *generator.Result) {
	headerFmt := color.New(color.FgGreen, color.Underline).SprintfFunc()
	columnFmt := color.New(color.FgYellow).SprintfFunc()

	tbl := table.New("Unit", "Service", "Status").WithWriter(w)
	tbl.WithHeaderFormatter(headerFmt).WithFirstColumnFormatter(columnFmt)

	for _, o := range result.Outcomes {
		status := "ok"
		if o.Err != nil {
			status = color.RedString("failed: %s", o.Err)
		} else if len(o.Warnings) > 0 {
			status = color.YellowString("ok (%d warning(s))", len(o.Warnings))
		}
		tbl.AddRow(o.SourcePath, o.ServiceName, status)
	}
	tbl.Print()

	for _, o := range result.Outcomes {
		for _, warning := range o.Warnings {
			fmt.Fprintln(w, color.YellowString("warning: %s: %s", o.SourcePath, warning))
		}
	}
}
