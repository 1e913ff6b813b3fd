package commands

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/Sumatoshi-tech/amd2esm/pkg/migrate"
	"github.com/Sumatoshi-tech/amd2esm/pkg/safeconv"
)

const maxErrorWidth = 60

func renderReport(w io.Writer, report *migrate.Report) error {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.DrawBorder = false

	tbl.AppendHeader(table.Row{"File", "Status", "Shape", "Imports", "Size", "Error"})

	for _, f := range report.Files {
		tbl.AppendRow(table.Row{
			sanitizeForTerminal(f.Rel),
			f.Status,
			f.Shape,
			f.Imports,
			humanize.Bytes(safeconv.ByteCount(f.Bytes)),
			truncate(sanitizeForTerminal(f.Error), maxErrorWidth),
		})
	}

	tbl.AppendFooter(table.Row{fmt.Sprintf("Total: %d files", report.Total)})
	tbl.Render()

	_, err := fmt.Fprintln(w)
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	summary := color.New(color.FgGreen)
	if report.HasFailures() {
		summary = color.New(color.FgRed)
	}

	_, err = summary.Fprintf(w, "converted %d, unchanged %d, failed %d, skipped %d\n",
		report.Converted, report.Unchanged, report.Failed, report.Skipped)
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	return nil
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}

	return string(runes[:width-1]) + "…"
}
