package output

import (
	"fmt"
	"sort"
	"strings"

	"dte/internal/engine"
)

type humanReporter struct{}

// Preview renders a table of the rows captured by Options.Preview.
func (humanReporter) Preview(stats engine.Stats) (string, error) {
	if len(stats.Previewed) == 0 {
		return "No rows to preview.\n", nil
	}

	names := previewColumns(stats.Previewed)

	var sb strings.Builder
	sb.WriteString("Preview (no data written)\n")
	sb.WriteString("==========================\n\n")
	for _, row := range stats.Previewed {
		fmt.Fprintf(&sb, "[%d]\n", row.Index)
		for _, name := range names {
			fmt.Fprintf(&sb, "  %-20s %s\n", name+":", row.Fields[name])
		}
	}
	return sb.String(), nil
}

// Result renders a summary of a completed (or failed) Transfer.
// Example output:
//
//	Transfer Summary
//	================
//
//	Rows read:    1000
//	Rows written: 998
//	Rows skipped: 2
//	Elapsed:      1.2s
func (humanReporter) Result(stats engine.Stats, err error) (string, error) {
	var sb strings.Builder

	if stats.DryRun {
		sb.WriteString("Dry run (no data written)\n")
		sb.WriteString("==========================\n\n")
	} else {
		sb.WriteString("Transfer Summary\n")
		sb.WriteString("================\n\n")
	}

	fmt.Fprintf(&sb, "Rows read:    %d\n", stats.RowsRead)
	if !stats.DryRun {
		fmt.Fprintf(&sb, "Rows written: %d\n", stats.RowsWritten)
	}
	if stats.RowsSkipped > 0 {
		fmt.Fprintf(&sb, "Rows skipped: %d\n", stats.RowsSkipped)
	}
	fmt.Fprintf(&sb, "Elapsed:      %s\n", stats.Elapsed.Round(1000000))

	for _, w := range stats.Warnings {
		fmt.Fprintf(&sb, "Warning:      %s\n", w)
	}

	if err != nil {
		fmt.Fprintf(&sb, "\nFailed: %s\n", err)
	}

	return sb.String(), nil
}

func previewColumns(rows []engine.PreviewRow) []string {
	if len(rows) == 0 {
		return nil
	}
	names := make([]string, 0, len(rows[0].Fields))
	for name := range rows[0].Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
