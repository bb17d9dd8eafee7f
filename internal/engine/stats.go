package engine

import "time"

// Stats is the Transfer engine's terminal report (§4.6/§7).
type Stats struct {
	RowsRead     int
	RowsWritten  int
	RowsSkipped  int
	Elapsed      time.Duration
	BytesRead    int64 // -1 when the source cannot report it
	BytesWritten int64 // -1 when the target cannot report it
	DryRun       bool
	Previewed    []PreviewRow // only populated when Options.Preview > 0
	Warnings     []string     // non-fatal notices (e.g. append-first fallback truncation)
}

// PreviewRow is one row emitted to the human-readable preview stream
// (§4.6 step 4, "preview = N").
type PreviewRow struct {
	Index  int
	Fields map[string]string
}
