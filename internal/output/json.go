package output

import (
	"encoding/json"

	"dte/internal/engine"
)

type jsonReporter struct{}

type previewPayload struct {
	Format Format              `json:"format"`
	Rows   []engine.PreviewRow `json:"rows"`
}

type resultPayload struct {
	Format       Format `json:"format"`
	DryRun       bool   `json:"dryRun"`
	RowsRead     int    `json:"rowsRead"`
	RowsWritten  int    `json:"rowsWritten"`
	RowsSkipped  int    `json:"rowsSkipped"`
	ElapsedMS    int64  `json:"elapsedMs"`
	BytesRead    int64    `json:"bytesRead,omitempty"`
	BytesWritten int64    `json:"bytesWritten,omitempty"`
	Warnings     []string `json:"warnings,omitempty"`
	Error        string   `json:"error,omitempty"`
}

type payload interface {
	previewPayload | resultPayload
}

func (jsonReporter) Preview(stats engine.Stats) (string, error) {
	return marshalJSON(previewPayload{
		Format: FormatJSON,
		Rows:   stats.Previewed,
	})
}

func (jsonReporter) Result(stats engine.Stats, err error) (string, error) {
	p := resultPayload{
		Format:       FormatJSON,
		DryRun:       stats.DryRun,
		RowsRead:     stats.RowsRead,
		RowsWritten:  stats.RowsWritten,
		RowsSkipped:  stats.RowsSkipped,
		ElapsedMS:    stats.Elapsed.Milliseconds(),
		BytesRead:    stats.BytesRead,
		BytesWritten: stats.BytesWritten,
		Warnings:     stats.Warnings,
	}
	if err != nil {
		p.Error = err.Error()
	}
	return marshalJSON(p)
}

func marshalJSON[T payload](p T) (string, error) {
	b, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b) + "\n", nil
}
