package engine

import (
	"dte/internal/transform"
)

// Options mirrors the enumerated Transfer engine options of §4.6.
type Options struct {
	BatchSize  int
	Truncate   bool
	DryRun     bool
	Preview    int // 0 disables preview
	SchemaFile string
	Transform  transform.Config
}

// DefaultBatchSize is the documented default for BatchSize (§4.6).
const DefaultBatchSize = 10_000

func (o Options) batchSize() int {
	if o.BatchSize > 0 {
		return o.BatchSize
	}
	return DefaultBatchSize
}
