// Package connector defines the Source/Target capability contracts every
// data-format and database connector implements (§4.3 of SPEC_FULL.md), plus
// the small set of helpers (Options, batching) shared across them.
package connector

import (
	"context"
	"io"

	"dte/internal/value"
)

// Options is the string→string option bag passed from the CLI/config
// document through the Protocol layer to a connector's constructor (§4.2).
type Options map[string]string

func (o Options) Get(key string) (string, bool) {
	v, ok := o[key]
	return v, ok
}

func (o Options) GetDefault(key, def string) string {
	if v, ok := o[key]; ok {
		return v
	}
	return def
}

// Source is the capability contract a data format or database exposes for
// reading rows (§4.3).
type Source interface {
	// Open performs any I/O needed to begin reading: opening a file,
	// establishing a connection, reading headers.
	Open(ctx context.Context) error

	// Schema returns the source's schema. For connectors with no intrinsic
	// schema (delimited text, JSON, spreadsheet) this triggers
	// sampling-based inference on first call.
	Schema(ctx context.Context) (*value.Schema, error)

	// NextBatch returns up to maxRows rows in the source's natural column
	// order, or io.EOF once the stream is exhausted.
	NextBatch(ctx context.Context, maxRows int) ([]value.Row, error)

	// Close releases handles. Idempotent.
	Close() error
}

// Target is the capability contract a data format or database exposes for
// writing rows (§4.3).
type Target interface {
	// Open tells the target the final (post-transform) schema before any
	// row is written. The target is responsible for creating or opening
	// its destination container.
	Open(ctx context.Context, schema *value.Schema) error

	// Exists reports whether the destination is already present. The
	// delimited, JSON and columnar targets report a non-empty file; the
	// spreadsheet target reports that the file exists and the database
	// target that the table exists, whether or not either holds rows.
	Exists(ctx context.Context) (bool, error)

	// SupportsAppend is static per connector implementation.
	SupportsAppend() bool

	// Truncate removes all existing content, recreating the schema if
	// needed.
	Truncate(ctx context.Context) error

	// WriteBatch writes rows, which must match the schema given to Open.
	WriteBatch(ctx context.Context, rows []value.Row) error

	// Finalize flushes, commits, and closes. Connectors that cannot
	// stream (spreadsheet, columnar) complete their persistent work here.
	Finalize(ctx context.Context) error

	Close() error
}

// EOF re-exports io.EOF as the sentinel NextBatch returns on exhaustion, so
// connector implementations need not import io solely for that purpose.
var EOF = io.EOF
