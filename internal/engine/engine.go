// Package engine implements the Transfer engine orchestrator (§4.6): the
// single Execute entry point that drives a Source and Target through open,
// schema-derivation, batch transform/validate/write, and finalize.
package engine

import (
	"context"
	"fmt"
	"time"

	"dte/internal/connector"
	"dte/internal/schema"
	"dte/internal/transform"
	"dte/internal/value"
	"dte/internal/xerr"
)

// closer is satisfied by transformers that hold a resource needing
// release (currently only the Lua script transformer).
type closer interface{ Close() }

// faultMarker is satisfied by sources that stage a local temporary file and
// need to know a run failed before Close decides whether to keep it for
// diagnostics (protocol.tempFileSource, §6 "retained on failure").
type faultMarker interface{ MarkFailed() }

// Execute runs one Transfer: open → schema discovery → batch loop →
// finalize, per the algorithm in §4.6. It never suspends on anything but
// the Source/Target calls named in §5.
func Execute(ctx context.Context, src connector.Source, tgt connector.Target, opts Options) (stats Stats, err error) {
	start := time.Now()
	stats = Stats{BytesRead: -1, BytesWritten: -1}

	if err = src.Open(ctx); err != nil {
		return stats, err
	}
	defer func() {
		if err != nil {
			if fm, ok := src.(faultMarker); ok {
				fm.MarkFailed()
			}
		}
		src.Close()
	}()

	sourceSchema, err := src.Schema(ctx)
	if err != nil {
		return stats, xerr.Wrap(xerr.KindSchemaInference, "deriving source schema", err)
	}

	validationSchema := sourceSchema
	if opts.SchemaFile != "" {
		explicit, err := schema.LoadDocument(opts.SchemaFile)
		if err != nil {
			return stats, err
		}
		validationSchema = explicit
	}

	tr, err := transform.New(opts.Transform)
	if err != nil {
		return stats, err
	}
	if c, ok := tr.(closer); ok {
		defer c.Close()
	}

	batch, err := src.NextBatch(ctx, opts.batchSize())
	if err != nil && err != connector.EOF {
		return stats, xerr.Wrap(xerr.KindConnection, "reading first batch", err)
	}
	firstBatch := batch
	sourceExhausted := err == connector.EOF

	validated := make([]value.Row, 0, len(firstBatch))
	for _, row := range firstBatch {
		stats.RowsRead++
		v, err := value.Validate(row, validationSchema, stats.RowsRead-1)
		if err != nil {
			return stats, xerr.Wrap(xerr.KindDataValidation, "validating row", err)
		}
		validated = append(validated, v)
	}

	transformed := make([]value.Row, 0, len(validated))
	for _, row := range validated {
		out, skipped, err := tr.Apply(row)
		if err != nil {
			return stats, err
		}
		if skipped {
			stats.RowsSkipped++
			continue
		}
		transformed = append(transformed, out)
	}

	targetSchema := validationSchema
	if opts.Transform.Type != transform.ModeNone && opts.Transform.Type != "" && len(transformed) > 0 {
		targetSchema = deriveSchema(transformed[0])
	}

	if opts.DryRun {
		stats.DryRun = true
		stats.Elapsed = time.Since(start)
		return stats, nil
	}

	if opts.Preview > 0 {
		stats.Previewed = previewRows(transformed, opts.Preview)
		stats.Elapsed = time.Since(start)
		return stats, nil
	}

	defer tgt.Close()
	warning, err := openTarget(ctx, tgt, targetSchema, opts)
	if err != nil {
		return stats, err
	}
	if warning != "" {
		stats.Warnings = append(stats.Warnings, warning)
	}

	if err := checkDrift(transformed, targetSchema); err != nil {
		return stats, err
	}
	if err := writeBatch(ctx, tgt, targetSchema, transformed, &stats); err != nil {
		return stats, err
	}

	for !sourceExhausted {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		batch, err := src.NextBatch(ctx, opts.batchSize())
		if err == connector.EOF {
			sourceExhausted = true
			break
		}
		if err != nil {
			return stats, xerr.Wrap(xerr.KindConnection, "reading batch", err)
		}

		validated = validated[:0]
		for _, row := range batch {
			stats.RowsRead++
			v, err := value.Validate(row, validationSchema, stats.RowsRead-1)
			if err != nil {
				return stats, xerr.Wrap(xerr.KindDataValidation, "validating row", err)
			}
			validated = append(validated, v)
		}

		transformed = transformed[:0]
		for _, row := range validated {
			out, skipped, err := tr.Apply(row)
			if err != nil {
				return stats, err
			}
			if skipped {
				stats.RowsSkipped++
				continue
			}
			transformed = append(transformed, out)
		}

		if err := checkDrift(transformed, targetSchema); err != nil {
			return stats, err
		}
		if err := writeBatch(ctx, tgt, targetSchema, transformed, &stats); err != nil {
			return stats, err
		}
	}

	if err := tgt.Finalize(ctx); err != nil {
		return stats, xerr.Wrap(xerr.KindTarget, "finalizing target", err)
	}

	stats.Elapsed = time.Since(start)
	return stats, nil
}

// openTarget implements the target-state decision tree of §4.6 step 4,
// excluding the dry-run/preview branches (handled by the caller before
// target.Open is ever reached, per the Open Questions decision in §9). The
// returned string is a non-fatal warning for the caller to record on Stats,
// empty when the open proceeded without one.
func openTarget(ctx context.Context, tgt connector.Target, schema *value.Schema, opts Options) (string, error) {
	if err := tgt.Open(ctx, schema); err != nil {
		return "", xerr.Wrap(xerr.KindConnection, "opening target", err)
	}

	exists, err := tgt.Exists(ctx)
	if err != nil {
		return "", xerr.Wrap(xerr.KindTarget, "checking target existence", err)
	}

	switch {
	case !exists:
		return "", nil
	case opts.Truncate:
		return "", tgt.Truncate(ctx)
	case tgt.SupportsAppend():
		return "", nil
	default:
		// Append-first fallback policy (§4.6): truncate with a warning
		// rather than fail when the target cannot append (§8).
		if err := tgt.Truncate(ctx); err != nil {
			return "", err
		}
		return "target does not support append; existing data was truncated before writing (append-first fallback)", nil
	}
}

// checkDrift fails fast when a transformed row no longer conforms to
// schema, the target schema derived from the first row (§4.6, §7): an
// extra column not present in schema, or a non-null value whose Kind no
// longer matches the stored ColumnSpec, is a Transform error rather than a
// value silently dropped or coerced by Project.
func checkDrift(rows []value.Row, schema *value.Schema) error {
	for _, row := range rows {
		for _, f := range row.Fields {
			idx := schema.IndexOf(f.Name)
			if idx < 0 {
				return xerr.Transform("row has column %q not present in the target schema derived from the first row", f.Name)
			}
			if f.Value.IsNull() {
				continue
			}
			if want := schema.Columns[idx].Type.Kind; f.Value.Kind() != want {
				return xerr.Transform("column %q: value of type %s does not match target schema type %s", f.Name, f.Value.Kind(), want)
			}
		}
	}
	return nil
}

func writeBatch(ctx context.Context, tgt connector.Target, schema *value.Schema, rows []value.Row, stats *Stats) error {
	projected := make([]value.Row, len(rows))
	for i, row := range rows {
		projected[i] = value.Project(row, schema)
	}
	if err := tgt.WriteBatch(ctx, projected); err != nil {
		return xerr.Wrap(xerr.KindTarget, "writing batch", err)
	}
	stats.RowsWritten += len(projected)
	return nil
}

// deriveSchema builds the target schema from the shape of the first
// transformed row, per §4.5's "output schema discovery". Every derived
// column is typed from the observed Value's Kind and marked nullable,
// since nothing here proves non-nullability the way an explicit schema
// document would.
func deriveSchema(row value.Row) *value.Schema {
	cols := make([]value.ColumnSpec, len(row.Fields))
	for i, f := range row.Fields {
		cols[i] = value.ColumnSpec{Name: f.Name, Type: dataTypeOf(f.Value), Nullable: true}
	}
	return value.NewSchema(cols...)
}

func dataTypeOf(v value.Value) value.DataType {
	switch v.Kind() {
	case value.KindInteger:
		return value.TypeInteger()
	case value.KindDecimal:
		return value.TypeDecimal()
	case value.KindBoolean:
		return value.TypeBoolean()
	case value.KindDate:
		return value.TypeDate()
	case value.KindDateTime:
		return value.TypeDateTime()
	default:
		return value.TypeString()
	}
}

func previewRows(rows []value.Row, n int) []PreviewRow {
	if n > len(rows) {
		n = len(rows)
	}
	out := make([]PreviewRow, n)
	for i := 0; i < n; i++ {
		fields := make(map[string]string, len(rows[i].Fields))
		for _, f := range rows[i].Fields {
			if f.Value.IsNull() {
				fields[f.Name] = ""
				continue
			}
			s, err := value.CanonicalString(f.Value)
			if err != nil {
				s = fmt.Sprintf("<%s>", f.Value.Kind())
			}
			fields[f.Name] = s
		}
		out[i] = PreviewRow{Index: i, Fields: fields}
	}
	return out
}
