package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dte/internal/connector"
	"dte/internal/transform"
	"dte/internal/value"
)

type fakeSource struct {
	schema  *value.Schema
	batches [][]value.Row
	cursor  int
	opened  bool
	closed  bool
}

func (f *fakeSource) Open(ctx context.Context) error { f.opened = true; return nil }
func (f *fakeSource) Schema(ctx context.Context) (*value.Schema, error) {
	return f.schema, nil
}
func (f *fakeSource) NextBatch(ctx context.Context, maxRows int) ([]value.Row, error) {
	if f.cursor >= len(f.batches) {
		return nil, connector.EOF
	}
	b := f.batches[f.cursor]
	f.cursor++
	return b, nil
}
func (f *fakeSource) Close() error { f.closed = true; return nil }

type fakeTarget struct {
	schema    *value.Schema
	written   []value.Row
	exists    bool
	append    bool
	truncated bool
	finalized bool
	closed    bool
}

func (f *fakeTarget) Open(ctx context.Context, schema *value.Schema) error {
	f.schema = schema
	return nil
}
func (f *fakeTarget) Exists(ctx context.Context) (bool, error) { return f.exists, nil }
func (f *fakeTarget) SupportsAppend() bool                     { return f.append }
func (f *fakeTarget) Truncate(ctx context.Context) error       { f.truncated = true; return nil }
func (f *fakeTarget) WriteBatch(ctx context.Context, rows []value.Row) error {
	f.written = append(f.written, rows...)
	return nil
}
func (f *fakeTarget) Finalize(ctx context.Context) error { f.finalized = true; return nil }
func (f *fakeTarget) Close() error                       { f.closed = true; return nil }

func idNameSchema() *value.Schema {
	return value.NewSchema(
		value.ColumnSpec{Name: "id", Type: value.TypeInteger(), Nullable: false},
		value.ColumnSpec{Name: "name", Type: value.TypeString(), Nullable: true},
	)
}

func TestExecuteWritesAllBatchesAndFinalizes(t *testing.T) {
	src := &fakeSource{
		schema: idNameSchema(),
		batches: [][]value.Row{
			{value.NewRow(value.Field{Name: "id", Value: value.NewInteger(1)}, value.Field{Name: "name", Value: value.NewString("a")})},
			{value.NewRow(value.Field{Name: "id", Value: value.NewInteger(2)}, value.Field{Name: "name", Value: value.NewString("b")})},
		},
	}
	tgt := &fakeTarget{append: true}

	stats, err := Execute(context.Background(), src, tgt, Options{BatchSize: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.RowsRead)
	assert.Equal(t, 2, stats.RowsWritten)
	assert.True(t, tgt.finalized)
	assert.True(t, src.closed)
	assert.True(t, tgt.closed)
}

func TestExecuteDryRunNeverOpensTarget(t *testing.T) {
	src := &fakeSource{
		schema:  idNameSchema(),
		batches: [][]value.Row{{value.NewRow(value.Field{Name: "id", Value: value.NewInteger(1)}, value.Field{Name: "name", Value: value.NewString("a")})}},
	}
	tgt := &fakeTarget{}

	stats, err := Execute(context.Background(), src, tgt, Options{DryRun: true})
	require.NoError(t, err)
	assert.True(t, stats.DryRun)
	assert.Nil(t, tgt.schema)
}

func TestExecutePreviewNeverWrites(t *testing.T) {
	src := &fakeSource{
		schema: idNameSchema(),
		batches: [][]value.Row{
			{value.NewRow(value.Field{Name: "id", Value: value.NewInteger(1)}, value.Field{Name: "name", Value: value.NewString("a")})},
		},
	}
	tgt := &fakeTarget{}

	stats, err := Execute(context.Background(), src, tgt, Options{Preview: 1})
	require.NoError(t, err)
	require.Len(t, stats.Previewed, 1)
	assert.Equal(t, "a", stats.Previewed[0].Fields["name"])
	assert.Nil(t, tgt.schema)
}

func TestExecuteAppendFirstFallbackTruncatesWhenAppendUnsupported(t *testing.T) {
	src := &fakeSource{schema: idNameSchema(), batches: [][]value.Row{{}}}
	tgt := &fakeTarget{exists: true, append: false}

	stats, err := Execute(context.Background(), src, tgt, Options{})
	require.NoError(t, err)
	assert.True(t, tgt.truncated)
	require.Len(t, stats.Warnings, 1)
	assert.Contains(t, stats.Warnings[0], "append")
}

func TestExecuteRejectsInvalidRow(t *testing.T) {
	src := &fakeSource{
		schema: value.NewSchema(value.ColumnSpec{Name: "id", Type: value.TypeInteger(), Nullable: false}),
		batches: [][]value.Row{
			{value.NewRow(value.Field{Name: "id", Value: value.Null()})},
		},
	}
	tgt := &fakeTarget{}

	_, err := Execute(context.Background(), src, tgt, Options{})
	assert.Error(t, err)
}

func TestCheckDriftRejectsExtraColumn(t *testing.T) {
	rows := []value.Row{value.NewRow(
		value.Field{Name: "id", Value: value.NewInteger(1)},
		value.Field{Name: "name", Value: value.NewString("a")},
		value.Field{Name: "extra", Value: value.NewString("x")},
	)}

	assert.Error(t, checkDrift(rows, idNameSchema()))
}

func TestCheckDriftRejectsTypeMismatch(t *testing.T) {
	rows := []value.Row{value.NewRow(
		value.Field{Name: "id", Value: value.NewString("not-an-integer")},
		value.Field{Name: "name", Value: value.NewString("a")},
	)}

	assert.Error(t, checkDrift(rows, idNameSchema()))
}

func TestExecuteFailsFastOnSchemaDriftInLaterBatch(t *testing.T) {
	script := `
function transform(row)
  if row.id == 1 then
    return {id = row.id, name = row.name}
  end
  return {id = row.id, name = row.name, extra = "unexpected"}
end
`
	src := &fakeSource{
		schema: idNameSchema(),
		batches: [][]value.Row{
			{value.NewRow(value.Field{Name: "id", Value: value.NewInteger(1)}, value.Field{Name: "name", Value: value.NewString("a")})},
			{value.NewRow(value.Field{Name: "id", Value: value.NewInteger(2)}, value.Field{Name: "name", Value: value.NewString("b")})},
		},
	}
	tgt := &fakeTarget{append: true}

	_, err := Execute(context.Background(), src, tgt, Options{
		BatchSize: 1,
		Transform: transform.Config{Type: transform.ModeScript, Value: script},
	})
	assert.Error(t, err)
}

func TestExecuteAppliesInlineTransformAndDerivesSchema(t *testing.T) {
	src := &fakeSource{
		schema: idNameSchema(),
		batches: [][]value.Row{
			{value.NewRow(value.Field{Name: "id", Value: value.NewInteger(1)}, value.Field{Name: "name", Value: value.NewString("a")})},
		},
	}
	tgt := &fakeTarget{append: true}

	stats, err := Execute(context.Background(), src, tgt, Options{
		Transform: transform.Config{Type: transform.ModeInline, Value: "greeting=concat('hi ', row.name)"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.RowsWritten)
	assert.NotNil(t, tgt.schema)
	assert.Contains(t, tgt.schema.Names(), "greeting")
}
