package jsonconn

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dte/internal/value"
)

func writeJSON(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "in.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestSourceReadsRowsInColumnOrder(t *testing.T) {
	path := writeJSON(t, `[{"id":1,"name":"alice"},{"id":2,"name":"bob"}]`)
	src := NewSource(path)
	ctx := context.Background()
	require.NoError(t, src.Open(ctx))
	defer src.Close()

	sc, err := src.Schema(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, sc.Names())
	assert.Equal(t, value.TypeInteger(), sc.Columns[0].Type)

	batch, err := src.NextBatch(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, batch, 2)
}

func TestSourceRejectsNonArrayTop(t *testing.T) {
	path := writeJSON(t, `{"id":1}`)
	src := NewSource(path)
	err := src.Open(context.Background())
	assert.Error(t, err)
}

func TestTargetWritesValidJSONArray(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")
	sc := value.NewSchema(
		value.ColumnSpec{Name: "id", Type: value.TypeInteger()},
		value.ColumnSpec{Name: "name", Type: value.TypeString()},
	)

	tgt := NewTarget(path)
	ctx := context.Background()
	require.NoError(t, tgt.Open(ctx, sc))
	require.NoError(t, tgt.WriteBatch(ctx, []value.Row{
		value.NewRow(value.Field{Name: "id", Value: value.NewInteger(1)}, value.Field{Name: "name", Value: value.NewString("alice")}),
		value.NewRow(value.Field{Name: "id", Value: value.NewInteger(2)}, value.Field{Name: "name", Value: value.NewString("bob")}),
	}))
	require.NoError(t, tgt.Finalize(ctx))
	require.NoError(t, tgt.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1,"name":"alice"},{"id":2,"name":"bob"}]`, string(data))
}
