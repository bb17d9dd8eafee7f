package columnarconn

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dte/internal/value"
)

func TestRoundTripPreservesTypesAndNulls(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.dtebin")

	sc := value.NewSchema(
		value.ColumnSpec{Name: "id", Type: value.TypeInteger()},
		value.ColumnSpec{Name: "name", Type: value.TypeString(), Nullable: true},
		value.ColumnSpec{Name: "active", Type: value.TypeBoolean()},
	)

	ctx := context.Background()
	tgt := NewTarget(path)
	require.NoError(t, tgt.Open(ctx, sc))
	require.NoError(t, tgt.WriteBatch(ctx, []value.Row{
		value.NewRow(
			value.Field{Name: "id", Value: value.NewInteger(7)},
			value.Field{Name: "name", Value: value.Null()},
			value.Field{Name: "active", Value: value.NewBoolean(true)},
		),
	}))
	require.NoError(t, tgt.Finalize(ctx))
	require.NoError(t, tgt.Close())

	src := NewSource(path)
	require.NoError(t, src.Open(ctx))
	defer src.Close()

	got, err := src.Schema(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name", "active"}, got.Names())

	batch, err := src.NextBatch(ctx, 10)
	require.NoError(t, err)
	require.Len(t, batch, 1)

	idVal, _ := batch[0].Get("id")
	i, ok := idVal.IntegerVal()
	require.True(t, ok)
	assert.Equal(t, int64(7), i)

	nameVal, _ := batch[0].Get("name")
	assert.True(t, nameVal.IsNull())

	activeVal, _ := batch[0].Get("active")
	b, ok := activeVal.BooleanVal()
	require.True(t, ok)
	assert.True(t, b)
}
