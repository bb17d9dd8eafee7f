package spreadsheetconn

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"dte/internal/value"
)

func writeWorkbook(t *testing.T, sheet string, header []string, rows [][]string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "in.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", sheet))
	for i, name := range header {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, cell, name))
	}
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, v))
		}
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
	return path
}

func TestSourceReadsSheetByFragment(t *testing.T) {
	path := writeWorkbook(t, "EmployeeData", []string{"id", "name"}, [][]string{{"1", "alice"}, {"2", "bob"}})

	src := NewSource(path, "EmployeeData")
	ctx := context.Background()
	require.NoError(t, src.Open(ctx))
	defer src.Close()

	sc, err := src.Schema(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, sc.Names())

	batch, err := src.NextBatch(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, batch, 2)
}

func TestTargetWritesNamedSheet(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.xlsx")
	sc := value.NewSchema(
		value.ColumnSpec{Name: "id", Type: value.TypeInteger()},
		value.ColumnSpec{Name: "name", Type: value.TypeString()},
	)

	tgt := NewTarget(path, "EmployeeData")
	ctx := context.Background()
	require.NoError(t, tgt.Open(ctx, sc))
	require.NoError(t, tgt.WriteBatch(ctx, []value.Row{
		value.NewRow(value.Field{Name: "id", Value: value.NewInteger(1)}, value.Field{Name: "name", Value: value.NewString("alice")}),
	}))
	require.NoError(t, tgt.Finalize(ctx))
	require.NoError(t, tgt.Close())

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("EmployeeData")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"id", "name"}, rows[0])
	assert.Equal(t, []string{"1", "alice"}, rows[1])
}
