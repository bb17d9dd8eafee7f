// Package spreadsheetconn implements the Source/Target contracts for .xlsx
// workbooks via xuri/excelize/v2, the spreadsheet library used throughout
// the data-tooling examples in the reference corpus (see DESIGN.md). The
// URI fragment selects the sheet; it defaults to the workbook's first
// sheet for sources and to "Sheet1" for new targets, matching the example
// `employees.xlsx#Sheet1 → out.xlsx#EmployeeData` round trip (§8).
package spreadsheetconn

import (
	"context"
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"

	"dte/internal/connector"
	"dte/internal/protocol"
	"dte/internal/schema"
	"dte/internal/value"
)

func init() {
	protocol.RegisterFormat(protocol.Format{
		Name:       "spreadsheet",
		Extensions: []string{"xlsx"},
		SourceFactory: func(path, fragment string, opts connector.Options) (connector.Source, error) {
			return NewSource(path, fragment), nil
		},
		TargetFactory: func(path, fragment string, opts connector.Options) (connector.Target, error) {
			return NewTarget(path, fragment), nil
		},
	})
}

type source struct {
	path       string
	sheet      string
	f          *excelize.File
	header     []string
	rowsIter   [][]string
	cursor     int
	sampleRows []value.Row
	schema     *value.Schema
	sampled    bool
}

// NewSource builds a spreadsheet Source reading sheet from the workbook at
// path. An empty sheet selects the workbook's first sheet.
func NewSource(path, sheet string) connector.Source {
	return &source{path: path, sheet: sheet}
}

func (s *source) Open(ctx context.Context) error {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return err
	}
	s.f = f

	if s.sheet == "" {
		s.sheet = f.GetSheetName(0)
	}

	rows, err := f.GetRows(s.sheet)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("spreadsheetconn: sheet %q is empty", s.sheet)
	}
	s.header = rows[0]
	s.rowsIter = rows[1:]
	return nil
}

func rowFromCells(header []string, cells []string) value.Row {
	fields := make([]value.Field, len(header))
	for i, name := range header {
		if i < len(cells) && cells[i] != "" {
			fields[i] = value.Field{Name: name, Value: value.NewString(cells[i])}
		} else {
			fields[i] = value.Field{Name: name, Value: value.Null()}
		}
	}
	return value.NewRow(fields...)
}

func (s *source) ensureSampled() error {
	if s.sampled {
		return nil
	}
	s.sampled = true
	for s.cursor < len(s.rowsIter) && len(s.sampleRows) < schema.DefaultSampleSize {
		s.sampleRows = append(s.sampleRows, rowFromCells(s.header, s.rowsIter[s.cursor]))
		s.cursor++
	}
	s.schema = schema.Infer(s.header, s.sampleRows)
	return nil
}

func (s *source) Schema(ctx context.Context) (*value.Schema, error) {
	if err := s.ensureSampled(); err != nil {
		return nil, err
	}
	return s.schema, nil
}

func (s *source) NextBatch(ctx context.Context, maxRows int) ([]value.Row, error) {
	if err := s.ensureSampled(); err != nil {
		return nil, err
	}

	var batch []value.Row
	for len(s.sampleRows) > 0 && len(batch) < maxRows {
		batch = append(batch, s.sampleRows[0])
		s.sampleRows = s.sampleRows[1:]
	}
	for s.cursor < len(s.rowsIter) && len(batch) < maxRows {
		batch = append(batch, rowFromCells(s.header, s.rowsIter[s.cursor]))
		s.cursor++
	}

	if len(batch) == 0 {
		return nil, connector.EOF
	}
	return batch, nil
}

func (s *source) Close() error {
	if s.f != nil {
		return s.f.Close()
	}
	return nil
}

type target struct {
	path   string
	sheet  string
	f      *excelize.File
	schema *value.Schema
	row    int
}

// NewTarget builds a spreadsheet Target writing sheet into the workbook at
// path. An empty sheet defaults to "Sheet1".
func NewTarget(path, sheet string) connector.Target {
	if sheet == "" {
		sheet = "Sheet1"
	}
	return &target{path: path, sheet: sheet}
}

func (t *target) Open(ctx context.Context, schema *value.Schema) error {
	t.schema = schema
	return nil
}

func (t *target) Exists(ctx context.Context) (bool, error) {
	_, err := os.Stat(t.path)
	if os.IsNotExist(err) {
		return false, nil
	}
	return err == nil, nil
}

func (t *target) SupportsAppend() bool { return false }

func (t *target) Truncate(ctx context.Context) error { return nil }

func (t *target) ensureOpen() error {
	if t.f != nil {
		return nil
	}
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", t.sheet); err != nil {
		if idx, err2 := f.NewSheet(t.sheet); err2 == nil {
			f.SetActiveSheet(idx)
		}
	}
	t.f = f

	for i, col := range t.schema.Columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(t.sheet, cell, col.Name); err != nil {
			return err
		}
	}
	t.row = 1
	return nil
}

func (t *target) WriteBatch(ctx context.Context, rows []value.Row) error {
	if err := t.ensureOpen(); err != nil {
		return err
	}
	for _, row := range rows {
		t.row++
		for i, col := range t.schema.Columns {
			cell, err := excelize.CoordinatesToCellName(i+1, t.row)
			if err != nil {
				return err
			}
			v, _ := row.Get(col.Name)
			if v.IsNull() {
				continue
			}
			s, err := value.CanonicalString(v)
			if err != nil {
				return err
			}
			if err := t.f.SetCellValue(t.sheet, cell, s); err != nil {
				return err
			}
		}
	}
	return nil
}

func (t *target) Finalize(ctx context.Context) error {
	if t.f == nil {
		return nil
	}
	return t.f.SaveAs(t.path)
}

func (t *target) Close() error {
	if t.f != nil {
		return t.f.Close()
	}
	return nil
}
