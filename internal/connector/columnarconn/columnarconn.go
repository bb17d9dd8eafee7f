// Package columnarconn implements a zstd-compressed row-binary format: a
// small header (column names, declared types and nullability) followed by a
// stream of rows, each field a presence byte followed by a typed payload
// (see writeValue). The whole file is
// one zstd frame, read and written with klauspost/compress/zstd (the
// corpus's only compression library — it appears as an indirect dependency
// of the teacher repo's own toolchain; see DESIGN.md).
package columnarconn

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"

	"dte/internal/connector"
	"dte/internal/protocol"
	"dte/internal/value"
)

const magic = "DTE1"

func init() {
	protocol.RegisterFormat(protocol.Format{
		Name:       "columnar",
		Extensions: []string{"dtebin", "dtec"},
		SourceFactory: func(path, fragment string, opts connector.Options) (connector.Source, error) {
			return NewSource(path), nil
		},
		TargetFactory: func(path, fragment string, opts connector.Options) (connector.Target, error) {
			return NewTarget(path), nil
		},
	})
}

var kindByte = map[value.Kind]byte{
	value.KindString:   1,
	value.KindInteger:  2,
	value.KindDecimal:  3,
	value.KindBoolean:  4,
	value.KindDate:     5,
	value.KindDateTime: 6,
}

var byteKind = map[byte]value.Kind{
	1: value.KindString,
	2: value.KindInteger,
	3: value.KindDecimal,
	4: value.KindBoolean,
	5: value.KindDate,
	6: value.KindDateTime,
}

func dataTypeForKind(k value.Kind) value.DataType {
	switch k {
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

type source struct {
	path   string
	f      *os.File
	zr     *zstd.Decoder
	r      *bufio.Reader
	schema *value.Schema
	eof    bool
}

// NewSource builds a columnar-binary Source reading from path.
func NewSource(path string) connector.Source {
	return &source{path: path}
}

func (s *source) Open(ctx context.Context) error {
	f, err := os.Open(s.path)
	if err != nil {
		return err
	}
	s.f = f

	zr, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return err
	}
	s.zr = zr
	s.r = bufio.NewReader(zr)

	hdr := make([]byte, len(magic))
	if _, err := io.ReadFull(s.r, hdr); err != nil {
		return err
	}
	if string(hdr) != magic {
		return fmt.Errorf("columnarconn: bad magic %q", hdr)
	}

	numCols, err := readUvarint(s.r)
	if err != nil {
		return err
	}
	cols := make([]value.ColumnSpec, numCols)
	for i := range cols {
		name, err := readString(s.r)
		if err != nil {
			return err
		}
		kindB, err := s.r.ReadByte()
		if err != nil {
			return err
		}
		nullableB, err := s.r.ReadByte()
		if err != nil {
			return err
		}
		cols[i] = value.ColumnSpec{Name: name, Type: dataTypeForKind(byteKind[kindB]), Nullable: nullableB == 1}
	}
	s.schema = value.NewSchema(cols...)
	return nil
}

func (s *source) Schema(ctx context.Context) (*value.Schema, error) {
	return s.schema, nil
}

func (s *source) NextBatch(ctx context.Context, maxRows int) ([]value.Row, error) {
	if s.eof {
		return nil, connector.EOF
	}

	var rows []value.Row
	for len(rows) < maxRows {
		row, err := s.readRow()
		if err == io.EOF {
			s.eof = true
			break
		}
		if err != nil {
			return rows, err
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, connector.EOF
	}
	return rows, nil
}

func (s *source) readRow() (value.Row, error) {
	fields := make([]value.Field, len(s.schema.Columns))
	for i, col := range s.schema.Columns {
		present, err := s.r.ReadByte()
		if err == io.EOF && i == 0 {
			return value.Row{}, io.EOF
		}
		if err != nil {
			return value.Row{}, err
		}
		if present == 0 {
			fields[i] = value.Field{Name: col.Name, Value: value.Null()}
			continue
		}
		v, err := readValue(s.r, col.Type.Kind)
		if err != nil {
			return value.Row{}, err
		}
		fields[i] = value.Field{Name: col.Name, Value: v}
	}
	return value.NewRow(fields...), nil
}

func (s *source) Close() error {
	if s.zr != nil {
		s.zr.Close()
	}
	if s.f != nil {
		return s.f.Close()
	}
	return nil
}

type target struct {
	path        string
	f           *os.File
	zw          *zstd.Encoder
	schema      *value.Schema
	wroteHeader bool
}

// NewTarget builds a columnar-binary Target writing to path.
func NewTarget(path string) connector.Target {
	return &target{path: path}
}

func (t *target) Open(ctx context.Context, schema *value.Schema) error {
	t.schema = schema
	return nil
}

func (t *target) Exists(ctx context.Context) (bool, error) {
	info, err := os.Stat(t.path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return info.Size() > 0, nil
}

func (t *target) SupportsAppend() bool { return false }

func (t *target) Truncate(ctx context.Context) error {
	return nil
}

func (t *target) ensureOpen() error {
	if t.f != nil {
		return nil
	}
	f, err := os.Create(t.path)
	if err != nil {
		return err
	}
	t.f = f
	zw, err := zstd.NewWriter(f)
	if err != nil {
		f.Close()
		return err
	}
	t.zw = zw
	return nil
}

func (t *target) writeHeader() error {
	if _, err := t.zw.Write([]byte(magic)); err != nil {
		return err
	}
	if err := writeUvarint(t.zw, uint64(len(t.schema.Columns))); err != nil {
		return err
	}
	for _, col := range t.schema.Columns {
		if err := writeString(t.zw, col.Name); err != nil {
			return err
		}
		if _, err := t.zw.Write([]byte{kindByte[col.Type.Kind], boolByte(col.Nullable)}); err != nil {
			return err
		}
	}
	t.wroteHeader = true
	return nil
}

func (t *target) WriteBatch(ctx context.Context, rows []value.Row) error {
	if err := t.ensureOpen(); err != nil {
		return err
	}
	if !t.wroteHeader {
		if err := t.writeHeader(); err != nil {
			return err
		}
	}
	for _, row := range rows {
		for _, col := range t.schema.Columns {
			v, _ := row.Get(col.Name)
			if v.IsNull() {
				if _, err := t.zw.Write([]byte{0}); err != nil {
					return err
				}
				continue
			}
			if _, err := t.zw.Write([]byte{1}); err != nil {
				return err
			}
			if err := writeValue(t.zw, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func (t *target) Finalize(ctx context.Context) error {
	if t.zw != nil {
		return t.zw.Close()
	}
	return nil
}

func (t *target) Close() error {
	if t.f != nil {
		return t.f.Close()
	}
	return nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
