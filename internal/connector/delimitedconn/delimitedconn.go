// Package delimitedconn implements the Source/Target contracts for
// delimited text (CSV/TSV), using only encoding/csv: no delimited-text
// library appears anywhere in the reference corpus, so this is the one
// format connector built on the standard library alone (see DESIGN.md).
package delimitedconn

import (
	"context"
	"encoding/csv"
	"io"
	"os"

	"dte/internal/connector"
	"dte/internal/protocol"
	"dte/internal/schema"
	"dte/internal/value"
)

func init() {
	protocol.RegisterFormat(protocol.Format{
		Name:       "csv",
		Extensions: []string{"csv", "tsv", "txt"},
		SourceFactory: func(path, fragment string, opts connector.Options) (connector.Source, error) {
			return NewSource(path, opts), nil
		},
		TargetFactory: func(path, fragment string, opts connector.Options) (connector.Target, error) {
			return NewTarget(path, opts), nil
		},
	})
}

func delimiterFor(opts connector.Options) rune {
	d := opts.GetDefault("delimiter", ",")
	if d == "tab" || d == "\\t" {
		return '\t'
	}
	return rune(d[0])
}

type source struct {
	path       string
	opts       connector.Options
	f          *os.File
	reader     *csv.Reader
	header     []string
	schema     *value.Schema
	sampleRows []value.Row
	sampled    bool
}

// NewSource builds a delimited-text Source reading from path.
func NewSource(path string, opts connector.Options) connector.Source {
	return &source{path: path, opts: opts}
}

func (s *source) Open(ctx context.Context) error {
	f, err := os.Open(s.path)
	if err != nil {
		return err
	}
	s.f = f
	r := csv.NewReader(f)
	r.Comma = delimiterFor(s.opts)
	r.FieldsPerRecord = -1
	s.reader = r

	header, err := r.Read()
	if err != nil {
		f.Close()
		return err
	}
	s.header = header
	return nil
}

// ensureSampled buffers up to schema.DefaultSampleSize rows for inference
// before serving any to NextBatch, since the schema must be known before
// the first row is yielded (§4.4).
func (s *source) ensureSampled() error {
	if s.sampled {
		return nil
	}
	s.sampled = true

	for len(s.sampleRows) < schema.DefaultSampleSize {
		record, err := s.reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		s.sampleRows = append(s.sampleRows, rowFromRecord(s.header, record))
	}
	s.schema = schema.Infer(s.header, s.sampleRows)
	return nil
}

func rowFromRecord(header []string, record []string) value.Row {
	fields := make([]value.Field, len(header))
	for i, name := range header {
		var v value.Value
		if i < len(record) {
			v = value.NewString(record[i])
		} else {
			v = value.Null()
		}
		fields[i] = value.Field{Name: name, Value: v}
	}
	return value.NewRow(fields...)
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

	for len(batch) < maxRows {
		record, err := s.reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return batch, err
		}
		batch = append(batch, rowFromRecord(s.header, record))
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
	opts   connector.Options
	f      *os.File
	writer *csv.Writer
	schema *value.Schema
}

// NewTarget builds a delimited-text Target writing to path.
func NewTarget(path string, opts connector.Options) connector.Target {
	return &target{path: path, opts: opts}
}

func (t *target) Open(ctx context.Context, schema *value.Schema) error {
	t.schema = schema
	return nil
}

func (t *target) openFile(append bool) error {
	flags := os.O_CREATE | os.O_WRONLY
	if append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(t.path, flags, 0o644)
	if err != nil {
		return err
	}
	t.f = f
	w := csv.NewWriter(f)
	w.Comma = delimiterFor(t.opts)
	t.writer = w

	if !append {
		if err := w.Write(t.schema.Names()); err != nil {
			return err
		}
	}
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

func (t *target) SupportsAppend() bool { return true }

func (t *target) Truncate(ctx context.Context) error {
	if t.f != nil {
		t.f.Close()
		t.f = nil
	}
	return t.openFile(false)
}

func (t *target) WriteBatch(ctx context.Context, rows []value.Row) error {
	if t.writer == nil {
		exists, err := t.Exists(ctx)
		if err != nil {
			return err
		}
		if err := t.openFile(exists); err != nil {
			return err
		}
	}
	for _, row := range rows {
		record := make([]string, len(t.schema.Columns))
		for i, col := range t.schema.Columns {
			v, _ := row.Get(col.Name)
			if v.IsNull() {
				record[i] = ""
				continue
			}
			s, err := value.CanonicalString(v)
			if err != nil {
				return err
			}
			record[i] = s
		}
		if err := t.writer.Write(record); err != nil {
			return err
		}
	}
	t.writer.Flush()
	return t.writer.Error()
}

func (t *target) Finalize(ctx context.Context) error {
	if t.writer != nil {
		t.writer.Flush()
		return t.writer.Error()
	}
	return nil
}

func (t *target) Close() error {
	if t.f != nil {
		return t.f.Close()
	}
	return nil
}
