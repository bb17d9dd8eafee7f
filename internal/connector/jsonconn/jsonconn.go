// Package jsonconn implements the Source/Target contracts for a JSON array
// of row objects, using github.com/goccy/go-json in place of encoding/json
// for its faster Decoder/Encoder (grounded on the xorm example repo's use
// of the same library for row scanning — see DESIGN.md).
package jsonconn

import (
	"context"
	"fmt"
	"io"
	"os"

	gojson "github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"dte/internal/connector"
	"dte/internal/protocol"
	"dte/internal/schema"
	"dte/internal/value"
)

func init() {
	protocol.RegisterFormat(protocol.Format{
		Name:       "json",
		Extensions: []string{"json"},
		SourceFactory: func(path, fragment string, opts connector.Options) (connector.Source, error) {
			return NewSource(path), nil
		},
		TargetFactory: func(path, fragment string, opts connector.Options) (connector.Target, error) {
			return NewTarget(path), nil
		},
	})
}

type source struct {
	path       string
	f          *os.File
	dec        *gojson.Decoder
	order      []string
	sampleRows []value.Row
	schema     *value.Schema
	sampled    bool
	exhausted  bool
}

// NewSource builds a JSON-array Source reading from path.
func NewSource(path string) connector.Source {
	return &source{path: path}
}

func (s *source) Open(ctx context.Context) error {
	f, err := os.Open(s.path)
	if err != nil {
		return err
	}
	s.f = f
	dec := gojson.NewDecoder(f)
	tok, err := dec.Token()
	if err != nil {
		f.Close()
		return err
	}
	if delim, ok := tok.(gojson.Delim); !ok || delim != '[' {
		f.Close()
		return fmt.Errorf("jsonconn: expected top-level JSON array, got %v", tok)
	}
	s.dec = dec
	return nil
}

// readObject decodes the next JSON object in the array, preserving its key
// order, or returns io.EOF when the array is exhausted.
func (s *source) readObject() (value.Row, error) {
	if !s.dec.More() {
		return value.Row{}, io.EOF
	}

	tok, err := s.dec.Token()
	if err != nil {
		return value.Row{}, err
	}
	if delim, ok := tok.(gojson.Delim); !ok || delim != '{' {
		return value.Row{}, fmt.Errorf("jsonconn: expected object in array, got %v", tok)
	}

	var fields []value.Field
	for s.dec.More() {
		keyTok, err := s.dec.Token()
		if err != nil {
			return value.Row{}, err
		}
		name, ok := keyTok.(string)
		if !ok {
			return value.Row{}, fmt.Errorf("jsonconn: expected object key, got %v", keyTok)
		}

		var raw gojson.RawMessage
		if err := s.dec.Decode(&raw); err != nil {
			return value.Row{}, err
		}
		v, err := decodeValue(raw)
		if err != nil {
			return value.Row{}, err
		}

		fields = append(fields, value.Field{Name: name, Value: v})
		if !containsName(s.order, name) {
			s.order = append(s.order, name)
		}
	}
	if _, err := s.dec.Token(); err != nil { // consume closing '}'
		return value.Row{}, err
	}
	return value.NewRow(fields...), nil
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// decodeValue converts a raw JSON scalar/array/object into a Value. Objects
// and arrays nest as KindMap/KindArray; scalars carry their natural JSON
// kind, a number becoming an Integer when it has no fractional part and a
// Decimal otherwise (JSON has no Date/DateTime literal, so those arrive as
// strings and are coerced later against the schema, same as delimited
// text).
func decodeValue(raw gojson.RawMessage) (value.Value, error) {
	var any interface{}
	if err := gojson.Unmarshal(raw, &any); err != nil {
		return value.Value{}, err
	}
	return fromAny(any), nil
}

func fromAny(a interface{}) value.Value {
	switch t := a.(type) {
	case nil:
		return value.Null()
	case string:
		return value.NewString(t)
	case bool:
		return value.NewBoolean(t)
	case float64:
		if t == float64(int64(t)) {
			return value.NewInteger(int64(t))
		}
		return value.NewDecimal(decimal.NewFromFloat(t))
	case []interface{}:
		items := make([]value.Value, len(t))
		for i, item := range t {
			items[i] = fromAny(item)
		}
		return value.NewArray(items)
	case map[string]interface{}:
		m := make(map[string]value.Value, len(t))
		for k, v := range t {
			m[k] = fromAny(v)
		}
		return value.NewMap(m)
	default:
		return value.NewString(fmt.Sprintf("%v", t))
	}
}

func (s *source) ensureSampled() error {
	if s.sampled {
		return nil
	}
	s.sampled = true

	for len(s.sampleRows) < schema.DefaultSampleSize {
		row, err := s.readObject()
		if err == io.EOF {
			s.exhausted = true
			break
		}
		if err != nil {
			return err
		}
		s.sampleRows = append(s.sampleRows, row)
	}
	s.schema = schema.Infer(s.order, s.sampleRows)
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

	for !s.exhausted && len(batch) < maxRows {
		row, err := s.readObject()
		if err == io.EOF {
			s.exhausted = true
			break
		}
		if err != nil {
			return batch, err
		}
		batch = append(batch, row)
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
	f      *os.File
	schema *value.Schema
	wrote  bool
}

// NewTarget builds a JSON-array Target writing to path.
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
	if t.f != nil {
		t.f.Close()
		t.f = nil
	}
	return nil
}

func (t *target) open() error {
	f, err := os.Create(t.path)
	if err != nil {
		return err
	}
	t.f = f
	if _, err := f.WriteString("["); err != nil {
		return err
	}
	return nil
}

func (t *target) WriteBatch(ctx context.Context, rows []value.Row) error {
	if t.f == nil {
		if err := t.open(); err != nil {
			return err
		}
	}
	for _, row := range rows {
		if t.wrote {
			if _, err := t.f.WriteString(","); err != nil {
				return err
			}
		}
		if _, err := t.f.Write(orderedObject(t.schema, row)); err != nil {
			return err
		}
		t.wrote = true
	}
	return nil
}

// orderedObject renders row's fields in schema column order by writing the
// object's braces and commas itself and marshalling each key and value
// separately with goccy/go-json, since a plain Go map would not preserve
// column order in the output.
func orderedObject(schema *value.Schema, row value.Row) gojson.RawMessage {
	buf := []byte("{")
	for i, col := range schema.Columns {
		if i > 0 {
			buf = append(buf, ',')
		}
		keyJSON, _ := gojson.Marshal(col.Name)
		buf = append(buf, keyJSON...)
		buf = append(buf, ':')
		v, _ := row.Get(col.Name)
		valJSON, _ := gojson.Marshal(toAny(v))
		buf = append(buf, valJSON...)
	}
	buf = append(buf, '}')
	return gojson.RawMessage(buf)
}

func toAny(v value.Value) interface{} {
	if v.IsNull() {
		return nil
	}
	switch v.Kind() {
	case value.KindInteger:
		i, _ := v.IntegerVal()
		return i
	case value.KindBoolean:
		b, _ := v.BooleanVal()
		return b
	case value.KindArray:
		arr, _ := v.ArrayVal()
		out := make([]interface{}, len(arr))
		for i, item := range arr {
			out[i] = toAny(item)
		}
		return out
	case value.KindMap:
		m, _ := v.MapVal()
		out := make(map[string]interface{}, len(m))
		for k, item := range m {
			out[k] = toAny(item)
		}
		return out
	default:
		s, err := value.CanonicalString(v)
		if err != nil {
			return nil
		}
		return s
	}
}

func (t *target) Finalize(ctx context.Context) error {
	if t.f == nil {
		return nil
	}
	_, err := t.f.WriteString("]")
	return err
}

func (t *target) Close() error {
	if t.f != nil {
		return t.f.Close()
	}
	return nil
}
