// Package transform implements the two Transformer modes named in §4.5:
// additive inline expressions (github.com/Knetic/govaluate) and projective
// Lua scripts (github.com/yuin/gopher-lua). Both are sandboxed evaluators
// with no I/O and no access to the host environment, per §9.
package transform

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dte/internal/value"
	"dte/internal/xerr"
)

func readTransformFile(path string) (body string, ext string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", err
	}
	return string(data), strings.ToLower(filepath.Ext(path)), nil
}

// Mode names the Transformer configuration's type field.
type Mode string

const (
	ModeNone   Mode = "none"
	ModeInline Mode = "inline"
	ModeFile   Mode = "file"
	ModeScript Mode = "script"
)

// Config mirrors the `transform: { type, value }` block of a run
// configuration document (§6).
type Config struct {
	Type  Mode
	Value string
}

// Transformer applies a row-level transformation. A row being dropped
// (script mode only) is signalled by skipped=true with a zero Row.
type Transformer interface {
	Apply(row value.Row) (out value.Row, skipped bool, err error)
}

// noneTransformer passes every row through unchanged.
type noneTransformer struct{}

func (noneTransformer) Apply(row value.Row) (value.Row, bool, error) { return row, false, nil }

// New builds the Transformer named by cfg.Type. ModeFile reads its script
// or expression text from the path in cfg.Value and dispatches by
// extension: ".lua" runs as a script transform, anything else as inline
// expressions.
func New(cfg Config) (Transformer, error) {
	switch cfg.Type {
	case "", ModeNone:
		return noneTransformer{}, nil
	case ModeInline:
		return NewInline(cfg.Value)
	case ModeScript:
		return NewScript(cfg.Value)
	case ModeFile:
		return newFileBacked(cfg.Value)
	default:
		return nil, xerr.Configuration("unknown transform type %q", cfg.Type)
	}
}

func newFileBacked(path string) (Transformer, error) {
	body, ext, err := readTransformFile(path)
	if err != nil {
		return nil, xerr.Configuration("reading transform file %s: %v", path, err)
	}
	if ext == ".lua" {
		return NewScript(body)
	}
	return NewInline(body)
}

// rowGetter is the minimal read-only view both engines bind under the name
// "row" in their sandboxes (§4.5: "a read-only row view").
func rowGetter(row value.Row, name string) (interface{}, error) {
	v, ok := row.Get(name)
	if !ok || v.IsNull() {
		return nil, nil
	}
	switch v.Kind() {
	case value.KindString:
		s, _ := v.StringVal()
		return s, nil
	case value.KindInteger:
		i, _ := v.IntegerVal()
		return float64(i), nil
	case value.KindDecimal:
		d, _ := v.DecimalVal()
		f, _ := d.Float64()
		return f, nil
	case value.KindBoolean:
		b, _ := v.BooleanVal()
		return b, nil
	case value.KindDate:
		d, _ := v.DateVal()
		return d.String(), nil
	case value.KindDateTime:
		t, _ := v.DateTimeVal()
		return t.Format("2006-01-02T15:04:05"), nil
	default:
		return nil, fmt.Errorf("transform: column %q has no scalar representation", name)
	}
}
