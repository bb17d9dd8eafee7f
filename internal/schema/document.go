package schema

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"dte/internal/value"
	"dte/internal/xerr"
)

// document is the YAML shape of a schema document (§4.4/§6).
type document struct {
	Columns []documentColumn `yaml:"columns"`
}

type documentColumn struct {
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Nullable    bool   `yaml:"nullable"`
	Default     any    `yaml:"default"`
	Pattern     string `yaml:"pattern"`
	Description string `yaml:"description"`
}

var typeNames = map[string]value.DataType{
	"string":   value.TypeString(),
	"integer":  value.TypeInteger(),
	"decimal":  value.TypeDecimal(),
	"boolean":  value.TypeBoolean(),
	"date":     value.TypeDate(),
	"datetime": value.TypeDateTime(),
}

// LoadDocument reads an explicit schema document from path. A loaded
// document REPLACES inference and is authoritative for nullability,
// defaults, and string patterns (§4.4).
func LoadDocument(path string) (*value.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, xerr.Configuration("reading schema file %s: %v", path, err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, xerr.Configuration("parsing schema file %s: %v", path, err)
	}

	cols := make([]value.ColumnSpec, len(doc.Columns))
	for i, dc := range doc.Columns {
		if dc.Name == "" {
			return nil, xerr.Configuration("schema file %s: column %d has no name", path, i)
		}
		dt, ok := typeNames[dc.Type]
		if !ok {
			return nil, xerr.Configuration("schema file %s: column %q has unknown type %q", path, dc.Name, dc.Type)
		}

		col := value.ColumnSpec{
			Name:        dc.Name,
			Type:        dt,
			Nullable:    dc.Nullable,
			Pattern:     dc.Pattern,
			Description: dc.Description,
		}

		if dc.Default != nil {
			v, err := defaultValue(dc.Default, dt)
			if err != nil {
				return nil, xerr.Configuration("schema file %s: column %q: %v", path, dc.Name, err)
			}
			col.Default = &v
		}

		cols[i] = col
	}

	return value.NewSchema(cols...), nil
}

// defaultValue converts a YAML-decoded literal (string, bool, int, float)
// into a Value coerced to dt.
func defaultValue(raw any, dt value.DataType) (value.Value, error) {
	switch t := raw.(type) {
	case string:
		return value.CoerceTo(value.NewString(t), dt)
	case bool:
		return value.CoerceTo(value.NewBoolean(t), dt)
	case int:
		return value.CoerceTo(value.NewInteger(int64(t)), dt)
	case int64:
		return value.CoerceTo(value.NewInteger(t), dt)
	case float64:
		return value.CoerceTo(value.NewString(fmt.Sprintf("%v", t)), dt)
	default:
		return value.Value{}, fmt.Errorf("unsupported default literal type %T", raw)
	}
}
