package value

import "fmt"

// ColumnSpec describes one column of a Schema. Column names are
// case-sensitive and unique within a Schema (§3).
type ColumnSpec struct {
	Name        string
	Type        DataType
	Nullable    bool
	Default     *Value
	Pattern     string // regex, only meaningful when Type.Kind == KindString
	Description string
}

// Schema is an ordered sequence of ColumnSpec. Order is semantically
// meaningful: it is the canonical projection order for position-oriented
// formats (§3).
type Schema struct {
	Columns []ColumnSpec
}

func NewSchema(cols ...ColumnSpec) *Schema {
	return &Schema{Columns: cols}
}

// IndexOf returns the position of name in the schema, or -1.
func (s *Schema) IndexOf(name string) int {
	for i, c := range s.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// AllNullable reports whether every column in s is nullable. Inferred
// schemas always satisfy this (§8).
func (s *Schema) AllNullable() bool {
	for _, c := range s.Columns {
		if !c.Nullable {
			return false
		}
	}
	return true
}

func (s *Schema) Names() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// Field is one (name, Value) pair of a Row.
type Field struct {
	Name  string
	Value Value
}

// Row is an ordered sequence of (name, Value) pairs. Before validation a Row
// may carry its natural source order; after Validate, its order matches the
// owning Schema (§3).
type Row struct {
	Fields []Field
}

func NewRow(fields ...Field) Row {
	return Row{Fields: fields}
}

// Get returns the Value for name and whether it was present.
func (r Row) Get(name string) (Value, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return Value{}, false
}

// Names returns the Row's field names in their current order.
func (r Row) Names() []string {
	names := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		names[i] = f.Name
	}
	return names
}

// FieldError describes a single-column validation failure, carrying enough
// detail for the engine's fail-fast DataValidation report (§7): row index,
// column, expected type, and offending value.
type FieldError struct {
	RowIndex int
	Column   string
	Expected DataType
	Value    Value
	Reason   string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("row %d: column %q: expected %s: %s", e.RowIndex, e.Column, e.Expected, e.Reason)
}

// Validate produces a Row whose Values match schema's ColumnSpecs in order,
// or fails with a *FieldError. rowIndex is carried through only for error
// reporting. Missing columns are filled from Default, else Null if
// nullable, else rejected. Extra columns present in row but absent from
// schema are dropped silently, per §4.1.
func Validate(row Row, schema *Schema, rowIndex int) (Row, error) {
	out := Row{Fields: make([]Field, len(schema.Columns))}

	for i, col := range schema.Columns {
		v, present := row.Get(col.Name)
		if !present {
			switch {
			case col.Default != nil:
				v = *col.Default
			case col.Nullable:
				v = Null()
			default:
				return Row{}, &FieldError{
					RowIndex: rowIndex,
					Column:   col.Name,
					Expected: col.Type,
					Value:    Null(),
					Reason:   "missing value for non-nullable column with no default",
				}
			}
		}

		if v.IsNull() {
			if !col.Nullable {
				return Row{}, &FieldError{
					RowIndex: rowIndex,
					Column:   col.Name,
					Expected: col.Type,
					Value:    v,
					Reason:   "null value for non-nullable column",
				}
			}
			out.Fields[i] = Field{Name: col.Name, Value: v}
			continue
		}

		coerced, err := CoerceTo(v, col.Type)
		if err != nil {
			return Row{}, &FieldError{
				RowIndex: rowIndex,
				Column:   col.Name,
				Expected: col.Type,
				Value:    v,
				Reason:   err.Error(),
			}
		}

		if col.Type.Kind == KindString && col.Pattern != "" {
			if err := matchPattern(col, coerced); err != nil {
				return Row{}, &FieldError{
					RowIndex: rowIndex,
					Column:   col.Name,
					Expected: col.Type,
					Value:    v,
					Reason:   err.Error(),
				}
			}
		}

		out.Fields[i] = Field{Name: col.Name, Value: coerced}
	}

	return out, nil
}

// Project reorders row to match schema's column order, filling missing
// columns with default-or-null and dropping columns absent from schema.
// Unlike Validate, Project does not coerce or reject — it assumes row was
// already validated (or is a Transformer output already typed per §4.5) and
// only reshuffles column order for position-oriented targets (§4.4).
func Project(row Row, schema *Schema) Row {
	out := Row{Fields: make([]Field, len(schema.Columns))}
	for i, col := range schema.Columns {
		v, present := row.Get(col.Name)
		if !present {
			switch {
			case col.Default != nil:
				v = *col.Default
			default:
				v = Null()
			}
		}
		out.Fields[i] = Field{Name: col.Name, Value: v}
	}
	return out
}
