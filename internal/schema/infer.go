// Package schema implements the schema subsystem: inference from sampled
// rows and explicit schema-document loading (§4.4 of SPEC_FULL.md).
// Validation and projection themselves live in internal/value, next to the
// Row/Schema types they operate on; this package only produces Schemas.
package schema

import (
	"dte/internal/value"
)

// DefaultSampleSize is N in "sample of the first N rows" (§4.4).
const DefaultSampleSize = 100

// columnKind tracks, per column, the widest DataType kind seen so far under
// the widening lattice Integer < Decimal, Date < DateTime, else String, plus
// whether every non-null sample parsed as a boolean literal.
type columnKind struct {
	sawAny      bool
	allBoolean  bool
	allInteger  bool
	allDecimal  bool
	allDate     bool
	allDateTime bool
}

// Infer builds a Schema from sampled rows, in column order order. Every
// inferred column is nullable, per §3's invariant that sample data cannot
// prove the absence of nulls. If rows is empty, Infer returns a schema with
// every named column typed String (the most general type), since an
// empty sample carries no type evidence; callers that want "empty sample is
// an error" (e.g. a strict CLI flag) should check len(rows) themselves —
// the engine's default path treats an empty source as the documented
// boundary behavior (§8), not a SchemaInference failure.
func Infer(order []string, rows []value.Row) *value.Schema {
	kinds := make(map[string]*columnKind, len(order))
	for _, name := range order {
		kinds[name] = &columnKind{allBoolean: true, allInteger: true, allDecimal: true, allDate: true, allDateTime: true}
	}

	for _, row := range rows {
		for _, name := range order {
			v, ok := row.Get(name)
			if !ok || v.IsNull() {
				continue
			}
			k := kinds[name]
			k.sawAny = true
			updateKind(k, v)
		}
	}

	cols := make([]value.ColumnSpec, len(order))
	for i, name := range order {
		cols[i] = value.ColumnSpec{Name: name, Type: resolveType(kinds[name]), Nullable: true}
	}
	return value.NewSchema(cols...)
}

// updateKind narrows k's candidate kinds given a newly observed non-null
// value. A value always has a String representation, so allBoolean/
// allInteger/allDecimal/allDate/allDateTime are only kept true while every
// sample so far has parsed under that stricter type.
func updateKind(k *columnKind, v value.Value) {
	s, isString := v.StringVal()
	if !isString {
		// Connectors that already carry typed values (JSON, columnar, SQL
		// result sets) short-circuit straight to their native kind.
		k.allBoolean = false
		k.allInteger = k.allInteger && v.Kind() == value.KindInteger
		k.allDecimal = k.allDecimal && (v.Kind() == value.KindInteger || v.Kind() == value.KindDecimal)
		k.allDate = k.allDate && v.Kind() == value.KindDate
		k.allDateTime = k.allDateTime && (v.Kind() == value.KindDate || v.Kind() == value.KindDateTime)
		return
	}

	if _, ok := value.ParseBoolLiteral(s); !ok {
		k.allBoolean = false
	}
	if _, ok := value.ParseIntLiteral(s); !ok {
		k.allInteger = false
	}
	if _, ok := value.ParseDecimalLiteral(s); !ok {
		k.allDecimal = false
	}
	_, isDate := value.ParseDateLiteral(s)
	_, isDateTime := value.ParseDateTimeLiteral(s)
	if !isDate {
		k.allDate = false
	}
	// A bare date is also a valid DateTime (midnight), so a column mixing
	// Date and DateTime samples still widens to DateTime rather than String.
	if !isDate && !isDateTime {
		k.allDateTime = false
	}
}

// resolveType picks the most specific type that accepted every sample,
// under the lattice declared in §4.4: Integer < Decimal, Date < DateTime,
// else String. Boolean only wins if every sample parsed as a boolean
// literal (checked ahead of the numeric/date lattice since "1"/"0" would
// otherwise also satisfy Integer).
func resolveType(k *columnKind) value.DataType {
	if !k.sawAny {
		return value.TypeString()
	}
	switch {
	case k.allBoolean:
		return value.TypeBoolean()
	case k.allInteger:
		return value.TypeInteger()
	case k.allDecimal:
		return value.TypeDecimal()
	case k.allDate:
		return value.TypeDate()
	case k.allDateTime:
		return value.TypeDateTime()
	default:
		return value.TypeString()
	}
}
