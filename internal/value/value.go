// Package value implements the universal typed row representation shared by
// every Protocol, Connector, and Transformer in this codebase: a closed
// DataType sum, a tagged Value variant, and the ColumnSpec/Schema/Row types
// built on top of them. No connector touches a driver-native type directly;
// conversion to and from Value happens at the connector boundary (§4.1, §4.3
// of SPEC_FULL.md).
package value

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Kind is the closed sum of variants a Value or DataType can carry.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindInteger
	KindDecimal
	KindBoolean
	KindDate
	KindDateTime
	KindArray
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindDecimal:
		return "decimal"
	case KindBoolean:
		return "boolean"
	case KindDate:
		return "date"
	case KindDateTime:
		return "datetime"
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// DataType describes the declared type of a column. Elem is only meaningful
// for KindArray (the element type) and KindMap (the value type; map keys are
// always strings), per §3.
type DataType struct {
	Kind Kind
	Elem *DataType
}

func TypeString() DataType   { return DataType{Kind: KindString} }
func TypeInteger() DataType  { return DataType{Kind: KindInteger} }
func TypeDecimal() DataType  { return DataType{Kind: KindDecimal} }
func TypeBoolean() DataType  { return DataType{Kind: KindBoolean} }
func TypeDate() DataType     { return DataType{Kind: KindDate} }
func TypeDateTime() DataType { return DataType{Kind: KindDateTime} }

func TypeArray(elem DataType) DataType { return DataType{Kind: KindArray, Elem: &elem} }
func TypeMap(elem DataType) DataType   { return DataType{Kind: KindMap, Elem: &elem} }

func (t DataType) String() string {
	switch t.Kind {
	case KindArray:
		return fmt.Sprintf("array<%s>", t.Elem)
	case KindMap:
		return fmt.Sprintf("map<string,%s>", t.Elem)
	default:
		return t.Kind.String()
	}
}

func (t DataType) Equal(o DataType) bool {
	if t.Kind != o.Kind {
		return false
	}
	if t.Elem == nil || o.Elem == nil {
		return t.Elem == o.Elem
	}
	return t.Elem.Equal(*o.Elem)
}

// Date is a calendar date with no time-of-day or zone component.
type Date struct {
	Year, Month, Day int
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

func (d Date) Time() time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
}

func DateFromTime(t time.Time) Date {
	return Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
}

// Value is a tagged variant over the DataType sum. Small variants (Integer,
// Boolean, Date) are stored inline; String/Decimal/Array/Map are stored on
// the heap via their natural Go representation. The zero Value is Null.
type Value struct {
	kind Kind

	i    int64
	b    bool
	date Date
	dt   time.Time
	s    string
	dec  decimal.Decimal
	arr  []Value
	m    map[string]Value
}

func Null() Value                     { return Value{kind: KindNull} }
func NewString(s string) Value        { return Value{kind: KindString, s: s} }
func NewInteger(i int64) Value        { return Value{kind: KindInteger, i: i} }
func NewDecimal(d decimal.Decimal) Value { return Value{kind: KindDecimal, dec: d} }
func NewBoolean(b bool) Value          { return Value{kind: KindBoolean, b: b} }
func NewDate(d Date) Value             { return Value{kind: KindDate, date: d} }

// NewDateTime stores t as given, with no implicit zone conversion: a naive
// timestamp is carried as "unspecified zone", per the Open Questions
// decision recorded in SPEC_FULL.md §9.
func NewDateTime(t time.Time) Value { return Value{kind: KindDateTime, dt: t} }

func NewArray(items []Value) Value          { return Value{kind: KindArray, arr: items} }
func NewMap(m map[string]Value) Value       { return Value{kind: KindMap, m: m} }

func (v Value) Kind() Kind    { return v.kind }
func (v Value) IsNull() bool  { return v.kind == KindNull }

func (v Value) StringVal() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.s, true
}

func (v Value) IntegerVal() (int64, bool) {
	if v.kind != KindInteger {
		return 0, false
	}
	return v.i, true
}

func (v Value) DecimalVal() (decimal.Decimal, bool) {
	if v.kind != KindDecimal {
		return decimal.Decimal{}, false
	}
	return v.dec, true
}

func (v Value) BooleanVal() (bool, bool) {
	if v.kind != KindBoolean {
		return false, false
	}
	return v.b, true
}

func (v Value) DateVal() (Date, bool) {
	if v.kind != KindDate {
		return Date{}, false
	}
	return v.date, true
}

func (v Value) DateTimeVal() (time.Time, bool) {
	if v.kind != KindDateTime {
		return time.Time{}, false
	}
	return v.dt, true
}

func (v Value) ArrayVal() ([]Value, bool) {
	if v.kind != KindArray {
		return nil, false
	}
	return v.arr, true
}

func (v Value) MapVal() (map[string]Value, bool) {
	if v.kind != KindMap {
		return nil, false
	}
	return v.m, true
}

// Equal compares two Values structurally. Array and Map comparisons recurse.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.s == o.s
	case KindInteger:
		return v.i == o.i
	case KindDecimal:
		return v.dec.Equal(o.dec)
	case KindBoolean:
		return v.b == o.b
	case KindDate:
		return v.date == o.date
	case KindDateTime:
		return v.dt.Equal(o.dt)
	case KindArray:
		if len(v.arr) != len(o.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(o.arr[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(v.m) != len(o.m) {
			return false
		}
		for k, vv := range v.m {
			ov, ok := o.m[k]
			if !ok || !vv.Equal(ov) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
