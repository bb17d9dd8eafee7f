package value

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// dateTimeLayouts are tried in order when parsing a DateTime out of a
// string; all are naive (no required offset), per §4.4's "accept naive"
// decision. A bare date is accepted last, as midnight on that day.
var dateTimeLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02",
}

var boolLiterals = map[string]bool{
	"true": true, "false": false,
	"1": true, "0": false,
	"yes": true, "no": false,
}

// CanonicalString renders any non-null Value in its canonical textual form,
// per the "Any non-null → String" rule in §4.1. Null has no canonical
// string form; callers must check IsNull first.
func CanonicalString(v Value) (string, error) {
	switch v.Kind() {
	case KindNull:
		return "", fmt.Errorf("value: cannot render null as string")
	case KindString:
		s, _ := v.StringVal()
		return s, nil
	case KindInteger:
		i, _ := v.IntegerVal()
		return strconv.FormatInt(i, 10), nil
	case KindDecimal:
		d, _ := v.DecimalVal()
		if d.Exponent() < 0 {
			// Keep the value's own scale: String() would drop trailing zeros.
			return d.StringFixed(-d.Exponent()), nil
		}
		return d.String(), nil
	case KindBoolean:
		b, _ := v.BooleanVal()
		if b {
			return "true", nil
		}
		return "false", nil
	case KindDate:
		d, _ := v.DateVal()
		return d.String(), nil
	case KindDateTime:
		t, _ := v.DateTimeVal()
		return t.Format("2006-01-02T15:04:05"), nil
	default:
		return "", fmt.Errorf("value: %s has no canonical string form", v.Kind())
	}
}

// CoerceTo converts v to the variant named by target, following the
// asymmetric coercion rules of §4.1. It never silently drops information:
// an unrepresentable conversion (e.g. a fractional Decimal to Integer)
// returns an error rather than truncating.
func CoerceTo(v Value, target DataType) (Value, error) {
	if v.IsNull() {
		return v, nil
	}
	if v.Kind() == target.Kind {
		return v, nil
	}

	switch target.Kind {
	case KindString:
		s, err := CanonicalString(v)
		if err != nil {
			return Value{}, err
		}
		return NewString(s), nil

	case KindInteger:
		switch v.Kind() {
		case KindString:
			s, _ := v.StringVal()
			i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
			if err != nil {
				return Value{}, fmt.Errorf("value: %q is not a valid integer: %w", s, err)
			}
			return NewInteger(i), nil
		case KindDecimal:
			d, _ := v.DecimalVal()
			if !d.Equal(d.Truncate(0)) {
				return Value{}, fmt.Errorf("value: decimal %s has a non-zero fractional part, cannot coerce to integer", d)
			}
			return NewInteger(d.IntPart()), nil
		}

	case KindDecimal:
		switch v.Kind() {
		case KindString:
			s, _ := v.StringVal()
			d, err := decimal.NewFromString(strings.TrimSpace(s))
			if err != nil {
				return Value{}, fmt.Errorf("value: %q is not a valid decimal: %w", s, err)
			}
			return NewDecimal(d), nil
		case KindInteger:
			i, _ := v.IntegerVal()
			return NewDecimal(decimal.NewFromInt(i)), nil
		}

	case KindBoolean:
		if v.Kind() == KindString {
			s, _ := v.StringVal()
			b, ok := boolLiterals[strings.ToLower(strings.TrimSpace(s))]
			if !ok {
				return Value{}, fmt.Errorf("value: %q is not a recognized boolean literal", s)
			}
			return NewBoolean(b), nil
		}

	case KindDateTime:
		if v.Kind() == KindString {
			s, _ := v.StringVal()
			t, ok := parseDateTime(s)
			if !ok {
				return Value{}, fmt.Errorf("value: %q is not a valid datetime", s)
			}
			return NewDateTime(t), nil
		}
		if v.Kind() == KindDate {
			d, _ := v.DateVal()
			return NewDateTime(d.Time()), nil
		}

	case KindDate:
		if v.Kind() == KindString {
			s, _ := v.StringVal()
			t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
			if err != nil {
				return Value{}, fmt.Errorf("value: %q is not a valid date: %w", s, err)
			}
			return NewDate(DateFromTime(t)), nil
		}
	}

	return Value{}, fmt.Errorf("value: cannot coerce %s to %s", v.Kind(), target)
}

func parseDateTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseBoolLiteral reports whether s is one of the recognized boolean
// literals (case-insensitive) and its value, used by schema inference to
// test whether every sample in a column parses as a boolean.
func ParseBoolLiteral(s string) (bool, bool) {
	b, ok := boolLiterals[strings.ToLower(strings.TrimSpace(s))]
	return b, ok
}

// ParseIntLiteral reports whether s parses as a signed 64-bit integer under
// the C locale (no grouping separators), used by schema inference.
func ParseIntLiteral(s string) (int64, bool) {
	i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return i, err == nil
}

// ParseDecimalLiteral reports whether s parses as a decimal literal under
// the C locale (`.` as the decimal point), used by schema inference.
func ParseDecimalLiteral(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	return d, err == nil
}

// ParseDateTimeLiteral reports whether s parses as a naive datetime.
func ParseDateTimeLiteral(s string) (time.Time, bool) {
	return parseDateTime(s)
}

// ParseDateLiteral reports whether s parses as a calendar date.
func ParseDateLiteral(s string) (Date, bool) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, false
	}
	return DateFromTime(t), true
}
