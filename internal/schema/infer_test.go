package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dte/internal/value"
)

func rowOf(fields ...value.Field) value.Row {
	return value.NewRow(fields...)
}

func column(s *value.Schema, name string) (value.ColumnSpec, bool) {
	i := s.IndexOf(name)
	if i < 0 {
		return value.ColumnSpec{}, false
	}
	return s.Columns[i], true
}

func TestInferPicksNarrowestConsistentType(t *testing.T) {
	rows := []value.Row{
		rowOf(value.Field{Name: "id", Value: value.NewString("1")}, value.Field{Name: "active", Value: value.NewString("true")}),
		rowOf(value.Field{Name: "id", Value: value.NewString("2")}, value.Field{Name: "active", Value: value.NewString("false")}),
	}

	s := Infer([]string{"id", "active"}, rows)
	idCol, ok := column(s, "id")
	assert.True(t, ok)
	assert.Equal(t, value.TypeInteger(), idCol.Type)

	activeCol, ok := column(s, "active")
	assert.True(t, ok)
	assert.Equal(t, value.TypeBoolean(), activeCol.Type)
	assert.True(t, activeCol.Nullable)
}

func TestInferWidensToStringOnMixedValues(t *testing.T) {
	rows := []value.Row{
		rowOf(value.Field{Name: "code", Value: value.NewString("1")}),
		rowOf(value.Field{Name: "code", Value: value.NewString("abc")}),
	}

	s := Infer([]string{"code"}, rows)
	col, _ := column(s, "code")
	assert.Equal(t, value.TypeString(), col.Type)
}

func TestInferIgnoresNullsWhenNarrowing(t *testing.T) {
	rows := []value.Row{
		rowOf(value.Field{Name: "id", Value: value.Null()}),
		rowOf(value.Field{Name: "id", Value: value.NewString("42")}),
	}

	s := Infer([]string{"id"}, rows)
	col, _ := column(s, "id")
	assert.Equal(t, value.TypeInteger(), col.Type)
}

func TestInferWidensMixedDateAndDateTimeToDateTime(t *testing.T) {
	rows := []value.Row{
		rowOf(value.Field{Name: "seen_at", Value: value.NewString("2024-01-15")}),
		rowOf(value.Field{Name: "seen_at", Value: value.NewString("2024-01-16T10:30:00")}),
	}

	s := Infer([]string{"seen_at"}, rows)
	col, ok := column(s, "seen_at")
	assert.True(t, ok)
	assert.Equal(t, value.TypeDateTime(), col.Type)
}

func TestInferDefaultsToStringWithNoEvidence(t *testing.T) {
	s := Infer([]string{"id"}, nil)
	col, _ := column(s, "id")
	assert.Equal(t, value.TypeString(), col.Type)
}
