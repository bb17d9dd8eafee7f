package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func employeeSchema() *Schema {
	return NewSchema(
		ColumnSpec{Name: "id", Type: TypeInteger(), Nullable: true},
		ColumnSpec{Name: "name", Type: TypeString(), Nullable: true},
		ColumnSpec{Name: "email", Type: TypeString(), Nullable: false},
	)
}

func TestValidateOrdersColumnsLikeSchema(t *testing.T) {
	schema := employeeSchema()
	row := NewRow(
		Field{Name: "email", Value: NewString("a@example.com")},
		Field{Name: "id", Value: NewString("1")},
		Field{Name: "name", Value: NewString("Ada")},
	)

	out, err := Validate(row, schema, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name", "email"}, out.Names())

	idVal, _ := out.Get("id")
	i, ok := idVal.IntegerVal()
	require.True(t, ok)
	assert.Equal(t, int64(1), i)
}

func TestValidateRejectsNullInNonNullableColumn(t *testing.T) {
	schema := employeeSchema()
	row := NewRow(
		Field{Name: "id", Value: NewInteger(1)},
		Field{Name: "name", Value: NewString("Ada")},
		Field{Name: "email", Value: Null()},
	)

	_, err := Validate(row, schema, 3)
	require.Error(t, err)
	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "email", fe.Column)
	assert.Equal(t, 3, fe.RowIndex)
}

func TestValidateFillsMissingWithDefault(t *testing.T) {
	def := NewString("unknown@example.com")
	schema := NewSchema(
		ColumnSpec{Name: "id", Type: TypeInteger(), Nullable: true},
		ColumnSpec{Name: "email", Type: TypeString(), Nullable: false, Default: &def},
	)
	row := NewRow(Field{Name: "id", Value: NewInteger(1)})

	out, err := Validate(row, schema, 0)
	require.NoError(t, err)
	email, _ := out.Get("email")
	s, _ := email.StringVal()
	assert.Equal(t, "unknown@example.com", s)
}

func TestValidateFillsMissingNullableWithNull(t *testing.T) {
	schema := NewSchema(
		ColumnSpec{Name: "id", Type: TypeInteger(), Nullable: true},
		ColumnSpec{Name: "nickname", Type: TypeString(), Nullable: true},
	)
	row := NewRow(Field{Name: "id", Value: NewInteger(1)})

	out, err := Validate(row, schema, 0)
	require.NoError(t, err)
	nick, _ := out.Get("nickname")
	assert.True(t, nick.IsNull())
}

func TestValidateRejectsMissingRequiredWithNoDefault(t *testing.T) {
	schema := employeeSchema()
	row := NewRow(Field{Name: "id", Value: NewInteger(1)})

	_, err := Validate(row, schema, 0)
	require.Error(t, err)
}

func TestValidateDropsExtraColumns(t *testing.T) {
	schema := NewSchema(ColumnSpec{Name: "id", Type: TypeInteger(), Nullable: true})
	row := NewRow(
		Field{Name: "id", Value: NewInteger(1)},
		Field{Name: "extra", Value: NewString("dropped")},
	)

	out, err := Validate(row, schema, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"id"}, out.Names())
}

func TestValidateEnforcesStringPattern(t *testing.T) {
	schema := NewSchema(ColumnSpec{
		Name: "sku", Type: TypeString(), Nullable: false, Pattern: `^[A-Z]{3}-\d+$`,
	})

	_, err := Validate(NewRow(Field{Name: "sku", Value: NewString("ABC-123")}), schema, 0)
	require.NoError(t, err)

	_, err = Validate(NewRow(Field{Name: "sku", Value: NewString("nope")}), schema, 0)
	require.Error(t, err)
}

func TestProjectReordersAndFillsDefaults(t *testing.T) {
	schema := NewSchema(
		ColumnSpec{Name: "a", Type: TypeString(), Nullable: true},
		ColumnSpec{Name: "b", Type: TypeString(), Nullable: true},
	)
	row := NewRow(Field{Name: "b", Value: NewString("B")})

	out := Project(row, schema)
	assert.Equal(t, []string{"a", "b"}, out.Names())
	a, _ := out.Get("a")
	assert.True(t, a.IsNull())
}

func TestSchemaAllNullable(t *testing.T) {
	schema := NewSchema(
		ColumnSpec{Name: "a", Nullable: true},
		ColumnSpec{Name: "b", Nullable: true},
	)
	assert.True(t, schema.AllNullable())

	schema.Columns[1].Nullable = false
	assert.False(t, schema.AllNullable())
}
