package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dte/internal/value"
)

func TestGetKnownDialects(t *testing.T) {
	for _, name := range []Name{MySQL, PostgreSQL, SQLite, DuckDB, ODBC} {
		d, err := Get(name)
		require.NoError(t, err)
		assert.Equal(t, name, d.Name())
	}
}

func TestGetUnknownDialect(t *testing.T) {
	_, err := Get("mssql")
	assert.Error(t, err)
}

func TestPostgresColumnTypeNotNull(t *testing.T) {
	d, err := Get(PostgreSQL)
	require.NoError(t, err)
	ddl := d.ColumnType(value.ColumnSpec{Name: "id", Type: value.TypeInteger(), Nullable: false})
	assert.Contains(t, ddl, "NOT NULL")
}

func TestMySQLValueTypeMapping(t *testing.T) {
	d, err := Get(MySQL)
	require.NoError(t, err)
	assert.Equal(t, value.TypeInteger(), d.ValueType("bigint"))
	assert.Equal(t, value.TypeDecimal(), d.ValueType("decimal(10,2)"))
	assert.Equal(t, value.TypeString(), d.ValueType("varchar(255)"))
	assert.Equal(t, value.TypeDateTime(), d.ValueType("datetime"))
}

func TestPlaceholderStyles(t *testing.T) {
	pg, _ := Get(PostgreSQL)
	assert.Equal(t, "$1", pg.Placeholder(1))

	my, _ := Get(MySQL)
	assert.Equal(t, "?", my.Placeholder(1))
}
