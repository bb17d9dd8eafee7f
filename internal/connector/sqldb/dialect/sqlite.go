package dialect

import (
	"strings"

	"dte/internal/value"
)

type sqliteDialect struct{}

func init() {
	Register(SQLite, func() Dialect { return sqliteDialect{} })
}

func (sqliteDialect) Name() Name         { return SQLite }
func (sqliteDialect) DriverName() string { return "sqlite" }

// DSN for sqlite is just the database file path; user/password/host/port
// are not meaningful and are ignored.
func (sqliteDialect) DSN(user, password, host string, port int, database string) string {
	return database
}

func (sqliteDialect) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (sqliteDialect) Placeholder(i int) string { return "?" }

func (sqliteDialect) ColumnType(col value.ColumnSpec) string {
	base := sqliteColumnType(col.Type)
	if !col.Nullable {
		return base + " NOT NULL"
	}
	return base
}

func sqliteColumnType(dt value.DataType) string {
	switch dt.Kind {
	case value.KindInteger:
		return "INTEGER"
	case value.KindDecimal:
		return "NUMERIC"
	case value.KindBoolean:
		return "BOOLEAN"
	case value.KindDate:
		return "DATE"
	case value.KindDateTime:
		return "DATETIME"
	default:
		return "TEXT"
	}
}

func (sqliteDialect) ValueType(rawType string) value.DataType {
	switch base(rawType) {
	case "INTEGER", "INT", "BIGINT", "TINYINT", "SMALLINT", "MEDIUMINT":
		return value.TypeInteger()
	case "NUMERIC", "DECIMAL", "REAL", "DOUBLE", "FLOAT":
		return value.TypeDecimal()
	case "BOOLEAN", "BOOL":
		return value.TypeBoolean()
	case "DATE":
		return value.TypeDate()
	case "DATETIME", "TIMESTAMP":
		return value.TypeDateTime()
	default:
		return value.TypeString()
	}
}
