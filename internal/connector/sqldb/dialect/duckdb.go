package dialect

import (
	"strings"

	"dte/internal/value"
)

type duckdbDialect struct{}

func init() {
	Register(DuckDB, func() Dialect { return duckdbDialect{} })
}

func (duckdbDialect) Name() Name         { return DuckDB }
func (duckdbDialect) DriverName() string { return "duckdb" }

func (duckdbDialect) DSN(user, password, host string, port int, database string) string {
	return database
}

func (duckdbDialect) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (duckdbDialect) Placeholder(i int) string { return "?" }

func (duckdbDialect) ColumnType(col value.ColumnSpec) string {
	base := duckdbColumnType(col.Type)
	if !col.Nullable {
		return base + " NOT NULL"
	}
	return base
}

func duckdbColumnType(dt value.DataType) string {
	switch dt.Kind {
	case value.KindInteger:
		return "BIGINT"
	case value.KindDecimal:
		return "DECIMAL(38,10)"
	case value.KindBoolean:
		return "BOOLEAN"
	case value.KindDate:
		return "DATE"
	case value.KindDateTime:
		return "TIMESTAMP"
	default:
		return "VARCHAR"
	}
}

func (duckdbDialect) ValueType(rawType string) value.DataType {
	switch base(rawType) {
	case "TINYINT", "SMALLINT", "INTEGER", "INT", "BIGINT", "HUGEINT":
		return value.TypeInteger()
	case "DECIMAL", "NUMERIC", "REAL", "DOUBLE", "FLOAT":
		return value.TypeDecimal()
	case "BOOLEAN", "BOOL":
		return value.TypeBoolean()
	case "DATE":
		return value.TypeDate()
	case "TIMESTAMP", "DATETIME":
		return value.TypeDateTime()
	default:
		return value.TypeString()
	}
}
