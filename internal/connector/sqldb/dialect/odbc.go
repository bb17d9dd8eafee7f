package dialect

import (
	"fmt"
	"strings"

	"dte/internal/value"
)

type odbcDialect struct{}

func init() {
	Register(ODBC, func() Dialect { return odbcDialect{} })
}

func (odbcDialect) Name() Name         { return ODBC }
func (odbcDialect) DriverName() string { return "odbc" }

func (odbcDialect) DSN(user, password, host string, port int, database string) string {
	return fmt.Sprintf("DSN=%s;UID=%s;PWD=%s", database, user, password)
}

func (odbcDialect) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (odbcDialect) Placeholder(i int) string { return "?" }

func (odbcDialect) ColumnType(col value.ColumnSpec) string {
	base := odbcColumnType(col.Type)
	if !col.Nullable {
		return base + " NOT NULL"
	}
	return base
}

func odbcColumnType(dt value.DataType) string {
	switch dt.Kind {
	case value.KindInteger:
		return "BIGINT"
	case value.KindDecimal:
		return "DECIMAL(38,10)"
	case value.KindBoolean:
		return "BIT"
	case value.KindDate:
		return "DATE"
	case value.KindDateTime:
		return "DATETIME"
	default:
		return "VARCHAR(MAX)"
	}
}

func (odbcDialect) ValueType(rawType string) value.DataType {
	switch base(rawType) {
	case "TINYINT", "SMALLINT", "INT", "INTEGER", "BIGINT":
		return value.TypeInteger()
	case "DECIMAL", "NUMERIC", "REAL", "FLOAT", "DOUBLE", "MONEY":
		return value.TypeDecimal()
	case "BIT", "BOOLEAN", "BOOL":
		return value.TypeBoolean()
	case "DATE":
		return value.TypeDate()
	case "DATETIME", "TIMESTAMP", "DATETIME2":
		return value.TypeDateTime()
	default:
		return value.TypeString()
	}
}
