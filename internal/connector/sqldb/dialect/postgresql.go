package dialect

import (
	"fmt"
	"strconv"
	"strings"

	"dte/internal/value"
)

type postgresDialect struct{}

func init() {
	Register(PostgreSQL, func() Dialect { return postgresDialect{} })
}

func (postgresDialect) Name() Name         { return PostgreSQL }
func (postgresDialect) DriverName() string { return "postgres" }

func (postgresDialect) DSN(user, password, host string, port int, database string) string {
	if port == 0 {
		port = 5432
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable", user, password, host, port, database)
}

func (postgresDialect) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (postgresDialect) Placeholder(i int) string { return "$" + strconv.Itoa(i) }

func (postgresDialect) ColumnType(col value.ColumnSpec) string {
	base := postgresColumnType(col.Type)
	if !col.Nullable {
		return base + " NOT NULL"
	}
	return base
}

func postgresColumnType(dt value.DataType) string {
	switch dt.Kind {
	case value.KindInteger:
		return "BIGINT"
	case value.KindDecimal:
		return "NUMERIC(38,10)"
	case value.KindBoolean:
		return "BOOLEAN"
	case value.KindDate:
		return "DATE"
	case value.KindDateTime:
		return "TIMESTAMP"
	default:
		return "TEXT"
	}
}

func (postgresDialect) ValueType(rawType string) value.DataType {
	switch base(rawType) {
	case "SMALLINT", "INT2", "INTEGER", "INT", "INT4", "BIGINT", "INT8", "SMALLSERIAL", "SERIAL", "SERIAL2", "SERIAL4", "BIGSERIAL", "SERIAL8":
		return value.TypeInteger()
	case "DECIMAL", "NUMERIC", "REAL", "FLOAT4", "DOUBLE PRECISION", "FLOAT8", "FLOAT", "MONEY":
		return value.TypeDecimal()
	case "BOOLEAN", "BOOL":
		return value.TypeBoolean()
	case "DATE":
		return value.TypeDate()
	case "TIMESTAMP", "TIMESTAMPTZ", "TIMESTAMP WITHOUT TIME ZONE", "TIMESTAMP WITH TIME ZONE":
		return value.TypeDateTime()
	default:
		return value.TypeString()
	}
}
