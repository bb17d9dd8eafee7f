package dialect

import (
	"fmt"
	"strings"

	"dte/internal/value"
)

type mysqlDialect struct{}

func init() {
	Register(MySQL, func() Dialect { return mysqlDialect{} })
}

func (mysqlDialect) Name() Name         { return MySQL }
func (mysqlDialect) DriverName() string { return "mysql" }

func (mysqlDialect) DSN(user, password, host string, port int, database string) string {
	if port == 0 {
		port = 3306
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true", user, password, host, port, database)
}

func (mysqlDialect) QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (mysqlDialect) Placeholder(i int) string { return "?" }

func (mysqlDialect) ColumnType(col value.ColumnSpec) string {
	base := mysqlColumnType(col.Type)
	if !col.Nullable {
		return base + " NOT NULL"
	}
	return base
}

func mysqlColumnType(dt value.DataType) string {
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
		return "DATETIME"
	default:
		return "TEXT"
	}
}

func (mysqlDialect) ValueType(rawType string) value.DataType {
	switch base(rawType) {
	case "TINYINT", "SMALLINT", "MEDIUMINT", "INT", "INTEGER", "BIGINT", "YEAR":
		return value.TypeInteger()
	case "DECIMAL", "DEC", "NUMERIC", "FIXED", "FLOAT", "DOUBLE", "DOUBLE PRECISION":
		return value.TypeDecimal()
	case "BOOL", "BOOLEAN":
		return value.TypeBoolean()
	case "DATE":
		return value.TypeDate()
	case "DATETIME", "TIMESTAMP":
		return value.TypeDateTime()
	default:
		return value.TypeString()
	}
}

// base strips a parenthesized length/precision suffix and upper-cases the
// remaining type keyword, e.g. "varchar(255)" -> "VARCHAR".
func base(rawType string) string {
	s := strings.ToUpper(strings.TrimSpace(rawType))
	if idx := strings.IndexByte(s, '('); idx >= 0 {
		s = strings.TrimSpace(s[:idx])
	}
	return s
}
