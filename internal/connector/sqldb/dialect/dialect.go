// Package dialect isolates the per-database differences the sqldb connector
// needs: placeholder syntax, identifier quoting, and the raw-type vocabulary
// used to map a value.DataType to a CREATE TABLE column type and back. It
// follows the same registry-of-constructors shape the teacher repo uses for
// its SQL dialect generators, generalized from DDL diffing to data-transfer
// type mapping.
package dialect

import (
	"fmt"
	"sync"

	"dte/internal/value"
)

// Name identifies a supported SQL dialect. Values match the Protocol-layer
// URI scheme for the database (§4.2).
type Name string

const (
	MySQL      Name = "mysql"
	PostgreSQL Name = "postgresql"
	SQLite     Name = "sqlite"
	DuckDB     Name = "duckdb"
	ODBC       Name = "odbc"
)

// Dialect is the capability set the sqldb connector needs from a specific
// database driver.
type Dialect interface {
	Name() Name

	// DriverName is the database/sql driver name to pass to sql.Open.
	DriverName() string

	// DSN builds a driver-specific data source name from connection
	// parameters already parsed out of the endpoint URI.
	DSN(user, password, host string, port int, database string) string

	// QuoteIdentifier quotes a table/column name for safe interpolation
	// into generated DDL/DML (placeholders cover values, never identifiers).
	QuoteIdentifier(name string) string

	// Placeholder returns the parameter marker for the i'th bound value
	// (1-based), since drivers disagree ($1 vs ? vs :name).
	Placeholder(i int) string

	// ColumnType renders the DDL type for a schema column.
	ColumnType(col value.ColumnSpec) string

	// ValueType maps a raw database column type name back to a DataType,
	// used to type the columns of a source query's result set.
	ValueType(rawType string) value.DataType
}

var (
	mu       sync.RWMutex
	registry = map[Name]func() Dialect{}
)

// Register adds a dialect to the registry. Called from each per-dialect
// file's init().
func Register(name Name, ctor func() Dialect) {
	mu.Lock()
	defer mu.Unlock()
	registry[name] = ctor
}

// Get returns the dialect for name, or an error if unregistered.
func Get(name Name) (Dialect, error) {
	mu.RLock()
	ctor, ok := registry[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("dialect: %q is not registered", name)
	}
	return ctor(), nil
}
