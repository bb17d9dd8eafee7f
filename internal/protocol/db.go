package protocol

import (
	"strings"

	"dte/internal/connector"
	"dte/internal/connector/sqldb"
	"dte/internal/connector/sqldb/dialect"
)

func init() {
	registerDBScheme(dialect.PostgreSQL)
	registerDBScheme(dialect.MySQL)
	registerDBScheme(dialect.SQLite)
	registerDBScheme(dialect.DuckDB)
	registerDBScheme(dialect.ODBC)
}

// registerDBScheme wires a SQL dialect into the Protocol registry under its
// own URI scheme name, dispatching straight to the sqldb connector rather
// than through format detection: a database endpoint's "format" is the
// driver itself (§4.2).
func registerDBScheme(d dialect.Name) {
	Register(Scheme{
		Name: string(d),
		SourceFactory: func(loc Location, opts connector.Options) (connector.Source, error) {
			return sqldb.NewSource(dbEndpoint(d, loc, opts))
		},
		TargetFactory: func(loc Location, opts connector.Options) (connector.Target, error) {
			return sqldb.NewTarget(dbEndpoint(d, loc, opts))
		},
	})
}

func dbEndpoint(d dialect.Name, loc Location, opts connector.Options) sqldb.Endpoint {
	database := loc.Path
	if d == dialect.SQLite || d == dialect.DuckDB {
		// Embedded engines address a file, not a host/database pair; the
		// Protocol layer still parses them through the same URI grammar,
		// with host+path reassembled into a filesystem path.
		database = strings.TrimSuffix(strings.TrimPrefix(loc.Host+"/"+loc.Path, "/"), "/")
		if database == "" {
			database = loc.Path
		}
	}
	return sqldb.Endpoint{
		Dialect:  d,
		User:     loc.User,
		Password: loc.Password,
		Host:     loc.Host,
		Port:     loc.PortOrDefault(0),
		Database: database,
		Table:    loc.Fragment,
		Query:    opts.GetDefault("query", ""),
	}
}
