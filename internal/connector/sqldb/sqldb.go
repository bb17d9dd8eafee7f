// Package sqldb implements the Source and Target capability contracts over
// database/sql, dispatching DDL/DML and type mapping to a per-driver
// dialect (internal/connector/sqldb/dialect). It is the one connector the
// Protocol layer opens directly rather than through format dispatch (§4.2),
// since a DB endpoint's "format" is a driver, not a file extension.
package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	_ "github.com/duckdb/duckdb-go/v2"

	_ "github.com/alexbrainman/odbc"

	"dte/internal/connector"
	"dte/internal/connector/sqldb/dialect"
	"dte/internal/value"
	"dte/internal/xerr"
)

// Endpoint is the parsed connection identity the protocol layer hands the
// connector, independent of how the URI was spelled.
type Endpoint struct {
	Dialect  dialect.Name
	User     string
	Password string
	Host     string
	Port     int
	Database string
	Table    string
	Query    string // overrides the default SELECT * (source only, §4.2)
}

type source struct {
	endpoint Endpoint
	d        dialect.Dialect
	db       *sql.DB
	rows     *sql.Rows
	schema   *value.Schema
	colNames []string
	colTypes []*sql.ColumnType
}

// NewSource builds a sqldb Source for ep.
func NewSource(ep Endpoint) (connector.Source, error) {
	d, err := dialect.Get(ep.Dialect)
	if err != nil {
		return nil, xerr.Configuration("%v", err)
	}
	return &source{endpoint: ep, d: d}, nil
}

func (s *source) Open(ctx context.Context) error {
	db, err := sql.Open(s.d.DriverName(), s.d.DSN(s.endpoint.User, s.endpoint.Password, s.endpoint.Host, s.endpoint.Port, s.endpoint.Database))
	if err != nil {
		return xerr.Connection("opening %s connection: %v", s.endpoint.Dialect, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return xerr.Connection("connecting to %s: %v", s.endpoint.Dialect, err)
	}
	s.db = db

	query := s.endpoint.Query
	if query == "" {
		if s.endpoint.Table == "" {
			db.Close()
			return xerr.Configuration("%s source requires a #table fragment or a query option", s.endpoint.Dialect)
		}
		query = fmt.Sprintf("SELECT * FROM %s", s.d.QuoteIdentifier(s.endpoint.Table))
	} else if err := ValidateSingleSelect(query); err != nil {
		db.Close()
		return xerr.Configuration("query option rejected: %v", err)
	}

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		db.Close()
		return xerr.Connection("executing query: %v", err)
	}
	s.rows = rows

	cols, err := rows.Columns()
	if err != nil {
		return xerr.Connection("reading result columns: %v", err)
	}
	s.colNames = cols

	types, err := rows.ColumnTypes()
	if err != nil {
		return xerr.Connection("reading result column types: %v", err)
	}
	s.colTypes = types

	return nil
}

func (s *source) Schema(ctx context.Context) (*value.Schema, error) {
	if s.schema != nil {
		return s.schema, nil
	}
	cols := make([]value.ColumnSpec, len(s.colNames))
	for i, name := range s.colNames {
		nullable := true
		if s.colTypes[i] != nil {
			if n, ok := s.colTypes[i].Nullable(); ok {
				nullable = n
			}
		}
		dt := s.d.ValueType(s.colTypes[i].DatabaseTypeName())
		cols[i] = value.ColumnSpec{Name: name, Type: dt, Nullable: nullable}
	}
	s.schema = value.NewSchema(cols...)
	return s.schema, nil
}

func (s *source) NextBatch(ctx context.Context, maxRows int) ([]value.Row, error) {
	if s.rows == nil {
		return nil, connector.EOF
	}

	schema, err := s.Schema(ctx)
	if err != nil {
		return nil, err
	}

	scanDest := make([]any, len(s.colNames))
	scanBuf := make([]sql.NullString, len(s.colNames))
	for i := range scanBuf {
		scanDest[i] = &scanBuf[i]
	}

	var rows []value.Row
	for len(rows) < maxRows {
		if !s.rows.Next() {
			if err := s.rows.Err(); err != nil {
				return rows, xerr.Connection("reading result rows: %v", err)
			}
			if len(rows) == 0 {
				return nil, connector.EOF
			}
			return rows, nil
		}
		if err := s.rows.Scan(scanDest...); err != nil {
			return rows, xerr.Connection("scanning row: %v", err)
		}

		fields := make([]value.Field, len(s.colNames))
		for i, name := range s.colNames {
			if !scanBuf[i].Valid {
				fields[i] = value.Field{Name: name, Value: value.Null()}
				continue
			}
			v, err := value.CoerceTo(value.NewString(scanBuf[i].String), schema.Columns[i].Type)
			if err != nil {
				fields[i] = value.Field{Name: name, Value: value.NewString(scanBuf[i].String)}
				continue
			}
			fields[i] = value.Field{Name: name, Value: v}
		}
		rows = append(rows, value.NewRow(fields...))
	}
	return rows, nil
}

func (s *source) Close() error {
	var err error
	if s.rows != nil {
		err = s.rows.Close()
	}
	if s.db != nil {
		if dbErr := s.db.Close(); err == nil {
			err = dbErr
		}
	}
	return err
}

type target struct {
	endpoint Endpoint
	d        dialect.Dialect
	db       *sql.DB
	schema   *value.Schema
}

// NewTarget builds a sqldb Target for ep.
func NewTarget(ep Endpoint) (connector.Target, error) {
	d, err := dialect.Get(ep.Dialect)
	if err != nil {
		return nil, xerr.Configuration("%v", err)
	}
	if ep.Table == "" {
		return nil, xerr.Configuration("%s target requires a #table fragment", ep.Dialect)
	}
	return &target{endpoint: ep, d: d}, nil
}

func (t *target) Open(ctx context.Context, schema *value.Schema) error {
	db, err := sql.Open(t.d.DriverName(), t.d.DSN(t.endpoint.User, t.endpoint.Password, t.endpoint.Host, t.endpoint.Port, t.endpoint.Database))
	if err != nil {
		return xerr.Connection("opening %s connection: %v", t.endpoint.Dialect, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return xerr.Connection("connecting to %s: %v", t.endpoint.Dialect, err)
	}
	t.db = db
	t.schema = schema

	exists, err := t.Exists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		if err := t.createTable(ctx); err != nil {
			return xerr.Target("creating table %s: %v", t.endpoint.Table, err)
		}
	}
	return nil
}

func (t *target) createTable(ctx context.Context) error {
	defs := make([]string, len(t.schema.Columns))
	for i, col := range t.schema.Columns {
		defs[i] = fmt.Sprintf("%s %s", t.d.QuoteIdentifier(col.Name), t.d.ColumnType(col))
	}
	stmt := fmt.Sprintf("CREATE TABLE %s (%s)", t.d.QuoteIdentifier(t.endpoint.Table), strings.Join(defs, ", "))
	_, err := t.db.ExecContext(ctx, stmt)
	return err
}

func (t *target) Exists(ctx context.Context) (bool, error) {
	probe := fmt.Sprintf("SELECT 1 FROM %s WHERE 1=0", t.d.QuoteIdentifier(t.endpoint.Table))
	_, err := t.db.ExecContext(ctx, probe)
	return err == nil, nil
}

func (t *target) SupportsAppend() bool { return true }

func (t *target) Truncate(ctx context.Context) error {
	stmt := fmt.Sprintf("DELETE FROM %s", t.d.QuoteIdentifier(t.endpoint.Table))
	if _, err := t.db.ExecContext(ctx, stmt); err != nil {
		return xerr.Target("truncating %s: %v", t.endpoint.Table, err)
	}
	return nil
}

func (t *target) WriteBatch(ctx context.Context, rows []value.Row) error {
	if len(rows) == 0 {
		return nil
	}

	names := make([]string, len(t.schema.Columns))
	placeholders := make([]string, len(t.schema.Columns))
	for i, col := range t.schema.Columns {
		names[i] = t.d.QuoteIdentifier(col.Name)
		placeholders[i] = t.d.Placeholder(i + 1)
	}
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", t.d.QuoteIdentifier(t.endpoint.Table), strings.Join(names, ", "), strings.Join(placeholders, ", "))

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return xerr.Target("beginning transaction: %v", err)
	}
	prepared, err := tx.PrepareContext(ctx, stmt)
	if err != nil {
		tx.Rollback()
		return xerr.Target("preparing insert: %v", err)
	}
	defer prepared.Close()

	for _, row := range rows {
		args := make([]any, len(t.schema.Columns))
		for i, col := range t.schema.Columns {
			v, _ := row.Get(col.Name)
			args[i] = driverArg(v)
		}
		if _, err := prepared.ExecContext(ctx, args...); err != nil {
			tx.Rollback()
			return xerr.Target("inserting row: %v", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return xerr.Target("committing batch: %v", err)
	}
	return nil
}

// driverArg converts a Value to its database/sql-compatible native form,
// the one place driver-native types are touched (§9 "Typed row
// representation").
func driverArg(v value.Value) any {
	if v.IsNull() {
		return nil
	}
	switch v.Kind() {
	case value.KindInteger:
		i, _ := v.IntegerVal()
		return i
	case value.KindDecimal:
		d, _ := v.DecimalVal()
		return d.String()
	case value.KindBoolean:
		b, _ := v.BooleanVal()
		return b
	case value.KindDate:
		d, _ := v.DateVal()
		return d.String()
	case value.KindDateTime:
		t, _ := v.DateTimeVal()
		return t
	default:
		s, _ := v.StringVal()
		return s
	}
}

func (t *target) Finalize(ctx context.Context) error { return nil }

func (t *target) Close() error {
	if t.db != nil {
		return t.db.Close()
	}
	return nil
}
