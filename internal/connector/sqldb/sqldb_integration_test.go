package sqldb

import (
	"context"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mysql"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"dte/internal/connector/sqldb/dialect"
	"dte/internal/value"
)

func TestMySQLRoundTripIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	container, err := mysql.Run(ctx, "mysql:8.0",
		mysql.WithDatabase("testdb"),
		mysql.WithUsername("root"),
		mysql.WithPassword("testpass"),
	)
	require.NoError(t, err, "failed to start MySQL container")
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	connStr, err := container.ConnectionString(ctx, "parseTime=true")
	require.NoError(t, err)
	host, port, user, pass := parseMySQLConnStr(t, connStr)

	ep := Endpoint{Dialect: dialect.MySQL, User: user, Password: pass, Host: host, Port: port, Database: "testdb", Table: "widgets"}

	schema := value.NewSchema(
		value.ColumnSpec{Name: "id", Type: value.TypeInteger(), Nullable: false},
		value.ColumnSpec{Name: "name", Type: value.TypeString(), Nullable: true},
	)

	tgt, err := NewTarget(ep)
	require.NoError(t, err)
	require.NoError(t, tgt.Open(ctx, schema))

	rows := []value.Row{
		value.NewRow(value.Field{Name: "id", Value: value.NewInteger(1)}, value.Field{Name: "name", Value: value.NewString("bolt")}),
		value.NewRow(value.Field{Name: "id", Value: value.NewInteger(2)}, value.Field{Name: "name", Value: value.NewString("nut")}),
	}
	require.NoError(t, tgt.WriteBatch(ctx, rows))
	require.NoError(t, tgt.Finalize(ctx))
	require.NoError(t, tgt.Close())

	src, err := NewSource(ep)
	require.NoError(t, err)
	require.NoError(t, src.Open(ctx))
	defer src.Close()

	got, err := src.NextBatch(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestPostgresRoundTripIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("testpass"),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	mappedPort, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)
	port, err := strconv.Atoi(mappedPort.Port())
	require.NoError(t, err)

	ep := Endpoint{Dialect: dialect.PostgreSQL, User: "postgres", Password: "testpass", Host: host, Port: port, Database: "testdb", Table: "widgets"}

	schema := value.NewSchema(
		value.ColumnSpec{Name: "id", Type: value.TypeInteger(), Nullable: false},
		value.ColumnSpec{Name: "name", Type: value.TypeString(), Nullable: true},
	)

	tgt, err := NewTarget(ep)
	require.NoError(t, err)
	require.NoError(t, tgt.Open(ctx, schema))

	rows := []value.Row{
		value.NewRow(value.Field{Name: "id", Value: value.NewInteger(1)}, value.Field{Name: "name", Value: value.NewString("bolt")}),
	}
	require.NoError(t, tgt.WriteBatch(ctx, rows))
	require.NoError(t, tgt.Finalize(ctx))
	require.NoError(t, tgt.Close())

	src, err := NewSource(ep)
	require.NoError(t, err)
	require.NoError(t, src.Open(ctx))
	defer src.Close()

	got, err := src.NextBatch(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

// parseMySQLConnStr extracts host/port/user/password from a go-sql-driver
// DSN shaped like "user:pass@tcp(host:port)/db?...", reusing net/url only
// for the query-string tail since the driver's DSN is not itself a URL.
func parseMySQLConnStr(t *testing.T, dsn string) (host string, port int, user string, pass string) {
	t.Helper()
	at := indexByte(dsn, '@')
	userinfo := dsn[:at]
	rest := dsn[at+1:]

	colon := indexByte(userinfo, ':')
	user = userinfo[:colon]
	pass = userinfo[colon+1:]

	open := indexByte(rest, '(')
	closeParen := indexByte(rest, ')')
	hostport := rest[open+1 : closeParen]
	hp, err := url.Parse("//" + hostport)
	require.NoError(t, err)
	host = hp.Hostname()
	port, err = strconv.Atoi(hp.Port())
	require.NoError(t, err)
	return host, port, user, pass
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}
