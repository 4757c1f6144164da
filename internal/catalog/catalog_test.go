package catalog

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/backupstate/internal/foundation/errors"
)

func openSQLite(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.sqlite")
	db, err := Open(t.Context(), "sqlite:file:"+path, "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func exec(t *testing.T, db *sql.DB, stmts ...string) {
	t.Helper()
	for _, s := range stmts {
		_, err := db.ExecContext(t.Context(), s)
		require.NoError(t, err, s)
	}
}

func TestTablesQueryPostgres(t *testing.T) {
	query, args, err := TablesQuery(DialectPostgres, "")
	require.NoError(t, err)
	assert.Contains(t, query, `"information_schema"."tables"`)
	assert.Contains(t, query, `"table_schema" = $1`)
	assert.Equal(t, []any{"public"}, args)

	_, args, err = TablesQuery(DialectPostgres, "tenant")
	require.NoError(t, err)
	assert.Equal(t, []any{"tenant"}, args)
}

func TestTablesQueryUnknownDialect(t *testing.T) {
	_, _, err := TablesQuery(Dialect("mysql"), "")
	require.Error(t, err)
}

func TestSQLiteTables(t *testing.T) {
	db := openSQLite(t)
	exec(t, db.SQL(),
		`CREATE TABLE users (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT)`,
		`CREATE TABLE sessions (id TEXT PRIMARY KEY)`,
		`CREATE VIEW active_users AS SELECT id FROM users`,
		`INSERT INTO users (name) VALUES ('a')`,
	)

	assert.Equal(t, DialectSQLite, db.Dialect())

	tables, err := db.Tables(t.Context())
	require.NoError(t, err)
	// sqlite_sequence is created by AUTOINCREMENT and must not be reported.
	assert.Equal(t, []string{"active_users", "sessions", "users"}, tables)
}

func TestSQLiteTablesEmpty(t *testing.T) {
	db := openSQLite(t)

	tables, err := db.Tables(t.Context())
	require.NoError(t, err)
	assert.NotNil(t, tables)
	assert.Empty(t, tables)
}

func TestListTablesQueryFailure(t *testing.T) {
	_, err := ListTables(t.Context(), failingQueryer{}, DialectSQLite, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestTablesAfterCloseIsDatabaseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.sqlite")
	db, err := Open(t.Context(), "sqlite:file:"+path, "")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = db.Tables(t.Context())
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryDatabase))
}

func TestParseURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		dialect Dialect
		driver  string
		dsn     string
		wantErr bool
	}{
		{name: "postgres url", url: "postgres://u:p@localhost:5432/app", dialect: DialectPostgres, driver: "pgx", dsn: "postgres://u:p@localhost:5432/app"},
		{name: "postgresql url", url: "postgresql://localhost/app", dialect: DialectPostgres, driver: "pgx", dsn: "postgresql://localhost/app"},
		{name: "keyword dsn", url: "host=localhost user=app dbname=app", dialect: DialectPostgres, driver: "pgx", dsn: "host=localhost user=app dbname=app"},
		{name: "sqlite file", url: "sqlite:file:./app.db", dialect: DialectSQLite, driver: "sqlite", dsn: "file:./app.db"},
		{name: "sqlite default", url: "sqlite:", dialect: DialectSQLite, driver: "sqlite", dsn: defaultSQLiteDSN},
		{name: "empty", url: "  ", wantErr: true},
		{name: "mysql", url: "mysql://localhost/app", wantErr: true},
		{name: "garbage", url: "not a dsn", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, err := ParseURL(tt.url)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.dialect, target.Dialect)
			assert.Equal(t, tt.driver, target.Driver)
			assert.Equal(t, tt.dsn, target.DSN)
		})
	}
}

func TestStaticReturnsCopy(t *testing.T) {
	src := Static{"users", "sessions"}
	got, err := src.Tables(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []string{"users", "sessions"}, got)

	got[0] = "mutated"
	assert.Equal(t, "users", src[0])
}

func TestUnavailableFails(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	got, err := Unavailable{Err: cause}.Tables(t.Context())
	require.ErrorIs(t, err, cause)
	assert.Nil(t, got)
}

type failingQueryer struct{}

func (failingQueryer) QueryContext(context.Context, string, ...any) (*sql.Rows, error) {
	return nil, errors.New("connection reset")
}
