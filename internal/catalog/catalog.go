package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// DefaultSchema is the schema inspected when none is configured.
const DefaultSchema = "public"

// TableSource reports the current table inventory of a data store.
type TableSource interface {
	Tables(ctx context.Context) ([]string, error)
}

// Queryer is the connection handle introspection queries run against.
// *sql.DB, *sql.Conn and *sql.Tx all satisfy it.
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Dialect identifies the SQL flavour of a data store.
type Dialect string

const (
	DialectPostgres Dialect = dialect.Postgres
	DialectSQLite   Dialect = dialect.SQLite
)

// TablesQuery builds the introspection query for d.
// schema only applies to Postgres.
func TablesQuery(d Dialect, schema string) (string, []any, error) {
	switch d {
	case DialectPostgres:
		if schema == "" {
			schema = DefaultSchema
		}
		query, args := entsql.Dialect(dialect.Postgres).
			Select("table_name").
			From(entsql.Table("tables").Schema("information_schema")).
			Where(entsql.EQ("table_schema", schema)).
			OrderBy("table_name").
			Query()
		return query, args, nil
	case DialectSQLite:
		query, args := entsql.Dialect(dialect.SQLite).
			Select("name").
			From(entsql.Table("sqlite_master")).
			Where(entsql.And(
				entsql.In("type", "table", "view"),
				entsql.Not(entsql.Like("name", "sqlite_%")),
			)).
			OrderBy("name").
			Query()
		return query, args, nil
	default:
		return "", nil, fmt.Errorf("unsupported dialect: %q", d)
	}
}

// ListTables runs the introspection query for d against q.
func ListTables(ctx context.Context, q Queryer, d Dialect, schema string) ([]string, error) {
	query, args, err := TablesQuery(d, schema)
	if err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	tables := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tables: %w", err)
	}
	return tables, nil
}

// Static is a TableSource with a fixed inventory.
type Static []string

// Tables returns a copy of the fixed inventory.
func (s Static) Tables(context.Context) ([]string, error) {
	out := make([]string, len(s))
	copy(out, s)
	return out, nil
}

// Unavailable is a TableSource for a data store that could not be opened.
// Every query fails with Err.
type Unavailable struct {
	Err error
}

func (u Unavailable) Tables(context.Context) ([]string, error) {
	return nil, u.Err
}
