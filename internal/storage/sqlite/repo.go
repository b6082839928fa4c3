// Package sqlite implements a SQLite-backed storage.Dataset on the pure-Go
// modernc.org/sqlite driver. Schema changes are plain ALTER TABLE statements;
// values are filled by a single UPDATE per target column.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	// SQLite driver (pure Go, no cgo).
	_ "modernc.org/sqlite"

	"fieldnorm/internal/ddl"
	"fieldnorm/internal/schema"
	"fieldnorm/internal/storage/sqldb"
	sqliteddl "fieldnorm/internal/storage/sqlite/ddl"
)

// Kind is the storage kind this package registers.
const Kind = "sqlite"

// Open connects to the database and returns a Dataset for cfg.Table.
// SQLite compares identifiers case-insensitively (ASCII), so the dataset
// reports case-insensitive names.
func Open(ctx context.Context, cfg Config) (*sqldb.Dataset, error) {
	db, err := sqldb.Open(ctx, "sqlite", withBusyTimeout(cfg.DSN))
	if err != nil {
		return nil, err
	}
	return sqldb.New(db, cfg.Table, sqliteddl.Dialect, Catalog, true), nil
}

// busyTimeoutPragma is applied by the driver to every pooled connection.
const busyTimeoutPragma = "_pragma=busy_timeout(5000)"

// withBusyTimeout adds busyTimeoutPragma to dsn unless it already sets a
// busy timeout.
func withBusyTimeout(dsn string) string {
	if strings.TrimSpace(dsn) == "" || strings.Contains(dsn, "busy_timeout") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&" + busyTimeoutPragma
	}
	return dsn + "?" + busyTimeoutPragma
}

// Catalog lists table columns with pragma_table_info. A "schema.table" name
// is looked up in that attached database.
func Catalog(ctx context.Context, db *sql.DB, table string) ([]schema.FieldDescriptor, error) {
	dbName, name := sqldb.SplitFQN(table, "main")

	rows, err := db.QueryContext(ctx,
		`SELECT name, type, "notnull" FROM pragma_table_info(?, ?) ORDER BY cid`,
		name, dbName)
	if err != nil {
		return nil, fmt.Errorf("query pragma_table_info: %w", err)
	}
	defer rows.Close()

	var out []schema.FieldDescriptor
	for rows.Next() {
		var (
			colName, decl string
			notNull       int
		)
		if err := rows.Scan(&colName, &decl, &notNull); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		typ, args := sqliteddl.FieldType(decl)
		fd := schema.FieldDescriptor{Name: colName, Type: typ, Nullable: notNull == 0}
		switch typ {
		case schema.Text:
			fd.Length = ddl.Arg(args, 0)
		case schema.Decimal, schema.Double:
			fd.Precision = ddl.Arg(args, 0)
			fd.Scale = ddl.Arg(args, 1)
		}
		out = append(out, fd)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate columns: %w", err)
	}
	return out, nil
}
