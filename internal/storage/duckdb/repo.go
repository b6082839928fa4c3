// Package duckdb implements a DuckDB dataset on duckdb-go. A DSN is the path
// of a database file.
package duckdb

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/duckdb/duckdb-go/v2" // registers the "duckdb" driver

	"fieldnorm/internal/schema"
	duckddl "fieldnorm/internal/storage/duckdb/ddl"
	"fieldnorm/internal/storage/sqldb"
)

// Kind is the storage kind this package registers.
const Kind = "duckdb"

// DefaultSchema is used for table names without a schema qualifier.
const DefaultSchema = "main"

// Config holds DuckDB dataset configuration.
type Config struct {
	DSN   string
	Table string
}

// Open connects to the database file and returns a Dataset. DuckDB resolves
// identifiers case-insensitively.
func Open(ctx context.Context, cfg Config) (*sqldb.Dataset, error) {
	db, err := sqldb.Open(ctx, "duckdb", cfg.DSN)
	if err != nil {
		return nil, err
	}
	return sqldb.New(db, cfg.Table, duckddl.Dialect, Catalog, true), nil
}

const columnsSQL = `SELECT column_name, data_type, numeric_precision, numeric_scale, character_maximum_length, is_nullable
FROM information_schema.columns
WHERE table_schema = ? AND table_name = ?
ORDER BY ordinal_position`

// Catalog lists table columns from information_schema.columns.
func Catalog(ctx context.Context, db *sql.DB, table string) ([]schema.FieldDescriptor, error) {
	sch, name := sqldb.SplitFQN(table, DefaultSchema)
	rows, err := db.QueryContext(ctx, columnsSQL, sch, name)
	if err != nil {
		return nil, fmt.Errorf("query information_schema.columns: %w", err)
	}
	return sqldb.ScanColumns(rows, duckddl.FieldType)
}
