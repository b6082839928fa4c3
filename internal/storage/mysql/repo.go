// Package mysql implements a MySQL dataset on go-sql-driver/mysql.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"fieldnorm/internal/schema"
	myddl "fieldnorm/internal/storage/mysql/ddl"
	"fieldnorm/internal/storage/sqldb"
)

// Kind is the storage kind this package registers.
const Kind = "mysql"

// Config holds MySQL dataset configuration.
type Config struct {
	DSN   string // go-sql-driver DSN, e.g. "user:pass@tcp(host:3306)/gis"
	Table string // table name, optionally "database.table"
}

// Open validates the DSN, connects and returns a Dataset. Column names are
// case-insensitive in MySQL on every platform.
func Open(ctx context.Context, cfg Config) (*sqldb.Dataset, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("mysql: DSN must not be empty")
	}
	if _, err := mysql.ParseDSN(cfg.DSN); err != nil {
		return nil, fmt.Errorf("mysql dsn: %w", err)
	}
	db, err := sqldb.Open(ctx, "mysql", cfg.DSN)
	if err != nil {
		return nil, err
	}
	return sqldb.New(db, cfg.Table, myddl.Dialect, Catalog, true), nil
}

// An empty schema selects the connection's current database.
const columnsSQL = `SELECT COLUMN_NAME, DATA_TYPE, NUMERIC_PRECISION, NUMERIC_SCALE, CHARACTER_MAXIMUM_LENGTH, IS_NULLABLE
FROM information_schema.COLUMNS
WHERE TABLE_SCHEMA = COALESCE(NULLIF(?, ''), DATABASE()) AND TABLE_NAME = ?
ORDER BY ORDINAL_POSITION`

// Catalog lists table columns from information_schema.COLUMNS.
func Catalog(ctx context.Context, db *sql.DB, table string) ([]schema.FieldDescriptor, error) {
	sch, name := sqldb.SplitFQN(table, "")
	rows, err := db.QueryContext(ctx, columnsSQL, sch, name)
	if err != nil {
		return nil, fmt.Errorf("query information_schema.COLUMNS: %w", err)
	}
	return sqldb.ScanColumns(rows, myddl.FieldType)
}
