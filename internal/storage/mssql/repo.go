// Package mssql implements a Microsoft SQL Server dataset on go-mssqldb.
// Columns come from INFORMATION_SCHEMA.COLUMNS; the table is changed with
// ALTER TABLE ... ADD and filled with one UPDATE per target column.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/microsoft/go-mssqldb" // registers the "sqlserver" driver
	"github.com/microsoft/go-mssqldb/msdsn"

	"fieldnorm/internal/schema"
	msddl "fieldnorm/internal/storage/mssql/ddl"
	"fieldnorm/internal/storage/sqldb"
)

// Kind is the storage kind this package registers.
const Kind = "mssql"

// DefaultSchema is used for table names without a schema qualifier.
const DefaultSchema = "dbo"

// Config holds MSSQL dataset configuration.
type Config struct {
	DSN   string
	Table string
}

// Open validates the DSN, connects and returns a Dataset. SQL Server's
// default collations compare identifiers case-insensitively.
func Open(ctx context.Context, cfg Config) (*sqldb.Dataset, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("mssql: DSN must not be empty")
	}
	// Validate DSN early to fail fast on obvious mistakes.
	if _, err := msdsn.Parse(cfg.DSN); err != nil {
		return nil, fmt.Errorf("mssql dsn: %w", err)
	}
	db, err := sqldb.Open(ctx, "sqlserver", cfg.DSN)
	if err != nil {
		return nil, err
	}
	return sqldb.New(db, cfg.Table, msddl.Dialect, Catalog, true), nil
}

const columnsSQL = `SELECT COLUMN_NAME, DATA_TYPE, NUMERIC_PRECISION, NUMERIC_SCALE, CHARACTER_MAXIMUM_LENGTH, IS_NULLABLE
FROM INFORMATION_SCHEMA.COLUMNS
WHERE TABLE_SCHEMA = @p1 AND TABLE_NAME = @p2
ORDER BY ORDINAL_POSITION`

// Catalog lists table columns from INFORMATION_SCHEMA.COLUMNS.
func Catalog(ctx context.Context, db *sql.DB, table string) ([]schema.FieldDescriptor, error) {
	sch, name := sqldb.SplitFQN(table, DefaultSchema)
	rows, err := db.QueryContext(ctx, columnsSQL, sch, name)
	if err != nil {
		return nil, fmt.Errorf("query INFORMATION_SCHEMA.COLUMNS: %w", err)
	}
	return sqldb.ScanColumns(rows, msddl.FieldType)
}
