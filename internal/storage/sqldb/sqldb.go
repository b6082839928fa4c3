// Package sqldb implements storage.Dataset on top of database/sql. The SQL
// backends (sqlite, mssql, mysql, duckdb) differ only in their driver, their
// catalog query and their ddl.Dialect, so each of them wraps a Dataset from
// this package.
package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"fieldnorm/internal/calc"
	"fieldnorm/internal/ddl"
	"fieldnorm/internal/schema"
)

// PingTimeout bounds the connectivity check in Open.
const PingTimeout = 5 * time.Second

// Catalog lists the columns of table in ordinal order. It returns an empty
// slice (not an error) when the table does not exist.
type Catalog func(ctx context.Context, db *sql.DB, table string) ([]schema.FieldDescriptor, error)

// Open opens a database/sql handle for driver and pings it with
// PingTimeout to fail fast on bad DSNs.
func Open(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("%s: DSN must not be empty", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: open: %w", driver, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: ping: %w", driver, err)
	}
	return db, nil
}

// Dataset is a table in a database/sql database.
type Dataset struct {
	db              *sql.DB
	table           string
	dialect         ddl.Dialect
	catalog         Catalog
	caseInsensitive bool
}

// New wraps db. The Dataset owns db and closes it in Close.
func New(db *sql.DB, table string, d ddl.Dialect, catalog Catalog, caseInsensitive bool) *Dataset {
	return &Dataset{
		db:              db,
		table:           strings.TrimSpace(table),
		dialect:         d,
		catalog:         catalog,
		caseInsensitive: caseInsensitive,
	}
}

// DB exposes the underlying handle for backend-specific helpers and tests.
func (ds *Dataset) DB() *sql.DB { return ds.db }

// ListFields reads the table's columns through the catalog.
func (ds *Dataset) ListFields(ctx context.Context) ([]schema.FieldDescriptor, error) {
	if ds.table == "" {
		return nil, fmt.Errorf("%s: table name must not be empty", ds.dialect.Name)
	}
	fields, err := ds.catalog(ctx, ds.db, ds.table)
	if err != nil {
		return nil, fmt.Errorf("%s: list columns of %s: %w", ds.dialect.Name, ds.table, err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%s: table %s does not exist or has no columns", ds.dialect.Name, ds.table)
	}
	return fields, nil
}

// AddField executes ALTER TABLE ... ADD COLUMN for col.
func (ds *Dataset) AddField(ctx context.Context, col ddl.ColumnDef) error {
	stmt, err := ddl.BuildAddColumnSQL(ds.dialect, ds.table, col)
	if err != nil {
		return err
	}
	return ds.exec(ctx, stmt)
}

// CalculateField executes one UPDATE that sets target from expr on every row.
func (ds *Dataset) CalculateField(ctx context.Context, target string, expr calc.Ratio) error {
	stmt, err := ddl.BuildUpdateSQL(ds.dialect, ds.table, target, expr.SQL(ds.dialect))
	if err != nil {
		return err
	}
	return ds.exec(ctx, stmt)
}

// CaseInsensitiveNames reports the backend's identifier matching rule.
func (ds *Dataset) CaseInsensitiveNames() bool { return ds.caseInsensitive }

// Close closes the database handle.
func (ds *Dataset) Close() error {
	if ds.db == nil {
		return nil
	}
	return ds.db.Close()
}

func (ds *Dataset) exec(ctx context.Context, stmt string) error {
	if _, err := ds.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("%s: exec: %w", ds.dialect.Name, err)
	}
	return nil
}

// SplitFQN splits "schema.table" into its parts. A bare name returns
// defSchema.
func SplitFQN(name, defSchema string) (string, string) {
	name = strings.TrimSpace(name)
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[:i], name[i+1:]
	}
	return defSchema, name
}

// ScanColumns drains rows shaped as
//
//	name, data_type, precision, scale, length, nullable
//
// which is what information_schema based catalogs select. typeOf maps the
// backend's data_type spelling to a logical type. Negative lengths (SQL
// Server reports -1 for MAX) are recorded as 0.
func ScanColumns(rows *sql.Rows, typeOf func(dataType string) schema.FieldType) ([]schema.FieldDescriptor, error) {
	defer rows.Close()

	var out []schema.FieldDescriptor
	for rows.Next() {
		var (
			name, dataType           string
			precision, scale, length sql.NullInt64
			nullable                 string
		)
		if err := rows.Scan(&name, &dataType, &precision, &scale, &length, &nullable); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		out = append(out, schema.FieldDescriptor{
			Name:      name,
			Type:      typeOf(dataType),
			Precision: int(precision.Int64),
			Scale:     int(scale.Int64),
			Length:    max(0, int(length.Int64)),
			Nullable:  strings.EqualFold(nullable, "YES"),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate columns: %w", err)
	}
	return out, nil
}
