// Package postgres implements a Postgres-backed storage.Dataset using pgx v5.
// Fields are listed from information_schema.columns; schema changes and
// calculations are single statements executed on the pool.
package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"fieldnorm/internal/calc"
	"fieldnorm/internal/ddl"
	"fieldnorm/internal/schema"
	pgddl "fieldnorm/internal/storage/postgres/ddl"
	"fieldnorm/internal/storage/sqldb"
)

// Kind is the storage kind this package registers.
const Kind = "postgres"

// DefaultSchema is used for table names without a schema qualifier.
const DefaultSchema = "public"

// Config holds Postgres dataset configuration.
type Config struct {
	DSN   string // connection string for pgxpool
	Table string // optionally schema-qualified table name, e.g. "public.tracts"
}

// pool is the subset of *pgxpool.Pool the dataset needs. pgxmock's pool
// satisfies it in tests.
type pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close()
}

// Dataset is a Postgres table.
type Dataset struct {
	pool  pool
	table string
}

// Open creates a pool for cfg.DSN, pings it and returns a Dataset.
func Open(ctx context.Context, cfg Config) (*Dataset, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("postgres: DSN must not be empty")
	}
	p, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("pgxpool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := p.Ping(pingCtx); err != nil {
		p.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return NewDataset(p, cfg.Table), nil
}

// NewDataset wraps an existing pool. The Dataset closes it in Close.
func NewDataset(p pool, table string) *Dataset {
	return &Dataset{pool: p, table: strings.TrimSpace(table)}
}

const columnsSQL = `SELECT column_name,
       data_type,
       COALESCE(numeric_precision, 0)::bigint,
       COALESCE(numeric_scale, 0)::bigint,
       COALESCE(character_maximum_length, 0)::bigint,
       is_nullable = 'YES'
FROM information_schema.columns
WHERE table_schema = $1 AND table_name = $2
ORDER BY ordinal_position`

// ListFields reads the table's columns from information_schema.
func (d *Dataset) ListFields(ctx context.Context) ([]schema.FieldDescriptor, error) {
	if d.table == "" {
		return nil, fmt.Errorf("postgres: table name must not be empty")
	}
	sch, name := sqldb.SplitFQN(d.table, DefaultSchema)

	rows, err := d.pool.Query(ctx, columnsSQL, sch, name)
	if err != nil {
		return nil, fmt.Errorf("postgres: list columns of %s: %w", d.table, err)
	}
	defer rows.Close()

	var out []schema.FieldDescriptor
	for rows.Next() {
		var (
			colName, dataType        string
			precision, scale, length int64
			nullable                 bool
		)
		if err := rows.Scan(&colName, &dataType, &precision, &scale, &length, &nullable); err != nil {
			return nil, fmt.Errorf("postgres: scan column: %w", err)
		}
		out = append(out, schema.FieldDescriptor{
			Name:      colName,
			Type:      pgddl.FieldType(dataType),
			Precision: int(precision),
			Scale:     int(scale),
			Length:    int(length),
			Nullable:  nullable,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate columns: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("postgres: table %s does not exist or has no columns", d.table)
	}
	return out, nil
}

// AddField executes ALTER TABLE ... ADD COLUMN.
func (d *Dataset) AddField(ctx context.Context, col ddl.ColumnDef) error {
	stmt, err := ddl.BuildAddColumnSQL(pgddl.Dialect, d.table, col)
	if err != nil {
		return err
	}
	return d.exec(ctx, stmt)
}

// CalculateField executes a single UPDATE for target.
func (d *Dataset) CalculateField(ctx context.Context, target string, expr calc.Ratio) error {
	stmt, err := ddl.BuildUpdateSQL(pgddl.Dialect, d.table, target, expr.SQL(pgddl.Dialect))
	if err != nil {
		return err
	}
	return d.exec(ctx, stmt)
}

// CaseInsensitiveNames is false: quoted identifiers are case-sensitive.
func (d *Dataset) CaseInsensitiveNames() bool { return false }

// Close closes the pool.
func (d *Dataset) Close() error {
	if d.pool != nil {
		d.pool.Close()
	}
	return nil
}

func (d *Dataset) exec(ctx context.Context, stmt string) error {
	if _, err := d.pool.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("postgres: exec: %w", err)
	}
	return nil
}
