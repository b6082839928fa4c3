//go:build integration

package mssql

import (
	"context"
	"os"
	"testing"
	"time"

	"fieldnorm/internal/calc"
	"fieldnorm/internal/ddl"
	"fieldnorm/internal/schema"
)

// getTestDSN reads the MSSQL_TEST_DSN environment variable.
// If it is empty, the caller should skip the test.
func getTestDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("MSSQL_TEST_DSN")
	if dsn == "" {
		t.Skip("MSSQL_TEST_DSN not set; skipping MSSQL integration tests")
	}
	return dsn
}

// TestAddAndCalculateIntegration creates a table, adds a FLOAT(53) column and
// fills it with the guarded ratio against a real SQL Server.
func TestAddAndCalculateIntegration(t *testing.T) {
	dsn := getTestDSN(t)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	ds, err := Open(ctx, Config{DSN: dsn, Table: "dbo.fieldnorm_it"})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer ds.Close()

	db := ds.DB()
	_, _ = db.ExecContext(ctx, "IF OBJECT_ID('dbo.fieldnorm_it') IS NOT NULL DROP TABLE dbo.fieldnorm_it")
	if _, err := db.ExecContext(ctx, "CREATE TABLE dbo.fieldnorm_it (id INT NOT NULL, pop INT, area DECIMAL(10,2))"); err != nil {
		t.Fatalf("create table: %v", err)
	}
	defer func() { _, _ = db.ExecContext(context.Background(), "DROP TABLE dbo.fieldnorm_it") }()
	if _, err := db.ExecContext(ctx, "INSERT INTO dbo.fieldnorm_it VALUES (1, 50, 10), (2, 7, 0)"); err != nil {
		t.Fatalf("insert: %v", err)
	}

	fields, err := ds.ListFields(ctx)
	if err != nil {
		t.Fatalf("ListFields() error = %v", err)
	}
	if len(fields) != 3 || fields[2].Type != schema.Decimal || fields[2].Precision != 10 {
		t.Fatalf("ListFields() = %+v", fields)
	}

	if err := ds.AddField(ctx, ddl.ColumnDef{Name: "pop_norm", Type: schema.Double, Nullable: true}); err != nil {
		t.Fatalf("AddField() error = %v", err)
	}
	if err := ds.CalculateField(ctx, "pop_norm", calc.Ratio{Numerator: "pop", Denominator: "area"}); err != nil {
		t.Fatalf("CalculateField() error = %v", err)
	}

	var nulls int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM dbo.fieldnorm_it WHERE pop_norm IS NULL").Scan(&nulls); err != nil {
		t.Fatalf("count nulls: %v", err)
	}
	if nulls != 1 {
		t.Fatalf("null results = %d, want 1", nulls)
	}
}
