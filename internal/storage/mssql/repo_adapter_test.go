package mssql

import (
	"context"
	"errors"
	"testing"

	"fieldnorm/internal/storage"
)

// TestMSSQLStorageRegistrationUsesHook verifies that the "mssql" storage
// backend registered in init() uses the newDataset hook and propagates both
// configuration and errors.
func TestMSSQLStorageRegistrationUsesHook(t *testing.T) {
	ctx := context.Background()

	orig := newDataset
	defer func() { newDataset = orig }()

	var (
		called bool
		gotCfg Config
	)
	boom := errors.New("login failed")
	newDataset = func(ctx context.Context, cfg Config) (storage.Dataset, error) {
		called = true
		gotCfg = cfg
		return nil, boom
	}

	cfg := storage.Config{
		Kind:  "mssql",
		DSN:   "sqlserver://example",
		Table: "dbo.target",
	}
	_, err := storage.New(ctx, cfg)
	if !errors.Is(err, boom) {
		t.Fatalf("storage.New() error = %v, want %v", err, boom)
	}
	if !called {
		t.Fatalf("newDataset hook was not called")
	}
	if gotCfg.DSN != cfg.DSN {
		t.Errorf("hook cfg.DSN = %q, want %q", gotCfg.DSN, cfg.DSN)
	}
	if gotCfg.Table != cfg.Table {
		t.Errorf("hook cfg.Table = %q, want %q", gotCfg.Table, cfg.Table)
	}
}

func TestOpen_RejectsBadDSN(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	if _, err := Open(ctx, Config{DSN: " ", Table: "t"}); err == nil {
		t.Fatalf("Open() with empty DSN error = nil, want error")
	}
	_, err := Open(ctx, Config{DSN: "sqlserver://sa:pw@localhost?connection+timeout=abc", Table: "t"})
	if err == nil {
		t.Fatalf("Open() with invalid DSN error = nil, want error")
	}
}
