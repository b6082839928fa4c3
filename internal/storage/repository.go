// Package storage defines the storage-agnostic dataset contract and a
// registry of backend factories.
//
// Backends (sqlite, postgres, mssql, mysql, duckdb, csv) register themselves
// from init; importing internal/storage/all enables all of them. Callers open
// a Dataset through New and never import a backend directly.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"fieldnorm/internal/calc"
	"fieldnorm/internal/config"
	"fieldnorm/internal/ddl"
	"fieldnorm/internal/schema"
)

// Dataset is the platform contract the normalizer works against: list the
// schema, add a column, and evaluate an expression into a column row by row.
// Calls are blocking and issued from a single goroutine.
type Dataset interface {
	// ListFields returns the current fields in table order.
	ListFields(ctx context.Context) ([]schema.FieldDescriptor, error)
	// AddField adds a column described by col.
	AddField(ctx context.Context, col ddl.ColumnDef) error
	// CalculateField sets target = expr for every row.
	CalculateField(ctx context.Context, target string, expr calc.Ratio) error
	// CaseInsensitiveNames reports whether the backend treats field names
	// differing only in case as the same field.
	CaseInsensitiveNames() bool
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	// Kind is the registered backend name, e.g. "sqlite".
	Kind string
	// DSN is the backend connection string (a file path for csv).
	DSN string
	// Table is the dataset name inside the backend. Backends that hold one
	// dataset per DSN (csv) ignore it.
	Table string
	// Options carries backend-specific settings.
	Options config.Options
}

// Factory opens a Dataset for cfg.
type Factory func(ctx context.Context, cfg Config) (Dataset, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register registers (or replaces) the factory for kind.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = f
}

// New opens a Dataset using the factory registered for cfg.Kind.
func New(ctx context.Context, cfg Config) (Dataset, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}

// ListKinds returns a sorted snapshot of the registered kinds.
func ListKinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
