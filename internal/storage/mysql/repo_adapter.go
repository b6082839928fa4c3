// Package mysql provides a MySQL-backed storage.Dataset implementation.
// This adapter wires the MySQL backend into the storage-agnostic factory.
package mysql

import (
	"context"

	"fieldnorm/internal/storage"
)

// newDataset is a test hook that points to Open by default.
// Tests may replace this variable to avoid real DB connections.
var newDataset = func(ctx context.Context, cfg Config) (storage.Dataset, error) {
	return Open(ctx, cfg)
}

// init registers the "mysql" backend with the factory.
func init() {
	storage.Register(Kind, func(ctx context.Context, cfg storage.Config) (storage.Dataset, error) {
		return newDataset(ctx, Config{
			DSN:   cfg.DSN,
			Table: cfg.Table,
		})
	})
}
