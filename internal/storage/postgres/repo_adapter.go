package postgres

import (
	"context"

	"fieldnorm/internal/storage"
)

// newDataset is a test hook that points to Open by default.
// Tests may replace this variable to avoid real DB connections.
var newDataset = func(ctx context.Context, cfg Config) (storage.Dataset, error) {
	return Open(ctx, cfg)
}

var _ storage.Dataset = (*Dataset)(nil)

// init registers the "postgres" backend with the storage factory so callers
// can open it via storage.New without importing this package.
func init() {
	storage.Register(Kind, func(ctx context.Context, cfg storage.Config) (storage.Dataset, error) {
		return newDataset(ctx, Config{
			DSN:   cfg.DSN,
			Table: cfg.Table,
		})
	})
}
