package duckdb

import (
	"context"

	"fieldnorm/internal/storage"
)

// newDataset is a test hook that points to Open by default.
var newDataset = func(ctx context.Context, cfg Config) (storage.Dataset, error) {
	return Open(ctx, cfg)
}

func init() {
	storage.Register(Kind, func(ctx context.Context, cfg storage.Config) (storage.Dataset, error) {
		return newDataset(ctx, Config{
			DSN:   cfg.DSN,
			Table: cfg.Table,
		})
	})
}
