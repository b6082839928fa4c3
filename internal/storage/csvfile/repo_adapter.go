package csvfile

import (
	"context"

	"fieldnorm/internal/storage"
)

// newDataset is a test hook that points to Open by default.
var newDataset = func(ctx context.Context, cfg Config) (storage.Dataset, error) {
	return Open(ctx, cfg)
}

// init registers the "csv" backend. storage.Config.DSN is the file path;
// Options may set "comma" (one character) and "infer_rows".
func init() {
	storage.Register(Kind, func(ctx context.Context, cfg storage.Config) (storage.Dataset, error) {
		return newDataset(ctx, Config{
			Path:      cfg.DSN,
			Comma:     cfg.Options.Rune("comma", ','),
			InferRows: cfg.Options.Int("infer_rows", DefaultInferRows),
		})
	})
}
