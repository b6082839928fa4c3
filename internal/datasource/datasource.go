// Package datasource defines the minimal contracts for file-backed datasets:
// something that can be read and something whose content can be replaced as
// a whole.
package datasource

import (
	"context"
	"io"
)

// Source opens the current content for reading.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// Replacer swaps the whole content for what write produces. Implementations
// must leave the old content intact when write fails.
type Replacer interface {
	Replace(ctx context.Context, write func(w io.Writer) error) error
}

// File is a dataset file that can be both read and replaced.
type File interface {
	Source
	Replacer
}
