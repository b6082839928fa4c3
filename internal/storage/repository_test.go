package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldnorm/internal/calc"
	"fieldnorm/internal/ddl"
	"fieldnorm/internal/schema"
)

// fakeDataset is a minimal Dataset implementation for registry tests.
type fakeDataset struct {
	closed bool
}

func (f *fakeDataset) ListFields(context.Context) ([]schema.FieldDescriptor, error) { return nil, nil }
func (f *fakeDataset) AddField(context.Context, ddl.ColumnDef) error                { return nil }
func (f *fakeDataset) CalculateField(context.Context, string, calc.Ratio) error     { return nil }
func (f *fakeDataset) CaseInsensitiveNames() bool                                   { return false }
func (f *fakeDataset) Close() error                                                 { f.closed = true; return nil }

// TestRegisterAndNew_Success verifies that registering a backend enables New()
// to return the corresponding dataset.
func TestRegisterAndNew_Success(t *testing.T) {
	t.Parallel()

	kind := "fake"
	Register(kind, func(ctx context.Context, cfg Config) (Dataset, error) {
		return &fakeDataset{}, nil
	})

	ds, err := New(context.Background(), Config{Kind: kind})
	require.NoError(t, err)
	require.NotNil(t, ds)
	assert.Contains(t, ListKinds(), kind)
}

// TestNew_Unsupported verifies that unsupported kinds return a helpful error.
func TestNew_Unsupported(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), Config{Kind: "does-not-exist"})
	require.Error(t, err)
	assert.Equal(t, "unsupported storage.kind=does-not-exist", err.Error())
}

// TestRegister_Override verifies that re-registering a kind overrides the
// previous factory.
func TestRegister_Override(t *testing.T) {
	t.Parallel()

	kind := "override"
	calls := 0
	Register(kind, func(ctx context.Context, cfg Config) (Dataset, error) {
		calls++
		return &fakeDataset{}, nil
	})
	Register(kind, func(ctx context.Context, cfg Config) (Dataset, error) {
		calls += 10
		return &fakeDataset{}, nil
	})

	_, err := New(context.Background(), Config{Kind: kind})
	require.NoError(t, err)
	assert.Equal(t, 10, calls)
}

// TestListKinds_Snapshot checks ListKinds returns a sorted copy.
func TestListKinds_Snapshot(t *testing.T) {
	t.Parallel()

	Register("snap", func(ctx context.Context, cfg Config) (Dataset, error) { return &fakeDataset{}, nil })

	a := ListKinds()
	require.NotEmpty(t, a)
	assert.IsNonDecreasing(t, a)
	a[0] = "mutated"
	assert.NotEqual(t, a, ListKinds())
}

// TestRegister_AllowsErrors shows factories can return errors that bubble up.
func TestRegister_AllowsErrors(t *testing.T) {
	t.Parallel()

	want := errors.New("boom")
	Register("errkind", func(ctx context.Context, cfg Config) (Dataset, error) {
		return nil, want
	})

	_, err := New(context.Background(), Config{Kind: "errkind"})
	assert.ErrorIs(t, err, want)
}
