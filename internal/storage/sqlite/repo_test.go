package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldnorm/internal/schema"
)

func TestCatalog_ReadsDeclaredTypes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ds, err := Open(ctx, Config{DSN: filepath.Join(t.TempDir(), "c.db"), Table: "main.tracts"})
	require.NoError(t, err)
	defer ds.Close()

	_, err = ds.DB().ExecContext(ctx, `CREATE TABLE tracts (
		fid INTEGER PRIMARY KEY,
		name VARCHAR(40) NOT NULL,
		pop2020 BIGINT,
		density NUMERIC(10,2),
		area REAL,
		anything
	)`)
	require.NoError(t, err)

	fields, err := ds.ListFields(ctx)
	require.NoError(t, err)

	want := []schema.FieldDescriptor{
		{Name: "fid", Type: schema.Integer, Nullable: true},
		{Name: "name", Type: schema.Text, Length: 40},
		{Name: "pop2020", Type: schema.BigInteger, Nullable: true},
		{Name: "density", Type: schema.Decimal, Precision: 10, Scale: 2, Nullable: true},
		{Name: "area", Type: schema.Double, Nullable: true},
		{Name: "anything", Type: schema.Unknown, Nullable: true},
	}
	assert.Equal(t, want, fields)
	assert.True(t, ds.CaseInsensitiveNames())
}

func TestOpen_EmptyDSN(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), Config{Table: "t"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sqlite: DSN must not be empty")
}

func TestWithBusyTimeout(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a.db?_pragma=busy_timeout(5000)", withBusyTimeout("a.db"))
	assert.Equal(t, "file:a.db?mode=rw&_pragma=busy_timeout(5000)", withBusyTimeout("file:a.db?mode=rw"))
	assert.Equal(t, "a.db?_pragma=busy_timeout(100)", withBusyTimeout("a.db?_pragma=busy_timeout(100)"))
	assert.Equal(t, "", withBusyTimeout(""))
}

func TestOpen_BusyTimeoutOnEveryConnection(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ds, err := Open(ctx, Config{DSN: filepath.Join(t.TempDir(), "b.db"), Table: "t"})
	require.NoError(t, err)
	defer ds.Close()

	// Two connections held at once are distinct pool members.
	c1, err := ds.DB().Conn(ctx)
	require.NoError(t, err)
	defer c1.Close()
	c2, err := ds.DB().Conn(ctx)
	require.NoError(t, err)
	defer c2.Close()

	for _, c := range []*sql.Conn{c1, c2} {
		var ms int
		require.NoError(t, c.QueryRowContext(ctx, "PRAGMA busy_timeout").Scan(&ms))
		assert.Equal(t, 5000, ms)
	}
}
