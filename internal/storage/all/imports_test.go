package all

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"fieldnorm/internal/storage"
)

func TestAllKindsRegistered(t *testing.T) {
	assert.Equal(t,
		[]string{"csv", "duckdb", "mssql", "mysql", "postgres", "sqlite"},
		storage.ListKinds())
}
