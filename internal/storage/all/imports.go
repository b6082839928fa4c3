// Package all wires all built-in storage backends into the storage factory.
//
// Importing it (even as a blank import) runs the init functions of each
// backend, which register themselves with the storage package. The kinds
// made available are:
//
//   - "sqlite"   (fieldnorm/internal/storage/sqlite)
//   - "postgres" (fieldnorm/internal/storage/postgres)
//   - "mssql"    (fieldnorm/internal/storage/mssql)
//   - "mysql"    (fieldnorm/internal/storage/mysql)
//   - "duckdb"   (fieldnorm/internal/storage/duckdb)
//   - "csv"      (fieldnorm/internal/storage/csvfile)
//
// A binary that needs only some backends can blank-import those packages
// directly instead.
package all

import (
	_ "fieldnorm/internal/storage/csvfile"
	_ "fieldnorm/internal/storage/duckdb"
	_ "fieldnorm/internal/storage/mssql"
	_ "fieldnorm/internal/storage/mysql"
	_ "fieldnorm/internal/storage/postgres"
	_ "fieldnorm/internal/storage/sqlite"
)
