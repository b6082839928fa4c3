// Package ddl contains Postgres-specific type mapping and the Postgres
// dialect.
package ddl

import (
	"fmt"
	"strings"

	"fieldnorm/internal/ddl"
	"fieldnorm/internal/schema"
)

// Dialect renders ALTER TABLE / UPDATE statements for Postgres. Identifiers
// are always quoted, so names keep their exact case.
var Dialect = ddl.Dialect{
	Name:       "postgres",
	Quote:      ddl.DoubleQuote,
	AddColumn:  "ADD COLUMN",
	MapType:    MapType,
	DoubleType: "DOUBLE PRECISION",
}

// MapType maps a column definition into a Postgres SQL type.
//
//	SmallInteger       -> SMALLINT
//	Integer            -> INTEGER
//	BigInteger         -> BIGINT
//	Single             -> REAL
//	Double             -> DOUBLE PRECISION
//	Decimal            -> NUMERIC[(p,s)]
//	Text               -> VARCHAR(n) or TEXT
//	Date               -> TIMESTAMPTZ
//	Boolean            -> BOOLEAN
//	Blob               -> BYTEA
//	everything else    -> TEXT
func MapType(c ddl.ColumnDef) string {
	switch c.Type {
	case schema.SmallInteger:
		return "SMALLINT"
	case schema.Integer:
		return "INTEGER"
	case schema.BigInteger:
		return "BIGINT"
	case schema.OID:
		return "OID"
	case schema.Single:
		return "REAL"
	case schema.Double:
		return "DOUBLE PRECISION"
	case schema.Decimal:
		if c.Precision > 0 {
			return fmt.Sprintf("NUMERIC(%d,%d)", c.Precision, c.Scale)
		}
		return "NUMERIC"
	case schema.Text:
		if c.Length > 0 {
			return fmt.Sprintf("VARCHAR(%d)", c.Length)
		}
		return "TEXT"
	case schema.Date:
		return "TIMESTAMPTZ"
	case schema.Boolean:
		return "BOOLEAN"
	case schema.Blob:
		return "BYTEA"
	default:
		return "TEXT"
	}
}

// FieldType maps an information_schema.columns.data_type value to a logical
// type.
func FieldType(dataType string) schema.FieldType {
	switch strings.ToLower(strings.TrimSpace(dataType)) {
	case "smallint":
		return schema.SmallInteger
	case "integer":
		return schema.Integer
	case "bigint":
		return schema.BigInteger
	case "oid":
		return schema.OID
	case "real":
		return schema.Single
	case "double precision":
		return schema.Double
	case "numeric", "money":
		return schema.Decimal
	case "character varying", "character", "text", "uuid", "json", "jsonb":
		return schema.Text
	case "date", "timestamp without time zone", "timestamp with time zone":
		return schema.Date
	case "boolean":
		return schema.Boolean
	case "bytea":
		return schema.Blob
	case "user-defined", "":
		return schema.Unknown
	}
	// Remaining built-ins (intervals, arrays, geometric types) are not
	// divisible.
	return schema.Text
}
