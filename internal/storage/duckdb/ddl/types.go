// Package ddl contains DuckDB-specific type mapping and the DuckDB dialect.
package ddl

import (
	"fmt"
	"strings"

	"fieldnorm/internal/ddl"
	"fieldnorm/internal/schema"
)

// Dialect renders ALTER TABLE / UPDATE statements for DuckDB.
var Dialect = ddl.Dialect{
	Name:       "duckdb",
	Quote:      ddl.DoubleQuote,
	AddColumn:  "ADD COLUMN",
	MapType:    MapType,
	DoubleType: "DOUBLE",
}

// MapType maps a column definition into a DuckDB column type.
func MapType(c ddl.ColumnDef) string {
	switch c.Type {
	case schema.SmallInteger:
		return "SMALLINT"
	case schema.Integer:
		return "INTEGER"
	case schema.BigInteger, schema.OID:
		return "BIGINT"
	case schema.Single:
		return "FLOAT"
	case schema.Double:
		return "DOUBLE"
	case schema.Decimal:
		if c.Precision > 0 && c.Precision <= 38 {
			return fmt.Sprintf("DECIMAL(%d,%d)", c.Precision, c.Scale)
		}
		return "DECIMAL(38,10)"
	case schema.Date:
		return "TIMESTAMP"
	case schema.Boolean:
		return "BOOLEAN"
	case schema.Blob:
		return "BLOB"
	default:
		return "VARCHAR"
	}
}

// FieldType maps an information_schema data_type such as "DECIMAL(18,3)" to a
// logical type. Sizes are read from the numeric_* columns instead.
func FieldType(dataType string) schema.FieldType {
	base, _ := ddl.SplitTypeName(dataType)
	switch base {
	case "TINYINT", "SMALLINT", "UTINYINT", "USMALLINT":
		return schema.SmallInteger
	case "INTEGER", "UINTEGER":
		return schema.Integer
	case "BIGINT", "UBIGINT", "HUGEINT", "UHUGEINT":
		return schema.BigInteger
	case "FLOAT", "REAL":
		return schema.Single
	case "DOUBLE":
		return schema.Double
	case "DECIMAL", "NUMERIC":
		return schema.Decimal
	case "VARCHAR", "UUID", "JSON":
		return schema.Text
	case "BOOLEAN":
		return schema.Boolean
	case "BLOB":
		return schema.Blob
	case "":
		return schema.Unknown
	}
	if strings.HasPrefix(base, "DATE") || strings.HasPrefix(base, "TIMESTAMP") || base == "TIME" {
		return schema.Date
	}
	return schema.Text
}
