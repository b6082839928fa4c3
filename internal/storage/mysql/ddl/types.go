// Package ddl contains MySQL-specific type mapping and the MySQL dialect.
package ddl

import (
	"fmt"
	"strings"

	"fieldnorm/internal/ddl"
	"fieldnorm/internal/schema"
)

// Dialect renders ALTER TABLE / UPDATE statements for MySQL. CAST(... AS
// DOUBLE) needs MySQL 8.0.17 or later.
var Dialect = ddl.Dialect{
	Name:       "mysql",
	Quote:      Ident,
	AddColumn:  "ADD COLUMN",
	MapType:    MapType,
	DoubleType: "DOUBLE",
}

// Ident backtick-quotes an identifier, doubling embedded backticks.
func Ident(id string) string { return "`" + strings.ReplaceAll(id, "`", "``") + "`" }

// MapType maps a column definition into a MySQL column type.
func MapType(c ddl.ColumnDef) string {
	switch c.Type {
	case schema.SmallInteger:
		return "SMALLINT"
	case schema.Integer:
		return "INT"
	case schema.BigInteger, schema.OID:
		return "BIGINT"
	case schema.Single:
		return "FLOAT"
	case schema.Double:
		return "DOUBLE"
	case schema.Decimal:
		if c.Precision > 0 {
			return fmt.Sprintf("DECIMAL(%d,%d)", c.Precision, c.Scale)
		}
		return "DECIMAL(38,10)"
	case schema.Text:
		if c.Length > 0 && c.Length <= 16383 {
			return fmt.Sprintf("VARCHAR(%d)", c.Length)
		}
		return "LONGTEXT"
	case schema.Date:
		return "DATETIME"
	case schema.Boolean:
		return "TINYINT(1)"
	case schema.Blob:
		return "LONGBLOB"
	default:
		return "LONGTEXT"
	}
}

// FieldType maps an information_schema DATA_TYPE value to a logical type.
func FieldType(dataType string) schema.FieldType {
	switch strings.ToLower(strings.TrimSpace(dataType)) {
	case "tinyint", "smallint":
		return schema.SmallInteger
	case "mediumint", "int", "integer":
		return schema.Integer
	case "bigint":
		return schema.BigInteger
	case "float":
		return schema.Single
	case "double", "real":
		return schema.Double
	case "decimal", "numeric":
		return schema.Decimal
	case "date", "datetime", "timestamp", "time", "year":
		return schema.Date
	case "bit", "bool", "boolean":
		return schema.Boolean
	case "binary", "varbinary", "tinyblob", "blob", "mediumblob", "longblob":
		return schema.Blob
	case "":
		return schema.Unknown
	}
	return schema.Text
}
