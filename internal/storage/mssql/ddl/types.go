// Package ddl contains SQL Server-specific type mapping and the SQL Server
// dialect.
package ddl

import (
	"fmt"
	"strings"

	"fieldnorm/internal/ddl"
	"fieldnorm/internal/schema"
)

// Dialect renders ALTER TABLE / UPDATE statements for SQL Server. SQL Server
// spells the clause "ADD" without COLUMN.
var Dialect = ddl.Dialect{
	Name:       "mssql",
	Quote:      Ident,
	AddColumn:  "ADD",
	MapType:    MapType,
	DoubleType: "FLOAT(53)",
}

// Ident bracket-quotes an identifier, doubling any closing bracket.
func Ident(id string) string { return `[` + strings.ReplaceAll(id, `]`, `]]`) + `]` }

// MapType maps a column definition into a SQL Server column type.
//
// Unknown or empty types fall back to NVARCHAR(MAX).
func MapType(c ddl.ColumnDef) string {
	switch c.Type {
	case schema.SmallInteger:
		return "SMALLINT"
	case schema.Integer:
		return "INT"
	case schema.BigInteger, schema.OID:
		return "BIGINT"
	case schema.Single:
		return "REAL"
	case schema.Double:
		return "FLOAT(53)"
	case schema.Decimal:
		if c.Precision > 0 {
			return fmt.Sprintf("DECIMAL(%d, %d)", c.Precision, c.Scale)
		}
		return "DECIMAL(38, 10)"
	case schema.Text:
		if c.Length > 0 && c.Length <= 4000 {
			return fmt.Sprintf("NVARCHAR(%d)", c.Length)
		}
		return "NVARCHAR(MAX)"
	case schema.Date:
		return "DATETIME2"
	case schema.Boolean:
		return "BIT"
	case schema.Blob:
		return "VARBINARY(MAX)"
	default:
		return "NVARCHAR(MAX)"
	}
}

// FieldType maps an INFORMATION_SCHEMA.COLUMNS.DATA_TYPE value to a logical
// type.
func FieldType(dataType string) schema.FieldType {
	switch strings.ToLower(strings.TrimSpace(dataType)) {
	case "tinyint", "smallint":
		return schema.SmallInteger
	case "int":
		return schema.Integer
	case "bigint":
		return schema.BigInteger
	case "real":
		return schema.Single
	case "float":
		return schema.Double
	case "decimal", "numeric", "money", "smallmoney":
		return schema.Decimal
	case "date", "datetime", "datetime2", "smalldatetime", "datetimeoffset", "time":
		return schema.Date
	case "bit":
		return schema.Boolean
	case "binary", "varbinary", "image":
		return schema.Blob
	case "sql_variant", "":
		return schema.Unknown
	}
	return schema.Text
}
