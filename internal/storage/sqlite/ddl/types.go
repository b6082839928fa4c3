// Package ddl contains SQLite-specific type mapping and the SQLite dialect.
//
// SQLite is dynamically typed: declared column types only select an affinity.
// FieldType follows the affinity rules (INT, then CHAR/CLOB/TEXT, then BLOB,
// then REAL/FLOA/DOUB) so a catalog read classifies any declared type.
package ddl

import (
	"fmt"
	"strings"

	"fieldnorm/internal/ddl"
	"fieldnorm/internal/schema"
)

// Dialect renders ALTER TABLE / UPDATE statements for SQLite.
var Dialect = ddl.Dialect{
	Name:       "sqlite",
	Quote:      ddl.DoubleQuote,
	AddColumn:  "ADD COLUMN",
	MapType:    MapType,
	DoubleType: "REAL",
}

// MapType maps a column definition into a SQLite column type.
//
//   - integer kinds -> INTEGER
//   - boolean       -> INTEGER (0/1)
//   - floating      -> REAL
//   - decimal       -> NUMERIC(p,s) when sized
//   - date          -> TEXT (ISO-8601)
//   - blob          -> BLOB
//   - others        -> TEXT
func MapType(c ddl.ColumnDef) string {
	switch c.Type {
	case schema.SmallInteger, schema.Integer, schema.BigInteger, schema.Boolean, schema.OID:
		return "INTEGER"
	case schema.Single, schema.Double:
		return "REAL"
	case schema.Decimal:
		if c.Precision > 0 {
			return fmt.Sprintf("NUMERIC(%d,%d)", c.Precision, c.Scale)
		}
		return "NUMERIC"
	case schema.Blob:
		return "BLOB"
	default:
		return "TEXT"
	}
}

// FieldType classifies a declared column type and returns the size
// arguments it carries.
func FieldType(decl string) (schema.FieldType, []int) {
	base, args := ddl.SplitTypeName(decl)
	switch {
	case base == "":
		return schema.Unknown, nil
	case base == "BOOLEAN" || base == "BOOL":
		return schema.Boolean, args
	case strings.Contains(base, "INT"):
		switch {
		case strings.HasPrefix(base, "BIG"):
			return schema.BigInteger, args
		case strings.HasPrefix(base, "SMALL") || strings.HasPrefix(base, "TINY"):
			return schema.SmallInteger, args
		}
		return schema.Integer, args
	case strings.Contains(base, "CHAR"), strings.Contains(base, "CLOB"), strings.Contains(base, "TEXT"):
		return schema.Text, args
	case strings.Contains(base, "BLOB"):
		return schema.Blob, args
	case strings.Contains(base, "REAL"), strings.Contains(base, "FLOA"), strings.Contains(base, "DOUB"):
		return schema.Double, args
	case base == "NUMERIC" || base == "DECIMAL":
		return schema.Decimal, args
	case strings.HasPrefix(base, "DATE") || base == "TIMESTAMP":
		return schema.Date, args
	}
	return schema.Unknown, args
}
