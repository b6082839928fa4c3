package ddl

import "fieldnorm/internal/schema"

// ColumnDef describes a column to be added to an existing table. It uses
// logical types; dialects render the SQL spelling.
//
// Fields:
//   - Name: column name (unquoted; quoting happens at render time)
//   - Type: logical field type
//   - Precision, Scale, Length: size hints copied from a source field; dialects
//     that cannot express them for Type ignore them
//   - Nullable: whether NULL is allowed (added columns are always nullable in
//     practice, since existing rows have no value yet)
type ColumnDef struct {
	Name      string
	Type      schema.FieldType
	Precision int
	Scale     int
	Length    int
	Nullable  bool
}

// Dialect captures the few per-backend rules needed to render ALTER TABLE and
// UPDATE statements.
type Dialect struct {
	// Name is the storage kind, e.g. "sqlite".
	Name string

	// Quote quotes a single identifier segment.
	Quote func(ident string) string

	// AddColumn is the clause between the table name and the column definition,
	// e.g. "ADD COLUMN" (most engines) or "ADD" (SQL Server).
	AddColumn string

	// MapType renders the SQL type for a column definition.
	MapType func(c ColumnDef) string

	// DoubleType is the type name used when casting a numerator to floating
	// point inside an expression.
	DoubleType string
}
