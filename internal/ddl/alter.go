// Package ddl defines a small, backend-agnostic model for the schema changes
// this tool performs and helpers to render them for a Dialect.
//
// Only two statements are needed: ALTER TABLE ... ADD COLUMN to create a
// target field, and UPDATE ... SET to populate it from an expression. Backend
// packages (internal/storage/<kind>/ddl) provide the Dialect values.
package ddl

import (
	"fmt"
	"strings"
)

// QuoteFQN quotes a possibly dotted name like "public.tracts" segment by
// segment using the dialect's identifier quoting.
func QuoteFQN(d Dialect, name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = d.Quote(p)
	}
	return strings.Join(parts, ".")
}

// BuildAddColumnSQL renders
//
//	ALTER TABLE <fqn> <AddColumn> <col> <type> [NOT NULL]
//
// for the given dialect.
func BuildAddColumnSQL(d Dialect, table string, c ColumnDef) (string, error) {
	table = strings.TrimSpace(table)
	if table == "" {
		return "", fmt.Errorf("ddl: table name must not be empty")
	}
	name := c.Name
	if err := CheckColumnName(name); err != nil {
		return "", fmt.Errorf("ddl: table %s: %w", table, err)
	}
	typ := strings.TrimSpace(d.MapType(c))
	if typ == "" {
		return "", fmt.Errorf("ddl: %s has no SQL type for %s", d.Name, c.Type)
	}

	var sb strings.Builder
	sb.WriteString("ALTER TABLE ")
	sb.WriteString(QuoteFQN(d, table))
	sb.WriteByte(' ')
	sb.WriteString(d.AddColumn)
	sb.WriteByte(' ')
	sb.WriteString(d.Quote(name))
	sb.WriteByte(' ')
	sb.WriteString(typ)
	if !c.Nullable {
		sb.WriteString(" NOT NULL")
	}
	return sb.String(), nil
}

// BuildUpdateSQL renders UPDATE <fqn> SET <target> = <expr>. The expression is
// raw SQL produced by the caller for the same dialect.
func BuildUpdateSQL(d Dialect, table, target, expr string) (string, error) {
	if strings.TrimSpace(table) == "" {
		return "", fmt.Errorf("ddl: table name must not be empty")
	}
	if err := CheckColumnName(target); err != nil {
		return "", fmt.Errorf("ddl: target: %w", err)
	}
	if strings.TrimSpace(expr) == "" {
		return "", fmt.Errorf("ddl: expression for %s must not be empty", target)
	}
	return fmt.Sprintf("UPDATE %s SET %s = %s", QuoteFQN(d, table), d.Quote(target), expr), nil
}

// CheckColumnName rejects empty names and names with leading or trailing
// whitespace. Names are used verbatim, never trimmed.
func CheckColumnName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("column with empty name")
	}
	if strings.TrimSpace(name) != name {
		return fmt.Errorf("column name %q has surrounding whitespace", name)
	}
	return nil
}

// DoubleQuote is the ANSI identifier quoting used by most dialects: wrap in
// double quotes and double any embedded quote.
func DoubleQuote(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }
