package csvfile

import (
	"strconv"
	"strings"

	"fieldnorm/internal/schema"
)

// inferTypes returns one logical type per header, looking at no more than
// limit records (all records when limit <= 0).
func inferTypes(n int, records [][]string, limit int) []schema.FieldType {
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	cols := make([][]string, n)
	for _, row := range records {
		for i := 0; i < n && i < len(row); i++ {
			cols[i] = append(cols[i], row[i])
		}
	}
	types := make([]schema.FieldType, n)
	for i := range types {
		types[i] = inferTypeForColumn(cols[i])
	}
	return types
}

// inferTypeForColumn requires all non-empty values to satisfy a narrower
// type: integer, then double, otherwise text. A column with no values at all
// is Unknown, so it may still take part in a ratio.
func inferTypeForColumn(values []string) schema.FieldType {
	nonEmpty := nonEmptyTrimmed(values)
	if len(nonEmpty) == 0 {
		return schema.Unknown
	}
	if allMatch(nonEmpty, isInt) {
		return schema.Integer
	}
	if allMatch(nonEmpty, isNumber) {
		return schema.Double
	}
	return schema.Text
}

func nonEmptyTrimmed(vals []string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func allMatch(vals []string, fn func(string) bool) bool {
	for _, v := range vals {
		if !fn(v) {
			return false
		}
	}
	return true
}

// isInt requires a signed base-10 integer that fits in int64.
func isInt(s string) bool {
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

// isNumber accepts decimal or scientific notation.
func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}
