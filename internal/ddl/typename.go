package ddl

import (
	"strconv"
	"strings"
)

// SplitTypeName splits a declared SQL type such as "NUMERIC(10, 2)" or
// "varchar(255)" into its upper-cased base name and numeric arguments.
// Arguments that are not integers (e.g. "MAX") are skipped.
func SplitTypeName(decl string) (string, []int) {
	decl = strings.TrimSpace(decl)
	open := strings.IndexByte(decl, '(')
	if open < 0 {
		return strings.ToUpper(decl), nil
	}
	base := strings.ToUpper(strings.TrimSpace(decl[:open]))
	inner := decl[open+1:]
	if end := strings.IndexByte(inner, ')'); end >= 0 {
		inner = inner[:end]
	}
	var args []int
	for _, a := range strings.Split(inner, ",") {
		if n, err := strconv.Atoi(strings.TrimSpace(a)); err == nil {
			args = append(args, n)
		}
	}
	return base, args
}

// Arg returns args[i] or 0 when absent.
func Arg(args []int, i int) int {
	if i < len(args) {
		return args[i]
	}
	return 0
}
