// Package calc implements the row-wise expression used to populate a
// normalized field: the ratio of a source field to a reference field, with
// zero or missing references producing null.
package calc

import (
	"fmt"
	"strconv"
	"strings"

	"fieldnorm/internal/ddl"
)

// Ratio divides Numerator by Denominator per row. Both are field names.
type Ratio struct {
	Numerator   string
	Denominator string
}

func (r Ratio) String() string {
	return fmt.Sprintf("norm(!%s!, !%s!)", r.Numerator, r.Denominator)
}

// Eval applies the row rule:
//
//	nil              if den is nil or *den == 0
//	nil              if num is nil
//	*num / *den      otherwise
func (r Ratio) Eval(num, den *float64) *float64 {
	if den == nil || *den == 0 || num == nil {
		return nil
	}
	v := *num / *den
	return &v
}

// ParseOperand parses a textual cell into an operand. Blank cells are null.
func ParseOperand(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("calc: %q is not a number", s)
	}
	return &v, nil
}

// FormatValue renders a result for a text-based dataset. Null renders as an
// empty cell.
func FormatValue(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}

// SQL renders the ratio as a CASE expression for the dialect. The numerator
// is cast to the dialect's double type so integer columns never truncate.
func (r Ratio) SQL(d ddl.Dialect) string {
	num := d.Quote(r.Numerator)
	den := d.Quote(r.Denominator)
	return fmt.Sprintf(
		"CASE WHEN %s IS NULL OR %s = 0 THEN NULL ELSE CAST(%s AS %s) / %s END",
		den, den, num, d.DoubleType, den,
	)
}
