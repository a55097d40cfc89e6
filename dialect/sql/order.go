package sql

import (
	"strconv"
	"strings"

	"github.com/syssam/sqlstmt"
)

// Order directions.
const (
	OrderAsc  = "ASC"
	OrderDesc = "DESC"
)

// OrderTerm orders by a single column.
type OrderTerm struct {
	Column    string
	Direction string
}

// Order is an ordered list of terms; the first term is the primary sort key.
type Order []OrderTerm

// Asc returns an ascending order term.
func Asc(column string) OrderTerm { return OrderTerm{column, OrderAsc} }

// Desc returns a descending order term.
func Desc(column string) OrderTerm { return OrderTerm{column, OrderDesc} }

// CompileOrderBy returns the ORDER BY clause for o, or "" if o is empty.
func CompileOrderBy(o Order) (string, error) {
	if len(o) == 0 {
		return "", nil
	}
	terms := make([]string, 0, len(o))
	for _, t := range o {
		column := Sanitize(t.Column)
		if column == "" {
			return "", sqlstmt.NewCompileError(sqlstmt.ErrInvalidArgument, t.Column, "",
				"order column is empty after sanitization")
		}
		dir := strings.ToUpper(strings.TrimSpace(t.Direction))
		if dir != OrderAsc && dir != OrderDesc {
			return "", sqlstmt.NewCompileError(sqlstmt.ErrInvalidOrderDirection, column, t.Direction, "")
		}
		terms = append(terms, quote(column)+" "+dir)
	}
	return "ORDER BY " + strings.Join(terms, ", "), nil
}

// Page limits the rows of a select. A zero Limit means unbounded,
// in which case Offset is ignored.
type Page struct {
	Limit  int
	Offset int
}

// PageOf builds a Page from loosely typed input such as query-string values.
// Non-numeric and negative values become 0.
func PageOf(limit, offset any) Page {
	return Page{Limit: nonNegative(limit), Offset: nonNegative(offset)}
}

func nonNegative(v any) int {
	n, err := toInt64(v)
	if err != nil || n < 0 {
		return 0
	}
	return int(n)
}

// CompileLimit returns the LIMIT/OFFSET clause for p, or "" if p is unbounded.
func CompileLimit(p Page) string {
	limit, offset := max(p.Limit, 0), max(p.Offset, 0)
	if limit == 0 {
		return ""
	}
	if offset == 0 {
		return "LIMIT " + strconv.Itoa(limit)
	}
	return "LIMIT " + strconv.Itoa(limit) + " OFFSET " + strconv.Itoa(offset)
}
