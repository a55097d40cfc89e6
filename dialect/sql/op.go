package sql

import "strings"

// Operators accepted in conditions.
const (
	OpEQ        = "="
	OpNEQ       = "!="
	OpLT        = "<"
	OpLTE       = "<="
	OpGT        = ">"
	OpGTE       = ">="
	OpIn        = "IN"
	OpNotIn     = "NOT IN"
	OpLike      = "LIKE"
	OpNotLike   = "NOT LIKE"
	OpIsNull    = "IS NULL"
	OpIsNotNull = "IS NOT NULL"
)

var comparisonOps = map[string]bool{
	OpEQ: true, OpNEQ: true, OpLT: true, OpLTE: true, OpGT: true, OpGTE: true,
	OpIn: true, OpNotIn: true, OpLike: true, OpNotLike: true,
}

// NormalizeOp upper-cases op and collapses its internal whitespace,
// so that " not  in" becomes "NOT IN".
func NormalizeOp(op string) string {
	return strings.Join(strings.Fields(strings.ToUpper(op)), " ")
}

// IsComparisonOp reports whether op is a comparison or set-membership operator.
func IsComparisonOp(op string) bool {
	return comparisonOps[NormalizeOp(op)]
}

// IsNullOp reports whether op is IS NULL or IS NOT NULL.
func IsNullOp(op string) bool {
	switch NormalizeOp(op) {
	case OpIsNull, OpIsNotNull:
		return true
	}
	return false
}

// IsSetOp reports whether op is IN or NOT IN.
func IsSetOp(op string) bool {
	switch NormalizeOp(op) {
	case OpIn, OpNotIn:
		return true
	}
	return false
}
