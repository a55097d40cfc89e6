package sql

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/syssam/sqlstmt"
)

// ConditionSpec is the right-hand side of a condition. It is implemented by
// Equals, Comparison, SetMembership and NullTest only.
type ConditionSpec interface {
	condition()
}

type (
	// Equals is the shorthand for Comparison{Op: "=", Value: Value}.
	Equals struct{ Value any }

	// Comparison compares the column with a single value.
	Comparison struct {
		Op    string
		Value any
	}

	// SetMembership tests the column against an ordered, non-empty list of values.
	// Op is IN or NOT IN.
	SetMembership struct {
		Op     string
		Values []any
	}

	// NullTest is IS NULL or IS NOT NULL. It binds no parameter.
	NullTest struct{ Op string }
)

func (Equals) condition()        {}
func (Comparison) condition()    {}
func (SetMembership) condition() {}
func (NullTest) condition()      {}

// Condition is a single predicate over one column.
type Condition struct {
	Column string
	Spec   ConditionSpec
}

// Conditions is an ordered list of predicates joined with AND. The order
// determines both the emitted SQL and which type tag binds which condition.
type Conditions []Condition

// Slots returns the number of type tags the conditions consume:
// one per condition except null tests.
func (cs Conditions) Slots() int {
	n := 0
	for _, c := range cs {
		switch s := c.Spec.(type) {
		case NullTest:
		case Comparison:
			if !IsNullOp(s.Op) {
				n++
			}
		default:
			n++
		}
	}
	return n
}

// EQ returns a "column = v" condition.
func EQ(column string, v any) Condition { return Condition{column, Equals{v}} }

// NEQ returns a "column != v" condition.
func NEQ(column string, v any) Condition { return Condition{column, Comparison{OpNEQ, v}} }

// GT returns a "column > v" condition.
func GT(column string, v any) Condition { return Condition{column, Comparison{OpGT, v}} }

// GTE returns a "column >= v" condition.
func GTE(column string, v any) Condition { return Condition{column, Comparison{OpGTE, v}} }

// LT returns a "column < v" condition.
func LT(column string, v any) Condition { return Condition{column, Comparison{OpLT, v}} }

// LTE returns a "column <= v" condition.
func LTE(column string, v any) Condition { return Condition{column, Comparison{OpLTE, v}} }

// Like returns a "column LIKE pattern" condition.
func Like(column string, pattern string) Condition {
	return Condition{column, Comparison{OpLike, pattern}}
}

// NotLike returns a "column NOT LIKE pattern" condition.
func NotLike(column string, pattern string) Condition {
	return Condition{column, Comparison{OpNotLike, pattern}}
}

// In returns a "column IN (...)" condition.
func In(column string, vs ...any) Condition {
	return Condition{column, SetMembership{OpIn, vs}}
}

// NotIn returns a "column NOT IN (...)" condition.
func NotIn(column string, vs ...any) Condition {
	return Condition{column, SetMembership{OpNotIn, vs}}
}

// IsNull returns a "column IS NULL" condition.
func IsNull(column string) Condition { return Condition{column, NullTest{OpIsNull}} }

// NotNull returns a "column IS NOT NULL" condition.
func NotNull(column string) Condition { return Condition{column, NullTest{OpIsNotNull}} }

// ParseCondition converts a loosely typed condition value into a Condition.
// Accepted shapes are:
//
//	v                      // column = v
//	[]any{op, v}           // column op v
//	[]any{"IN", []T{...}}  // column IN (...), also NOT IN
//	"IS NULL"              // also "IS NOT NULL"
//
// ConditionSpec values are accepted as-is.
func ParseCondition(column string, raw any) (Condition, error) {
	switch v := raw.(type) {
	case ConditionSpec:
		return Condition{column, v}, nil
	case string:
		if IsNullOp(v) {
			return Condition{column, NullTest{NormalizeOp(v)}}, nil
		}
		return Condition{column, Equals{v}}, nil
	case []any:
		if len(v) != 2 {
			return Condition{}, sqlstmt.NewCompileError(sqlstmt.ErrInvalidArgument, column, "",
				fmt.Sprintf("expect [operator, value] pair, got %d elements", len(v)))
		}
		op, ok := v[0].(string)
		if !ok {
			return Condition{}, sqlstmt.NewCompileError(sqlstmt.ErrInvalidArgument, column, "",
				fmt.Sprintf("expect string operator, got %T", v[0]))
		}
		if IsNullOp(op) {
			return Condition{column, NullTest{NormalizeOp(op)}}, nil
		}
		if IsSetOp(op) {
			vs, ok := sequence(v[1])
			if !ok {
				return Condition{}, sqlstmt.NewCompileError(sqlstmt.ErrExpectedSequence, column, op,
					fmt.Sprintf("got %T", v[1]))
			}
			return Condition{column, SetMembership{op, vs}}, nil
		}
		return Condition{column, Comparison{op, v[1]}}, nil
	default:
		return Condition{column, Equals{raw}}, nil
	}
}

// ParseConditions parses alternating column names and raw condition values:
//
//	ParseConditions("age", []any{">", 30}, "deleted_at", "IS NULL")
func ParseConditions(kv ...any) (Conditions, error) {
	if len(kv)%2 != 0 {
		return nil, sqlstmt.NewCompileError(sqlstmt.ErrInvalidArgument, "", "",
			"odd number of column/value arguments")
	}
	conds := make(Conditions, 0, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		column, ok := kv[i].(string)
		if !ok {
			return nil, sqlstmt.NewCompileError(sqlstmt.ErrInvalidArgument, "", "",
				fmt.Sprintf("expect string column at argument %d, got %T", i, kv[i]))
		}
		c, err := ParseCondition(column, kv[i+1])
		if err != nil {
			return nil, err
		}
		conds = append(conds, c)
	}
	return conds, nil
}

// Clause is a compiled SQL fragment and the parameters it binds.
type Clause struct {
	SQL    string
	Params Params
}

// CompileConditions compiles conds into a WHERE predicate. Type tags are taken
// from types left to right, one per non-null condition; an IN list repeats its
// tag once per element. An empty condition list compiles to "1".
// Running out of tags is an error, unused trailing tags are not.
func CompileConditions(conds Conditions, types string) (*Clause, error) {
	return compileConditions(conds, &typeCursor{types: types})
}

func compileConditions(conds Conditions, tc *typeCursor) (*Clause, error) {
	if len(conds) == 0 {
		return &Clause{SQL: "1"}, nil
	}
	var (
		parts  = make([]string, 0, len(conds))
		params Params
	)
	for _, c := range conds {
		column := Sanitize(c.Column)
		if column == "" {
			return nil, sqlstmt.NewCompileError(sqlstmt.ErrInvalidArgument, c.Column, "",
				"column name is empty after sanitization")
		}
		var op string
		var value any
		switch s := c.Spec.(type) {
		case NullTest:
			if !IsNullOp(s.Op) {
				return nil, sqlstmt.NewCompileError(sqlstmt.ErrInvalidOperator, column, s.Op, "")
			}
			parts = append(parts, quote(column)+" "+NormalizeOp(s.Op))
			continue
		case Equals:
			op, value = OpEQ, s.Value
		case Comparison:
			if IsNullOp(s.Op) {
				parts = append(parts, quote(column)+" "+NormalizeOp(s.Op))
				continue
			}
			op, value = s.Op, s.Value
		case SetMembership:
			if !IsSetOp(s.Op) {
				return nil, sqlstmt.NewCompileError(sqlstmt.ErrInvalidOperator, column, s.Op,
					"set membership requires IN or NOT IN")
			}
			op, value = s.Op, s.Values
		default:
			return nil, sqlstmt.NewCompileError(sqlstmt.ErrInvalidArgument, column, "",
				fmt.Sprintf("unexpected condition %T", c.Spec))
		}
		if !IsComparisonOp(op) {
			return nil, sqlstmt.NewCompileError(sqlstmt.ErrInvalidOperator, column, op, "")
		}
		op = NormalizeOp(op)
		tag, err := tc.next(column)
		if err != nil {
			return nil, err
		}
		if !IsSetOp(op) {
			parts = append(parts, quote(column)+" "+op+" ?")
			params = append(params, Param{Column: column, Value: value, Type: tag})
			continue
		}
		vs, ok := sequence(value)
		if !ok || len(vs) == 0 {
			return nil, sqlstmt.NewCompileError(sqlstmt.ErrExpectedSequence, column, op,
				fmt.Sprintf("expect non-empty sequence, got %T", value))
		}
		parts = append(parts, quote(column)+" "+op+" ("+placeholders(len(vs), ",")+")")
		for _, v := range vs {
			params = append(params, Param{Column: column, Value: v, Type: tag})
		}
	}
	return &Clause{SQL: strings.Join(parts, " AND "), Params: params}, nil
}

// placeholders returns n "?" markers joined by sep.
func placeholders(n int, sep string) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?"+sep, n-1) + "?"
}

// sequence converts any slice or array (other than []byte) into []any.
func sequence(v any) ([]any, bool) {
	switch v := v.(type) {
	case []any:
		return v, true
	case []byte, nil:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	vs := make([]any, rv.Len())
	for i := range vs {
		vs[i] = rv.Index(i).Interface()
	}
	return vs, true
}
