package sql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"github.com/syssam/sqlstmt"
)

// TypeTag tells the executor how a parameter value is bound.
type TypeTag byte

// Supported type tags.
const (
	TypeInt    TypeTag = 'i'
	TypeFloat  TypeTag = 'd'
	TypeString TypeTag = 's'
)

// Valid reports whether t is one of the supported tags.
func (t TypeTag) Valid() bool {
	switch t {
	case TypeInt, TypeFloat, TypeString:
		return true
	}
	return false
}

// String returns the one-character tag.
func (t TypeTag) String() string { return string(rune(t)) }

// Param is a single bound value together with its type tag.
type Param struct {
	Column string // Column the value is compared with or assigned to
	Value  any
	Type   TypeTag
}

// Params is the ordered list of parameters of a statement. Its i-th element
// binds the i-th placeholder.
type Params []Param

// Args returns the raw parameter values in placeholder order.
func (p Params) Args() []any {
	args := make([]any, len(p))
	for i := range p {
		args[i] = p[i].Value
	}
	return args
}

// Types returns the type tags in placeholder order, e.g. "iis".
func (p Params) Types() string {
	var b strings.Builder
	b.Grow(len(p))
	for i := range p {
		b.WriteByte(byte(p[i].Type))
	}
	return b.String()
}

// Bind returns the parameter values coerced to their tagged types:
// int64 for 'i', float64 for 'd' and string for 's'. Nil values bind as NULL.
func (p Params) Bind() ([]any, error) {
	args := make([]any, len(p))
	for i, pr := range p {
		if pr.Value == nil {
			continue
		}
		var err error
		switch pr.Type {
		case TypeInt:
			args[i], err = toInt64(pr.Value)
		case TypeFloat:
			args[i], err = cast.ToFloat64E(pr.Value)
		case TypeString:
			args[i], err = cast.ToStringE(pr.Value)
		default:
			err = fmt.Errorf("unknown type tag %q", pr.Type.String())
		}
		if err != nil {
			return nil, sqlstmt.NewCompileError(sqlstmt.ErrParamTypeMismatch, pr.Column, "",
				fmt.Sprintf("binding parameter %d as %q: %v", i+1, pr.Type.String(), err))
		}
	}
	return args, nil
}

// toInt64 converts v to an int64. Strings are always read as base 10,
// so "010" is 10.
func toInt64(v any) (int64, error) {
	switch s := v.(type) {
	case string:
		return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	case []byte:
		return strconv.ParseInt(strings.TrimSpace(string(s)), 10, 64)
	}
	return cast.ToInt64E(v)
}

// typeCursor hands out type tags left to right.
type typeCursor struct {
	types string
	pos   int
}

// next consumes one tag for column.
func (c *typeCursor) next(column string) (TypeTag, error) {
	if c.pos >= len(c.types) {
		return 0, sqlstmt.NewCompileError(sqlstmt.ErrParamTypeMismatch, column, "",
			fmt.Sprintf("type tags exhausted after %d", len(c.types)))
	}
	t := TypeTag(c.types[c.pos])
	if !t.Valid() {
		return 0, sqlstmt.NewCompileError(sqlstmt.ErrParamTypeMismatch, column, "",
			fmt.Sprintf("unknown type tag %q at position %d", c.types[c.pos], c.pos+1))
	}
	c.pos++
	return t, nil
}
