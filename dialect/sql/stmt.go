package sql

import (
	"fmt"
	"strings"

	"github.com/syssam/sqlstmt"
)

// Assignment sets a column to a value in INSERT, UPSERT or UPDATE SET lists.
type Assignment struct {
	Column string
	Value  any
}

// Assignments is an ordered column to value mapping.
type Assignments []Assignment

// Set returns a single assignment.
func Set(column string, v any) Assignment { return Assignment{column, v} }

// Stmt is a compiled statement ready to be executed.
type Stmt struct {
	Table  string
	SQL    string
	Params Params
}

// Query returns the SQL text and its raw arguments.
func (s *Stmt) Query() (string, []any) {
	return s.SQL, s.Params.Args()
}

// SelectStmt compiles:
//
//	SELECT <columns> FROM <table> WHERE <where> [ORDER BY ...] [LIMIT n [OFFSET m]]
//
// columns is either []string{"*"} or an explicit list; an element may hold
// several comma-separated names.
func SelectStmt(table string, columns []string, where Conditions, types string, order Order, page Page) (*Stmt, error) {
	t, err := tableName(table)
	if err != nil {
		return nil, err
	}
	cols, err := selectColumns(columns)
	if err != nil {
		return nil, sqlstmt.WithTable(err, t)
	}
	if err := checkSlots(where.Slots(), types); err != nil {
		return nil, sqlstmt.WithTable(err, t)
	}
	cond, err := CompileConditions(where, types)
	if err != nil {
		return nil, sqlstmt.WithTable(err, t)
	}
	orderBy, err := CompileOrderBy(order)
	if err != nil {
		return nil, sqlstmt.WithTable(err, t)
	}
	parts := []string{"SELECT", cols, "FROM", quote(t), "WHERE", cond.SQL}
	if orderBy != "" {
		parts = append(parts, orderBy)
	}
	if limit := CompileLimit(page); limit != "" {
		parts = append(parts, limit)
	}
	return &Stmt{Table: t, SQL: strings.Join(parts, " "), Params: cond.Params}, nil
}

// InsertStmt compiles:
//
//	INSERT INTO <table> (<columns>) VALUES (<placeholders>) ON DUPLICATE KEY UPDATE <upsert>
//
// Without upsert assignments the duplicate-key clause is the no-op "`id` = `id`".
// With them, "`id` = LAST_INSERT_ID(`id`)" is appended so the id of the
// existing row is reported as the insert id. Insert parameters precede upsert
// parameters, and a column may appear in both lists.
func InsertStmt(table string, values Assignments, types string, upsert Assignments, upsertTypes string) (*Stmt, error) {
	t, err := tableName(table)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, &sqlstmt.CompileError{Kind: sqlstmt.ErrInvalidArgument, Table: t, Msg: "no columns to insert"}
	}
	if len(values) != len(types) {
		return nil, &sqlstmt.CompileError{Kind: sqlstmt.ErrParamTypeMismatch, Table: t,
			Msg: fmt.Sprintf("%d columns, %d type tags", len(values), len(types))}
	}
	if len(upsert) != len(upsertTypes) {
		return nil, &sqlstmt.CompileError{Kind: sqlstmt.ErrParamTypeMismatch, Table: t,
			Msg: fmt.Sprintf("%d upsert columns, %d upsert type tags", len(upsert), len(upsertTypes))}
	}
	columns, params, err := compileAssignments(values, &typeCursor{types: types})
	if err != nil {
		return nil, sqlstmt.WithTable(err, t)
	}
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(quote(t))
	b.WriteString(" (")
	b.WriteString(strings.Join(columns, ", "))
	b.WriteString(") VALUES (")
	b.WriteString(placeholders(len(columns), ", "))
	b.WriteString(") ON DUPLICATE KEY UPDATE ")
	if len(upsert) == 0 {
		b.WriteString("`id` = `id`")
		return &Stmt{Table: t, SQL: b.String(), Params: params}, nil
	}
	set, uparams, err := compileAssignments(upsert, &typeCursor{types: upsertTypes})
	if err != nil {
		return nil, sqlstmt.WithTable(err, t)
	}
	for _, c := range set {
		b.WriteString(c)
		b.WriteString(" = ?, ")
	}
	b.WriteString("`id` = LAST_INSERT_ID(`id`)")
	return &Stmt{Table: t, SQL: b.String(), Params: append(params, uparams...)}, nil
}

// UpdateStmt compiles:
//
//	UPDATE <table> SET <column = ?, ...> WHERE <where>
//
// The first len(set) type tags bind the SET values, the rest bind where.
func UpdateStmt(table string, set Assignments, where Conditions, types string) (*Stmt, error) {
	t, err := tableName(table)
	if err != nil {
		return nil, err
	}
	if len(set) == 0 {
		return nil, &sqlstmt.CompileError{Kind: sqlstmt.ErrInvalidArgument, Table: t, Msg: "no columns to update"}
	}
	if err := checkSlots(len(set)+where.Slots(), types); err != nil {
		return nil, sqlstmt.WithTable(err, t)
	}
	tc := &typeCursor{types: types}
	columns, params, err := compileAssignments(set, tc)
	if err != nil {
		return nil, sqlstmt.WithTable(err, t)
	}
	cond, err := compileConditions(where, tc)
	if err != nil {
		return nil, sqlstmt.WithTable(err, t)
	}
	for i := range columns {
		columns[i] += " = ?"
	}
	query := "UPDATE " + quote(t) + " SET " + strings.Join(columns, ", ") + " WHERE " + cond.SQL
	return &Stmt{Table: t, SQL: query, Params: append(params, cond.Params...)}, nil
}

// DeleteStmt compiles:
//
//	DELETE FROM <table> WHERE <where>
func DeleteStmt(table string, where Conditions, types string) (*Stmt, error) {
	t, err := tableName(table)
	if err != nil {
		return nil, err
	}
	if err := checkSlots(where.Slots(), types); err != nil {
		return nil, sqlstmt.WithTable(err, t)
	}
	cond, err := CompileConditions(where, types)
	if err != nil {
		return nil, sqlstmt.WithTable(err, t)
	}
	return &Stmt{Table: t, SQL: "DELETE FROM " + quote(t) + " WHERE " + cond.SQL, Params: cond.Params}, nil
}

func tableName(table string) (string, error) {
	t := Sanitize(table)
	if t == "" {
		return "", &sqlstmt.CompileError{Kind: sqlstmt.ErrInvalidArgument, Table: table,
			Msg: "table name is empty after sanitization"}
	}
	return t, nil
}

func selectColumns(columns []string) (string, error) {
	var cols []string
	for _, c := range columns {
		n := len(cols)
		for _, name := range strings.Split(Sanitize(c), ",") {
			switch name {
			case "":
			case "*":
				cols = append(cols, "*")
			default:
				cols = append(cols, quote(name))
			}
		}
		if len(cols) == n {
			return "", sqlstmt.NewCompileError(sqlstmt.ErrInvalidArgument, c, "",
				"column name is empty after sanitization")
		}
	}
	if len(cols) == 0 {
		return "", sqlstmt.NewCompileError(sqlstmt.ErrInvalidArgument, "", "", "no columns to select")
	}
	return strings.Join(cols, ", "), nil
}

// compileAssignments sanitizes and quotes the assigned columns and binds their values.
func compileAssignments(as Assignments, tc *typeCursor) ([]string, Params, error) {
	columns := make([]string, 0, len(as))
	params := make(Params, 0, len(as))
	for _, a := range as {
		column := Sanitize(a.Column)
		if column == "" {
			return nil, nil, sqlstmt.NewCompileError(sqlstmt.ErrInvalidArgument, a.Column, "",
				"column name is empty after sanitization")
		}
		tag, err := tc.next(column)
		if err != nil {
			return nil, nil, err
		}
		columns = append(columns, quote(column))
		params = append(params, Param{Column: column, Value: a.Value, Type: tag})
	}
	return columns, params, nil
}

// checkSlots verifies that types holds exactly one tag per slot.
func checkSlots(slots int, types string) error {
	if slots != len(types) {
		return sqlstmt.NewCompileError(sqlstmt.ErrParamTypeMismatch, "", "",
			fmt.Sprintf("%d parameter slots, %d type tags", slots, len(types)))
	}
	return nil
}
