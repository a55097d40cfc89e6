package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/syssam/sqlstmt"
	"github.com/syssam/sqlstmt/client"
	"github.com/syssam/sqlstmt/dialect/sql"
)

// statement is the YAML description of one statement:
//
//	op: select
//	table: users
//	columns: [id, name]
//	where:
//	  - {column: age, op: ">", value: 30}
//	  - {column: deleted_at, op: IS NULL}
//	types: i
//	order:
//	  - {column: created_at, direction: desc}
//	limit: 10
type statement struct {
	Op          string       `yaml:"op"`
	Table       string       `yaml:"table"`
	Columns     []string     `yaml:"columns"`
	Where       []condition  `yaml:"where"`
	Types       string       `yaml:"types"`
	Order       []orderTerm  `yaml:"order"`
	Limit       any          `yaml:"limit"`
	Offset      any          `yaml:"offset"`
	Values      []assignment `yaml:"values"`
	Upsert      []assignment `yaml:"upsert"`
	UpsertTypes string       `yaml:"upsert_types"`
	Set         []assignment `yaml:"set"`
}

type condition struct {
	Column string `yaml:"column"`
	Op     string `yaml:"op"` // empty means equality
	Value  any    `yaml:"value"`
}

type orderTerm struct {
	Column    string `yaml:"column"`
	Direction string `yaml:"direction"`
}

type assignment struct {
	Column string `yaml:"column"`
	Value  any    `yaml:"value"`
}

// readStatement decodes a statement from path, or from stdin when path is "-".
func readStatement(path string, stdin io.Reader) (*statement, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var s statement
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty statement", sqlstmt.ErrInvalidArgument)
		}
		return nil, fmt.Errorf("decoding statement: %w", err)
	}
	s.Op = strings.ToLower(strings.TrimSpace(s.Op))
	return &s, nil
}

func (s *statement) conditions() (sql.Conditions, error) {
	conds := make(sql.Conditions, 0, len(s.Where))
	for _, w := range s.Where {
		raw := w.Value
		if w.Op != "" {
			raw = []any{w.Op, w.Value}
		}
		c, err := sql.ParseCondition(w.Column, raw)
		if err != nil {
			return nil, err
		}
		conds = append(conds, c)
	}
	return conds, nil
}

func (s *statement) order() sql.Order {
	order := make(sql.Order, len(s.Order))
	for i, o := range s.Order {
		order[i] = sql.OrderTerm{Column: o.Column, Direction: o.Direction}
	}
	return order
}

func assignments(as []assignment) sql.Assignments {
	if len(as) == 0 {
		return nil
	}
	out := make(sql.Assignments, len(as))
	for i, a := range as {
		out[i] = sql.Set(a.Column, a.Value)
	}
	return out
}

// compile assembles the statement without touching a database.
func (s *statement) compile() (*sql.Stmt, error) {
	switch s.Op {
	case "select":
		where, err := s.conditions()
		if err != nil {
			return nil, err
		}
		return sql.SelectStmt(s.Table, s.Columns, where, s.Types, s.order(), sql.PageOf(s.Limit, s.Offset))
	case "insert":
		return sql.InsertStmt(s.Table, assignments(s.Values), s.Types, assignments(s.Upsert), s.UpsertTypes)
	case "update":
		where, err := s.conditions()
		if err != nil {
			return nil, err
		}
		return sql.UpdateStmt(s.Table, assignments(s.Set), where, s.Types)
	case "delete":
		where, err := s.conditions()
		if err != nil {
			return nil, err
		}
		return sql.DeleteStmt(s.Table, where, s.Types)
	default:
		return nil, fmt.Errorf("%w: unknown op %q", sqlstmt.ErrInvalidArgument, s.Op)
	}
}

// run executes the statement through c. Selects return their rows, inserts
// the inserted id and other statements nil.
func (s *statement) run(ctx context.Context, c *client.Client) (any, error) {
	switch s.Op {
	case "select":
		where, err := s.conditions()
		if err != nil {
			return nil, err
		}
		return c.Select(ctx, s.Table, s.Columns, where, s.Types, s.order(), sql.PageOf(s.Limit, s.Offset))
	case "insert":
		id, err := c.Insert(ctx, s.Table, assignments(s.Values), s.Types, assignments(s.Upsert), s.UpsertTypes)
		if err != nil {
			return nil, err
		}
		return map[string]int64{"id": id}, nil
	case "update":
		where, err := s.conditions()
		if err != nil {
			return nil, err
		}
		return nil, c.Update(ctx, s.Table, assignments(s.Set), where, s.Types)
	case "delete":
		where, err := s.conditions()
		if err != nil {
			return nil, err
		}
		return nil, c.Delete(ctx, s.Table, where, s.Types)
	default:
		return nil, fmt.Errorf("%w: unknown op %q", sqlstmt.ErrInvalidArgument, s.Op)
	}
}
