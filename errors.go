package sqlstmt

import (
	"errors"
	"fmt"
	"strings"
)

// Standard sentinel errors. Every error returned by this module matches
// exactly one of them with errors.Is.
var (
	// ErrInvalidArgument is returned when a table name or column specification
	// is missing, or an identifier is empty after sanitization.
	ErrInvalidArgument = errors.New("sqlstmt: invalid argument")

	// ErrParamTypeMismatch is returned when the number of type tags does not match
	// the number of scalar-consuming conditions or columns.
	ErrParamTypeMismatch = errors.New("sqlstmt: parameter type mismatch")

	// ErrInvalidOperator is returned for an operator outside the comparison whitelist.
	ErrInvalidOperator = errors.New("sqlstmt: invalid operator")

	// ErrInvalidOrderDirection is returned for an order direction other than ASC or DESC.
	ErrInvalidOrderDirection = errors.New("sqlstmt: invalid order direction")

	// ErrExpectedSequence is returned when an IN or NOT IN value is not a non-empty sequence.
	ErrExpectedSequence = errors.New("sqlstmt: expected sequence")

	// ErrConnectionNotConfigured is returned when a connection name is absent from configuration.
	ErrConnectionNotConfigured = errors.New("sqlstmt: connection not configured")

	// ErrConnectionFailed is returned when the driver could not establish a connection.
	ErrConnectionFailed = errors.New("sqlstmt: connection failed")

	// ErrStatementFailed is returned when the database rejected or failed a statement.
	ErrStatementFailed = errors.New("sqlstmt: statement failed")
)

// CompileError describes a statement that could not be compiled.
// Kind is one of the compile-time sentinels above.
type CompileError struct {
	Kind     error  // Sentinel kind (e.g. ErrInvalidOperator)
	Table    string // Table name, if known
	Column   string // Offending column, if any
	Operator string // Offending operator or direction, if any
	Msg      string
}

// Error returns the error string.
func (e *CompileError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Kind.Error())
	if e.Table != "" {
		fmt.Fprintf(&sb, " (table=%q)", e.Table)
	}
	if e.Column != "" {
		fmt.Fprintf(&sb, " (column=%q)", e.Column)
	}
	if e.Operator != "" {
		fmt.Fprintf(&sb, " (operator=%q)", e.Operator)
	}
	if e.Msg != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Msg)
	}
	return sb.String()
}

// Is reports whether the target error matches the error kind.
func (e *CompileError) Is(err error) bool {
	return err == e.Kind
}

// NewCompileError returns a new CompileError of the given kind.
func NewCompileError(kind error, column, operator, msg string) *CompileError {
	return &CompileError{Kind: kind, Column: column, Operator: operator, Msg: msg}
}

// WithTable returns err with the table name attached if it is a CompileError
// without one. Other errors are returned unchanged.
func WithTable(err error, table string) error {
	var e *CompileError
	if errors.As(err, &e) && e.Table == "" {
		c := *e
		c.Table = table
		return &c
	}
	return err
}

// IsCompileError returns true if the error is a CompileError.
func IsCompileError(err error) bool {
	if err == nil {
		return false
	}
	var e *CompileError
	return errors.As(err, &e)
}

// ConnectionError represents a failure to resolve or open a named connection.
type ConnectionError struct {
	Kind error  // ErrConnectionNotConfigured or ErrConnectionFailed
	Name string // Connection name
	Err  error  // Underlying driver error, if any
}

// Error returns the error string.
func (e *ConnectionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%v %q: %v", e.Kind, e.Name, e.Err)
	}
	return fmt.Sprintf("%v %q", e.Kind, e.Name)
}

// Unwrap returns the underlying error.
func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// Is reports whether the target error matches the error kind.
func (e *ConnectionError) Is(err error) bool {
	return err == e.Kind
}

// NewNotConfiguredError returns a ConnectionError for a name missing from configuration.
func NewNotConfiguredError(name string) *ConnectionError {
	return &ConnectionError{Kind: ErrConnectionNotConfigured, Name: name}
}

// NewConnectionFailedError returns a ConnectionError for a connection that could not be opened.
func NewConnectionFailedError(name string, err error) *ConnectionError {
	return &ConnectionError{Kind: ErrConnectionFailed, Name: name, Err: err}
}

// IsConnectionError returns true if the error is a ConnectionError.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var e *ConnectionError
	return errors.As(err, &e)
}

// StatementError wraps a driver error raised while preparing or executing a statement.
type StatementError struct {
	Table string // Table the statement targets, empty for raw statements
	Op    string // Operation (e.g. "select", "insert", "raw")
	Query string // SQL text sent to the driver
	Err   error  // Underlying driver error
}

// Error returns the error string.
func (e *StatementError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("sqlstmt: %s %s: %v", e.Op, e.Table, e.Err)
	}
	return fmt.Sprintf("sqlstmt: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *StatementError) Unwrap() error {
	return e.Err
}

// Is reports whether the target error matches ErrStatementFailed.
func (e *StatementError) Is(err error) bool {
	return err == ErrStatementFailed
}

// NewStatementError returns a new StatementError.
func NewStatementError(table, op, query string, err error) *StatementError {
	return &StatementError{Table: table, Op: op, Query: query, Err: err}
}

// IsStatementError returns true if the error is a StatementError.
func IsStatementError(err error) bool {
	if err == nil {
		return false
	}
	var e *StatementError
	return errors.As(err, &e)
}
