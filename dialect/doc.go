// Package dialect provides the database dialect abstraction used by sqlstmt.
//
// This package defines the interfaces shared by the statement executor and
// the connection registry. Statements compiled by dialect/sql use the MySQL
// grammar (back-quoted identifiers, positional "?" placeholders and
// ON DUPLICATE KEY UPDATE upserts).
//
// # Supported Dialects
//
//   - MySQL: MySQL/MariaDB database
//   - SQLite: SQLite database, which accepts the same identifier quoting and
//     placeholders for SELECT, UPDATE and DELETE statements
//
// # Driver Interface
//
//	type Driver interface {
//	    ExecQuerier
//	    Tx(ctx context.Context) (Tx, error)
//	    Close() error
//	    Dialect() string
//	}
//
// # Transaction Interface
//
//	type Tx interface {
//	    ExecQuerier
//	    Commit() error
//	    Rollback() error
//	}
//
// # ExecQuerier Interface
//
// The ExecQuerier interface is implemented by both Driver and Tx:
//
//	type ExecQuerier interface {
//	    Exec(ctx context.Context, query string, args, v any) error
//	    Query(ctx context.Context, query string, args, v any) error
//	}
//
// # Usage
//
//	import (
//	    "github.com/syssam/sqlstmt/dialect"
//	    "github.com/syssam/sqlstmt/dialect/sql"
//	)
//
//	drv, err := sql.Open(dialect.MySQL, "user:pass@tcp(localhost)/app")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer drv.Close()
//
// Most callers obtain drivers through the registry package instead.
package dialect
