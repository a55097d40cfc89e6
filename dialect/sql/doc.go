// Package sql compiles single-table MySQL statements and executes them.
//
// Statements are compiled from structured input into SQL text with positional
// "?" placeholders and an ordered list of typed parameters. Identifiers are
// sanitized against an allow-list before they reach the SQL text; values are
// never interpolated.
//
// # Conditions
//
// A condition is an equality shorthand, an explicit comparison, a set
// membership test or a null test:
//
//	where := sql.Conditions{
//	    sql.EQ("status", "active"),                // `status` = ?
//	    sql.GT("age", 30),                         // `age` > ?
//	    sql.In("id", 1, 2, 3),                     // `id` IN (?,?,?)
//	    sql.IsNull("deleted_at"),                  // `deleted_at` IS NULL
//	}
//	clause, err := sql.CompileConditions(where, "sii")
//
// Each non-null condition consumes one type tag ('i', 'd' or 's') from the
// tag string, in order. An IN list binds every element with its single tag,
// so the clause above binds "siiii". Loosely typed input can be converted at
// the boundary with ParseCondition and ParseConditions.
//
// # Statements
//
//	stmt, err := sql.SelectStmt("users", []string{"id", "name"}, where, "sii",
//	    sql.Order{sql.Desc("created_at")}, sql.Page{Limit: 10})
//	// SELECT `id`, `name` FROM `users` WHERE ... ORDER BY `created_at` DESC LIMIT 10
//
//	stmt, err := sql.InsertStmt("users",
//	    sql.Assignments{sql.Set("email", "a@b.c")}, "s",
//	    sql.Assignments{sql.Set("name", "A")}, "s")
//	// INSERT INTO `users` (`email`) VALUES (?) ON DUPLICATE KEY UPDATE `name` = ?, `id` = LAST_INSERT_ID(`id`)
//
// UpdateStmt and DeleteStmt follow the same pattern.
//
// # Execution
//
// Driver wraps a *database/sql.DB. StatsDriver and DebugDriver decorate it
// with statistics and debug logging:
//
//	drv := sql.NewStatsDriver(sql.OpenDB(dialect.MySQL, db), sql.WithSlowQueryLog(nil))
//	args, err := stmt.Params.Bind()
//	var res sql.Result
//	err = drv.Exec(ctx, stmt.SQL, args, &res)
package sql
