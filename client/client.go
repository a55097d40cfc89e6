// Package client executes compiled statements against a named connection
// of a registry.Registry.
package client

import (
	"context"
	stdsql "database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/syssam/sqlstmt"
	"github.com/syssam/sqlstmt/cache"
	"github.com/syssam/sqlstmt/dialect"
	"github.com/syssam/sqlstmt/dialect/sql"
	"github.com/syssam/sqlstmt/registry"
)

// DefaultConnection is the connection name used when none is configured.
const DefaultConnection = "default"

// Client runs select, insert, update and delete statements on one connection.
// It is safe for concurrent use.
type Client struct {
	reg    *registry.Registry
	conn   string
	cache  sqlstmt.Cache
	ttl    time.Duration
	logger *slog.Logger
}

// Option configures the Client.
type Option func(*Client)

// WithConnection sets the connection name. Default is DefaultConnection.
func WithConnection(name string) Option {
	return func(c *Client) {
		c.conn = name
	}
}

// WithCache caches select results for ttl. Successful inserts, updates and
// deletes made through the client drop the cached results of their table.
// Raw statements bypass the cache.
func WithCache(store sqlstmt.Cache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = store
		c.ttl = ttl
	}
}

// WithLogger sets the logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New returns a Client using reg for connections.
func New(reg *registry.Registry, opts ...Option) *Client {
	c := &Client{
		reg:    reg,
		conn:   DefaultConnection,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Select returns the rows of table matching where. Zero matching rows
// yield an empty slice.
func (c *Client) Select(ctx context.Context, table string, columns []string, where sql.Conditions, types string, order sql.Order, page sql.Page) ([]map[string]any, error) {
	stmt, err := sql.SelectStmt(table, columns, where, types, order, page)
	if err != nil {
		return nil, err
	}
	args, err := stmt.Params.Bind()
	if err != nil {
		return nil, sqlstmt.WithTable(err, stmt.Table)
	}
	key := sqlstmt.CacheKey{
		Connection: c.conn,
		Table:      stmt.Table,
		Operation:  "select",
		Predicates: fmt.Sprintf("%s|%v", stmt.SQL, args),
		Limit:      page.Limit,
		Offset:     page.Offset,
	}
	if rows, ok := c.cached(ctx, key); ok {
		return rows, nil
	}
	rows, err := c.query(ctx, "select", stmt.Table, stmt.SQL, args)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, rows)
	return rows, nil
}

// Insert inserts a row into table and returns its id. With upsert
// assignments, a duplicate-key conflict updates the existing row instead
// and its id is returned.
func (c *Client) Insert(ctx context.Context, table string, values sql.Assignments, types string, upsert sql.Assignments, upsertTypes string) (int64, error) {
	stmt, err := sql.InsertStmt(table, values, types, upsert, upsertTypes)
	if err != nil {
		return 0, err
	}
	res, err := c.exec(ctx, "insert", stmt)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, sqlstmt.NewStatementError(stmt.Table, "insert", stmt.SQL, err)
	}
	return id, nil
}

// Update sets columns of the rows of table matching where.
func (c *Client) Update(ctx context.Context, table string, set sql.Assignments, where sql.Conditions, types string) error {
	stmt, err := sql.UpdateStmt(table, set, where, types)
	if err != nil {
		return err
	}
	_, err = c.exec(ctx, "update", stmt)
	return err
}

// Delete deletes the rows of table matching where.
func (c *Client) Delete(ctx context.Context, table string, where sql.Conditions, types string) error {
	stmt, err := sql.DeleteStmt(table, where, types)
	if err != nil {
		return err
	}
	_, err = c.exec(ctx, "delete", stmt)
	return err
}

// RawQuery runs query as-is and returns its rows. Nothing is sanitized.
func (c *Client) RawQuery(ctx context.Context, query string, args ...any) ([]map[string]any, error) {
	if args == nil {
		args = []any{}
	}
	return c.query(ctx, "raw", "", query, args)
}

// RawPrepare prepares query as-is on the client's connection.
// The caller must close the returned statement.
func (c *Client) RawPrepare(ctx context.Context, query string) (*stdsql.Stmt, error) {
	drv, err := c.reg.Driver(ctx, c.conn)
	if err != nil {
		return nil, err
	}
	p, ok := drv.(sql.Preparer)
	if !ok {
		return nil, fmt.Errorf("%w: driver %T cannot prepare statements", sqlstmt.ErrInvalidArgument, drv)
	}
	stmt, err := p.Prepare(ctx, query)
	if err != nil {
		return nil, sqlstmt.NewStatementError("", "prepare", query, err)
	}
	return stmt, nil
}

func (c *Client) query(ctx context.Context, op, table, query string, args []any) ([]map[string]any, error) {
	drv, err := c.driver(ctx)
	if err != nil {
		return nil, err
	}
	c.logger.DebugContext(ctx, "running query", "conn", c.conn, "op", op, "table", table, "query", query)
	var rows sql.Rows
	if err := drv.Query(ctx, query, args, &rows); err != nil {
		return nil, sqlstmt.NewStatementError(table, op, query, err)
	}
	result, err := sql.ScanMaps(rows)
	if err != nil {
		return nil, sqlstmt.NewStatementError(table, op, query, err)
	}
	return result, nil
}

func (c *Client) exec(ctx context.Context, op string, stmt *sql.Stmt) (sql.Result, error) {
	args, err := stmt.Params.Bind()
	if err != nil {
		return nil, sqlstmt.WithTable(err, stmt.Table)
	}
	drv, err := c.driver(ctx)
	if err != nil {
		return nil, err
	}
	c.logger.DebugContext(ctx, "running statement", "conn", c.conn, "op", op, "table", stmt.Table, "query", stmt.SQL)
	var res sql.Result
	if err := drv.Exec(ctx, stmt.SQL, args, &res); err != nil {
		return nil, sqlstmt.NewStatementError(stmt.Table, op, stmt.SQL, err)
	}
	c.invalidate(ctx, stmt.Table)
	return res, nil
}

func (c *Client) driver(ctx context.Context) (dialect.Driver, error) {
	return c.reg.Driver(ctx, c.conn)
}

func (c *Client) cached(ctx context.Context, key sqlstmt.CacheKey) ([]map[string]any, bool) {
	if c.cache == nil {
		return nil, false
	}
	b, err := c.cache.Get(ctx, key.String())
	if err != nil {
		c.logger.WarnContext(ctx, "reading cache", "table", key.Table, "error", err)
		return nil, false
	}
	if b == nil {
		return nil, false
	}
	rows, err := cache.DecodeRows(b)
	if err != nil {
		c.logger.WarnContext(ctx, "decoding cached rows", "table", key.Table, "error", err)
		return nil, false
	}
	return rows, true
}

func (c *Client) store(ctx context.Context, key sqlstmt.CacheKey, rows []map[string]any) {
	if c.cache == nil {
		return
	}
	b, err := cache.EncodeRows(rows)
	if err == nil {
		err = c.cache.Set(ctx, key.String(), b, c.ttl)
	}
	if err != nil {
		c.logger.WarnContext(ctx, "writing cache", "table", key.Table, "error", err)
	}
}

func (c *Client) invalidate(ctx context.Context, table string) {
	if c.cache == nil {
		return
	}
	if err := c.cache.DeletePrefix(ctx, sqlstmt.TablePrefix(c.conn, table)); err != nil {
		c.logger.WarnContext(ctx, "invalidating cache", "table", table, "error", err)
	}
}
