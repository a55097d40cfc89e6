// Package registry resolves logical connection names to live database drivers.
//
// A Registry is configured once with a name to ConnectionConfig mapping and
// opens each connection lazily on first use. Concurrent first use of a name
// opens exactly one driver, which every caller then shares.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/syssam/sqlstmt"
	"github.com/syssam/sqlstmt/dialect"
)

// ConnectionConfig describes how to reach one database.
type ConnectionConfig struct {
	Host     string `yaml:"host"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// Opener opens the driver for a configured connection.
type Opener func(ctx context.Context, name string, cfg ConnectionConfig) (dialect.Driver, error)

type entry struct {
	drv dialect.Driver
	err error
}

// Registry owns one driver per connection name.
type Registry struct {
	open   Opener
	logger *slog.Logger
	group  singleflight.Group

	mu      sync.RWMutex
	configs map[string]ConnectionConfig // nil until Configure
	conns   map[string]entry
}

// Option configures the Registry.
type Option func(*Registry)

// WithOpener sets the function used to open connections. Default is MySQLOpener().
func WithOpener(open Opener) Option {
	return func(r *Registry) {
		r.open = open
	}
}

// WithLogger sets the logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// New returns an unconfigured Registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		logger: slog.Default(),
		conns:  make(map[string]entry),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.open == nil {
		r.open = MySQLOpener()
	}
	return r
}

// Configure sets the connection configuration. It may be called once;
// later calls fail with sqlstmt.ErrInvalidArgument and leave the
// configuration untouched.
func (r *Registry) Configure(configs map[string]ConnectionConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.configs != nil {
		return fmt.Errorf("%w: connections already configured", sqlstmt.ErrInvalidArgument)
	}
	r.configs = maps.Clone(configs)
	if r.configs == nil {
		r.configs = make(map[string]ConnectionConfig)
	}
	r.logger.Info("connections configured", "names", slices.Sorted(maps.Keys(r.configs)))
	return nil
}

// Names returns the configured connection names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.configs))
}

// Driver returns the driver for the named connection, opening it on first use.
// A failed open is remembered: later calls for the same name return the same
// sqlstmt.ErrConnectionFailed error without retrying.
//
// The open itself is not canceled with ctx. A caller whose ctx ends while
// the open is in progress returns ctx.Err(), and the result is still cached
// for later callers.
func (r *Registry) Driver(ctx context.Context, name string) (dialect.Driver, error) {
	r.mu.RLock()
	e, ok := r.conns[name]
	cfg, configured := r.configs[name]
	r.mu.RUnlock()
	if ok {
		return e.drv, e.err
	}
	if !configured {
		return nil, sqlstmt.NewNotConfiguredError(name)
	}
	ch := r.group.DoChan(name, func() (any, error) {
		r.mu.RLock()
		e, ok := r.conns[name]
		r.mu.RUnlock()
		if ok {
			return e, nil
		}
		drv, err := r.open(context.WithoutCancel(ctx), name, cfg)
		if err != nil {
			r.logger.Error("opening connection", "name", name, "host", cfg.Host, "error", err)
			e = entry{err: sqlstmt.NewConnectionFailedError(name, err)}
		} else {
			r.logger.Info("connection opened", "name", name, "host", cfg.Host, "database", cfg.Database)
			e = entry{drv: drv}
		}
		r.mu.Lock()
		r.conns[name] = e
		r.mu.Unlock()
		return e, nil
	})
	select {
	case res := <-ch:
		e = res.Val.(entry)
		return e.drv, e.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close closes every opened driver.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var errs []error
	for name, e := range r.conns {
		if e.drv == nil {
			continue
		}
		if err := e.drv.Close(); err != nil {
			errs = append(errs, fmt.Errorf("registry: closing %q: %w", name, err))
		}
	}
	clear(r.conns)
	return errors.Join(errs...)
}
