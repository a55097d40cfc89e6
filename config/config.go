// Package config loads connection and logging configuration from YAML.
//
//	log:
//	  level: info
//	  format: json
//	connections:
//	  default:
//	    host: db:3306
//	    database: app
//	    user: app
//	    password: ${DB_PASSWORD}
//
// ${VAR} references in values are expanded after optional dotenv files are
// loaded. Any other "$" is kept as written.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/syssam/sqlstmt"
	"github.com/syssam/sqlstmt/registry"
)

// Log configures the process logger.
type Log struct {
	Level  string `yaml:"level"`  // debug, info, warn or error; default info
	Format string `yaml:"format"` // text or json; default text
}

// File is the parsed configuration file.
type File struct {
	Log         Log                                  `yaml:"log"`
	Connections map[string]registry.ConnectionConfig `yaml:"connections"`
}

// Load reads the configuration at path. The given dotenv files are loaded
// first when they exist; variables already set in the environment win.
func Load(path string, envFiles ...string) (*File, error) {
	for _, f := range envFiles {
		if _, err := os.Stat(f); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, fmt.Errorf("config: loading %s: %w", f, err)
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration, expanding ${VAR} references in values
// from the environment. Unknown fields are rejected.
func Parse(data []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	f.expand()
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnv replaces ${VAR} with the value of VAR, or "" if it is unset.
func expandEnv(s string) string {
	return envRef.ReplaceAllStringFunc(s, func(ref string) string {
		return os.Getenv(ref[2 : len(ref)-1])
	})
}

func (f *File) expand() {
	f.Log.Level = expandEnv(f.Log.Level)
	f.Log.Format = expandEnv(f.Log.Format)
	for name, c := range f.Connections {
		c.Host = expandEnv(c.Host)
		c.Database = expandEnv(c.Database)
		c.User = expandEnv(c.User)
		c.Password = expandEnv(c.Password)
		f.Connections[name] = c
	}
}

func (f *File) validate() error {
	for name, c := range f.Connections {
		if c.Host == "" || c.Database == "" {
			return fmt.Errorf("%w: connection %q requires host and database", sqlstmt.ErrInvalidArgument, name)
		}
	}
	return nil
}

// Apply configures the registry with the file's connections.
func (f *File) Apply(r *registry.Registry) error {
	return r.Configure(f.Connections)
}

// Logger returns a logger writing to w according to l.
func (l Log) Logger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if l.Level != "" {
		if err := level.UnmarshalText([]byte(l.Level)); err != nil {
			return nil, fmt.Errorf("config: log level: %w", err)
		}
	}
	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(l.Format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("config: unknown log format %q", l.Format)
	}
}
