package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/syssam/sqlstmt/cache"
	"github.com/syssam/sqlstmt/client"
	"github.com/syssam/sqlstmt/config"
	"github.com/syssam/sqlstmt/dialect"
	"github.com/syssam/sqlstmt/dialect/sql"
	"github.com/syssam/sqlstmt/registry"
)

func newRunCommand(newOpener openerFunc) *cobra.Command {
	var (
		file     string
		cfgPath  string
		envFiles []string
		conn     string
		stats    bool
		debug    bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a statement against a configured connection",
		Long:  "Run a YAML statement description against a connection from the configuration file and print the result as YAML.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := readStatement(file, cmd.InOrStdin())
			if err != nil {
				return err
			}
			cfg, err := config.Load(cfgPath, envFiles...)
			if err != nil {
				return err
			}
			if debug {
				cfg.Log.Level = "debug"
			}
			logger, err := cfg.Log.Logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			qs := &sql.QueryStats{}
			open := newOpener(sql.WithStats(qs), sql.WithSlowQueryLog(logger))
			if debug {
				open = debugOpener(open, logger)
			}
			reg := registry.New(registry.WithOpener(open), registry.WithLogger(logger))
			defer reg.Close()
			if err := cfg.Apply(reg); err != nil {
				return err
			}
			c := client.New(reg,
				client.WithConnection(conn),
				client.WithLogger(logger),
				client.WithCache(cache.NewMemory(), 0),
			)
			result, err := s.run(cmd.Context(), c)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if result == nil {
				color.New(color.FgGreen).Fprintln(out, "ok")
			} else {
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if err := enc.Encode(result); err != nil {
					return err
				}
				if err := enc.Close(); err != nil {
					return err
				}
			}
			if stats {
				return printStats(cmd.ErrOrStderr(), qs, conn)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "Statement file, - for stdin")
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "sqlstmt.yaml", "Configuration file")
	cmd.Flags().StringSliceVar(&envFiles, "env", []string{".env"}, "Dotenv files loaded before the configuration")
	cmd.Flags().StringVar(&conn, "conn", client.DefaultConnection, "Connection name")
	cmd.Flags().BoolVar(&stats, "stats", false, "Print query metrics to stderr")
	cmd.Flags().BoolVar(&debug, "debug", false, "Log every statement at debug level")
	return cmd
}

// debugOpener wraps every driver opened by open in a DebugDriver.
func debugOpener(open registry.Opener, logger *slog.Logger) registry.Opener {
	return func(ctx context.Context, name string, cfg registry.ConnectionConfig) (dialect.Driver, error) {
		drv, err := open(ctx, name, cfg)
		if err != nil {
			return nil, err
		}
		return sql.NewDebugDriver(drv, sql.DebugWithLogger(logger.With("conn", name))), nil
	}
}

// printStats writes the run's query metrics in "name value" form.
func printStats(w io.Writer, qs *sql.QueryStats, conn string) error {
	fmt.Fprintln(w, qs.Stats())
	reg := prometheus.NewRegistry()
	if err := reg.Register(sql.NewStatsCollector(qs, "sqlstmt", prometheus.Labels{"conn": conn})); err != nil {
		return err
	}
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	for _, f := range families {
		for _, m := range f.GetMetric() {
			fmt.Fprintf(w, "%s{conn=%q} %g\n", f.GetName(), conn, m.GetCounter().GetValue())
		}
	}
	return nil
}
