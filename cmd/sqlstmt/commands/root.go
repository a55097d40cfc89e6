// Package commands implements the sqlstmt CLI commands.
package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/syssam/sqlstmt/dialect/sql"
	"github.com/syssam/sqlstmt/registry"
)

// openerFunc builds the registry Opener for one run. The options carry the
// run's statistics and slow query logging.
type openerFunc func(opts ...sql.StatsOption) registry.Opener

// Version information (set at build time).
var Version = "dev"

// NewRootCommand creates the root command. Connections are opened with
// registry.MySQLOpener.
func NewRootCommand() *cobra.Command {
	return newRootCommand(registry.MySQLOpener)
}

func newRootCommand(newOpener openerFunc) *cobra.Command {
	var noColor bool
	root := &cobra.Command{
		Use:           "sqlstmt",
		Short:         "Compile and run single-table SQL statements",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if noColor {
				color.NoColor = true
			}
		},
	}
	root.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	root.AddCommand(newCompileCommand())
	root.AddCommand(newRunCommand(newOpener))
	return root
}
