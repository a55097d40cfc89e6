package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/syssam/sqlstmt"
)

func newCompileCommand() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Print the SQL and parameters of a statement",
		Long:  "Compile a YAML statement description and print the SQL text followed by one line per bound parameter.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := readStatement(file, cmd.InOrStdin())
			if err != nil {
				return err
			}
			stmt, err := s.compile()
			if err != nil {
				return err
			}
			args, err := stmt.Params.Bind()
			if err != nil {
				return sqlstmt.WithTable(err, stmt.Table)
			}
			out := cmd.OutOrStdout()
			color.New(color.FgCyan).Fprintln(out, stmt.SQL)
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for i, p := range stmt.Params {
				fmt.Fprintf(w, "%d\t%s\t%s\t%#v\n", i+1, p.Type, p.Column, args[i])
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "Statement file, - for stdin")
	return cmd
}
