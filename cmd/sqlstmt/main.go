// Command sqlstmt compiles and runs single-table statements described in YAML.
package main

import (
	"fmt"
	"os"

	"github.com/syssam/sqlstmt/cmd/sqlstmt/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
