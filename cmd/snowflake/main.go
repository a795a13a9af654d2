// Snowflake CLI - command-line tool for generating and inspecting IDs
//
// Usage:
//
//	snowflake generate [flags]       Generate IDs
//	snowflake decode <id>...         Show the fields packed into IDs
//	snowflake validate <id>...       Validate IDs
//	snowflake identity [identity]    Show the derived worker and process IDs
//	snowflake layout                 Describe the bit layout
//	snowflake bench                  Run performance benchmarks
package main

import (
	"fmt"
	"os"

	"github.com/ecoma-io/snowflake/internal/cmd"
)

var version = "dev"

func main() {
	root := cmd.NewRoot(version)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
