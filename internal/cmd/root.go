// Package cmd implements the snowflake command line tool.
package cmd

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
)

// EnvLogLevel sets the CLI log level: debug, info, warn or error.
const EnvLogLevel = "SNOWFLAKE_LOG_LEVEL"

// app carries state shared by all subcommands.
type app struct {
	version string
	verbose int
	log     logr.Logger
}

// NewRoot constructs the root command and registers every subcommand.
func NewRoot(version string) *cobra.Command {
	a := &app{version: version, log: logr.Discard()}

	root := &cobra.Command{
		Use:   "snowflake",
		Short: "Coordination-free 64-bit unique ID generator",
		Long: `snowflake generates time-ordered 64-bit IDs rendered as decimal strings.

The replica identity is read from POD_UID (or the variable named by
SNOWFLAKE_IDENTITY_ENV) unless --identity is given.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger(cmd.ErrOrStderr(), os.Getenv(EnvLogLevel), a.verbose)
			if err != nil {
				return err
			}
			a.log = log
			return nil
		},
	}
	root.PersistentFlags().CountVarP(&a.verbose, "verbose", "v", "Increase log verbosity (repeatable)")

	root.AddCommand(newGenerateCommand(a))
	root.AddCommand(newDecodeCommand(a))
	root.AddCommand(newValidateCommand(a))
	root.AddCommand(newIdentityCommand(a))
	root.AddCommand(newLayoutCommand(a))
	root.AddCommand(newBenchCommand(a))
	root.AddCommand(newVersionCommand(a))
	return root
}

// newLogger bridges a slog text handler into logr. verbose raises the
// level below debug so that V(n) messages of the library are shown.
func newLogger(w io.Writer, level string, verbose int) (logr.Logger, error) {
	lvl := slog.LevelWarn
	if level != "" {
		if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
			return logr.Discard(), errors.Wrapf(err, "%s=%q", EnvLogLevel, level)
		}
	}
	if verbose > 0 {
		lvl = slog.Level(-verbose)
	}
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})
	return logr.FromSlogHandler(h), nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
