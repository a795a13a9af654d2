package cmd

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/ecoma-io/snowflake"
	"github.com/ecoma-io/snowflake/internal/layout"
)

// errInvalidIDs is returned when at least one argument fails validation.
var errInvalidIDs = errors.New("invalid ids")

func newValidateCommand(a *app) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:     "validate <id>...",
		Aliases: []string{"val"},
		Short:   "Check that strings are well-formed IDs",
		Long: `validate checks each argument against the ID wire format (one or more
ASCII digits). With --strict it also requires the value to fit in 63 bits,
as every generated ID does.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			invalid := 0
			for _, arg := range args {
				err := validateOne(arg, strict)
				if err != nil {
					invalid++
					fmt.Fprintf(out, "INVALID %q: %v\n", arg, err)
					a.log.V(1).Info("rejected id", "input", arg, "error", err.Error())
					continue
				}
				fmt.Fprintf(out, "VALID   %s\n", arg)
			}
			if invalid > 0 {
				return errors.Wrapf(errInvalidIDs, "%d of %d", invalid, len(args))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "Also require the value to fit the 63-bit layout")
	return cmd
}

func validateOne(s string, strict bool) error {
	id, err := snowflake.Parse(s)
	if err != nil {
		return err
	}
	if strict {
		if _, err := layout.DecodeString(id.String()); err != nil {
			return err
		}
	}
	return nil
}
