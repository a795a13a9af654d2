package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ecoma-io/snowflake"
)

func newDecodeCommand(a *app) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:     "decode <id>...",
		Aliases: []string{"parse", "p"},
		Short:   "Show the timestamp, identity and sequence packed into IDs",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			infos := make([]idInfo, 0, len(args))
			for _, arg := range args {
				id, err := snowflake.Parse(arg)
				if err != nil {
					return err
				}
				info, err := describe(id)
				if err != nil {
					return err
				}
				infos = append(infos, info)
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return writeJSON(out, infos)
			}
			for i, info := range infos {
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintf(out, "ID:         %s\n", info.ID)
				fmt.Fprintf(out, "Time:       %s (%d ms since epoch)\n", info.Time.Format(time.RFC3339Nano), info.Timestamp)
				fmt.Fprintf(out, "Worker ID:  %d\n", info.WorkerID)
				fmt.Fprintf(out, "Process ID: %d\n", info.ProcessID)
				fmt.Fprintf(out, "Sequence:   %d\n", info.Sequence)
			}
			a.log.V(1).Info("decoded ids", "count", len(infos))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print as JSON")
	return cmd
}
