package cmd

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ecoma-io/snowflake"
)

type identityInfo struct {
	Identity  string `json:"identity"`
	Source    string `json:"source"`
	WorkerID  int64  `json:"worker_id"`
	ProcessID int64  `json:"process_id"`
	Instance  int64  `json:"instance"`
}

func newIdentityCommand(a *app) *cobra.Command {
	var (
		env     string
		random  int
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "identity [identity]...",
		Short: "Show the worker and process IDs derived from replica identities",
		Example: `  snowflake identity 3f2b8c1e-9d4a-4e6b-8f7a-2c1d5e9b0a47
  POD_UID=pod-a snowflake identity
  snowflake identity --random 32`,
		RunE: func(cmd *cobra.Command, args []string) error {
			type input struct{ value, source string }
			var inputs []input

			for _, arg := range args {
				inputs = append(inputs, input{arg, "arg"})
			}
			for i := 0; i < random; i++ {
				inputs = append(inputs, input{uuid.NewString(), "random"})
			}
			if len(inputs) == 0 {
				name := env
				if name == "" {
					name = os.Getenv(snowflake.EnvIdentityEnv)
				}
				if name == "" {
					name = snowflake.DefaultIdentityEnv
				}
				inputs = append(inputs, input{os.Getenv(name), "env:" + name})
			}

			infos := make([]identityInfo, 0, len(inputs))
			seen := make(map[int64]string)
			for _, in := range inputs {
				id, err := snowflake.DeriveIdentity(in.value)
				if err != nil {
					return errors.Wrap(err, in.source)
				}
				if prev, ok := seen[id.Instance()]; ok {
					a.log.Info("identity collision", "instance", id.Instance(), "a", prev, "b", in.value)
				}
				seen[id.Instance()] = in.value
				infos = append(infos, identityInfo{
					Identity:  in.value,
					Source:    in.source,
					WorkerID:  id.WorkerID,
					ProcessID: id.ProcessID,
					Instance:  id.Instance(),
				})
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return writeJSON(out, infos)
			}
			for _, info := range infos {
				fmt.Fprintf(out, "%s\tworker=%d process=%d instance=%d\n",
					info.Identity, info.WorkerID, info.ProcessID, info.Instance)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&env, "env", "", "Environment variable to read when no identity is given (default POD_UID)")
	cmd.Flags().IntVar(&random, "random", 0, "Also derive N random UUID identities")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print as JSON")
	return cmd
}
