package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/ecoma-io/snowflake"
	"github.com/ecoma-io/snowflake/internal/layout"
)

type generatorFlags struct {
	identity    string
	identityEnv string
	wait        string
	waitSleep   time.Duration
}

func (f *generatorFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.identity, "identity", "", "Replica identity string (default: read from the environment)")
	cmd.Flags().StringVar(&f.identityEnv, "identity-env", "", "Environment variable holding the identity (default POD_UID)")
	cmd.Flags().StringVar(&f.wait, "wait", "", "Wait strategy when the sequence is exhausted: spin|yield|sleep")
	cmd.Flags().DurationVar(&f.waitSleep, "wait-sleep", snowflake.DefaultWaitSleep, "Pause between clock reads for --wait=sleep")
}

// newGenerator layers flags over environment over defaults.
func (f *generatorFlags) newGenerator(a *app) (*snowflake.Generator, error) {
	cfg := snowflake.DefaultConfig(f.identity)
	if f.identity != "" {
		cfg.IdentitySource = "flag:--identity"
	} else if f.identityEnv != "" {
		if _, err := snowflake.IdentityFromEnv(f.identityEnv); err != nil {
			return nil, err
		}
		cfg.Identity = os.Getenv(f.identityEnv)
		cfg.IdentitySource = "env:" + f.identityEnv
	}
	if err := cfg.FromEnv(); err != nil {
		return nil, err
	}
	if f.wait != "" {
		w, err := snowflake.ParseWaitStrategy(f.wait, f.waitSleep)
		if err != nil {
			return nil, err
		}
		cfg.Wait = w
	}
	cfg.Logger = a.log.WithName("generator")
	return snowflake.NewWithConfig(cfg)
}

// idInfo is the JSON view of one ID.
type idInfo struct {
	ID        snowflake.ID `json:"id"`
	Time      time.Time    `json:"time"`
	Timestamp int64        `json:"timestamp"`
	WorkerID  int64        `json:"worker_id"`
	ProcessID int64        `json:"process_id"`
	Sequence  int64        `json:"sequence"`
}

func describe(id snowflake.ID) (idInfo, error) {
	c, err := layout.DecodeString(id.String())
	if err != nil {
		return idInfo{}, err
	}
	return idInfo{
		ID:        id,
		Time:      c.Time(),
		Timestamp: c.Timestamp,
		WorkerID:  c.WorkerID,
		ProcessID: c.ProcessID,
		Sequence:  c.Sequence,
	}, nil
}

func newGenerateCommand(a *app) *cobra.Command {
	var (
		gf       generatorFlags
		count    int
		batch    bool
		jsonOut  bool
		showRate bool
	)

	cmd := &cobra.Command{
		Use:     "generate",
		Aliases: []string{"gen", "g"},
		Short:   "Generate IDs",
		Example: `  POD_UID=$(uuidgen) snowflake generate
  snowflake generate --identity replica-0 --count 1000 --batch
  snowflake generate --identity replica-0 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 {
				return errors.Newf("--count must be positive, got %d", count)
			}
			gen, err := gf.newGenerator(a)
			if err != nil {
				return err
			}

			start := time.Now()
			var ids []snowflake.ID
			if batch {
				ids, err = gen.GenerateBatch(count)
				if err != nil {
					return err
				}
			} else {
				ids = make([]snowflake.ID, 0, count)
				for i := 0; i < count; i++ {
					id, err := gen.Generate()
					if err != nil {
						return errors.Wrapf(err, "generate id %d of %d", i+1, count)
					}
					ids = append(ids, id)
				}
			}
			elapsed := time.Since(start)

			out := cmd.OutOrStdout()
			if jsonOut {
				infos := make([]idInfo, 0, len(ids))
				for _, id := range ids {
					info, err := describe(id)
					if err != nil {
						return err
					}
					infos = append(infos, info)
				}
				return writeJSON(out, infos)
			}

			for _, id := range ids {
				fmt.Fprintln(out, id)
			}
			if showRate {
				m := gen.GetMetrics()
				fmt.Fprintf(cmd.ErrOrStderr(), "generated %d ids in %v (%d sequence overflows, %dus waiting)\n",
					m.Generated, elapsed, m.SequenceOverflow, m.WaitTimeUs)
			}
			return nil
		},
	}
	gf.register(cmd)
	cmd.Flags().IntVarP(&count, "count", "n", 1, "Number of IDs to generate")
	cmd.Flags().BoolVar(&batch, "batch", false, "Generate all IDs under a single lock acquisition")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print IDs with their decoded fields as JSON")
	cmd.Flags().BoolVar(&showRate, "stats", false, "Print generation statistics to stderr")
	return cmd
}
