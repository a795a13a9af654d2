package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ecoma-io/snowflake"
	"github.com/ecoma-io/snowflake/internal/layout"
)

type layoutInfo struct {
	Epoch               time.Time `json:"epoch"`
	Exhausted           time.Time `json:"exhausted"`
	TimestampBits       int       `json:"timestamp_bits"`
	WorkerBits          int       `json:"worker_bits"`
	ProcessBits         int       `json:"process_bits"`
	SequenceBits        int       `json:"sequence_bits"`
	MaxInstances        int64     `json:"max_instances"`
	ThroughputPerWorker int64     `json:"throughput_per_worker"`
	LifespanYears       int       `json:"lifespan_years"`
}

func newLayoutCommand(a *app) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Describe the bit layout and its capacity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l := layout.Default
			if err := l.Validate(); err != nil {
				return err
			}
			c := l.Capacity()
			epoch := time.UnixMilli(snowflake.Epoch).UTC()
			info := layoutInfo{
				Epoch:               epoch,
				Exhausted:           epoch.Add(c.Lifespan),
				TimestampBits:       l.TimestampBits,
				WorkerBits:          l.WorkerBits,
				ProcessBits:         l.ProcessBits,
				SequenceBits:        l.SequenceBits,
				MaxInstances:        c.MaxInstances,
				ThroughputPerWorker: c.ThroughputPerWorker,
				LifespanYears:       c.Years(),
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return writeJSON(out, info)
			}
			fmt.Fprintf(out, "Layout:    %d timestamp | %d worker | %d process | %d sequence\n",
				l.TimestampBits, l.WorkerBits, l.ProcessBits, l.SequenceBits)
			fmt.Fprintf(out, "Epoch:     %s\n", info.Epoch.Format(time.RFC3339))
			fmt.Fprintf(out, "Exhausted: %s\n", info.Exhausted.Format(time.RFC3339))
			fmt.Fprintf(out, "Capacity:  %s\n", c)
			a.log.V(1).Info("layout", "capacity", c.String())
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print as JSON")
	return cmd
}
