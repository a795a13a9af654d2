package cmd

import (
	"fmt"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

type benchResult struct {
	name    string
	count   int64
	elapsed time.Duration
}

func (r benchResult) String() string {
	if r.count == 0 {
		return fmt.Sprintf("%-12s no ids generated", r.name+":")
	}
	rate := float64(r.count) / r.elapsed.Seconds()
	nsPerOp := float64(r.elapsed.Nanoseconds()) / float64(r.count)
	return fmt.Sprintf("%-12s %d ids in %v (%.0f ids/sec, %.0f ns/op)",
		r.name+":", r.count, r.elapsed.Round(time.Millisecond), rate, nsPerOp)
}

func newBenchCommand(a *app) *cobra.Command {
	var (
		gf          generatorFlags
		duration    time.Duration
		batchSize   int
		concurrency int
	)

	cmd := &cobra.Command{
		Use:     "bench",
		Aliases: []string{"benchmark", "b"},
		Short:   "Measure generation throughput",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if gf.identity == "" && gf.identityEnv == "" {
				gf.identity = "bench"
			}
			if batchSize < 1 || concurrency < 1 {
				return errors.New("--batch and --concurrency must be positive")
			}
			gen, err := gf.newGenerator(a)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Running benchmarks (duration: %v, %s)\n\n", duration, gen.Identity())

			single, err := benchLoop("single", duration, 1, func() (int, error) {
				_, err := gen.Generate()
				return 1, err
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(out, single)

			batched, err := benchLoop(fmt.Sprintf("batch(%d)", batchSize), duration, 1, func() (int, error) {
				ids, err := gen.GenerateBatch(batchSize)
				return len(ids), err
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(out, batched)

			parallel, err := benchLoop(fmt.Sprintf("parallel(%d)", concurrency), duration, concurrency, func() (int, error) {
				_, err := gen.Generate()
				return 1, err
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(out, parallel)

			m := gen.GetMetrics()
			fmt.Fprintf(out, "\nMetrics: generated=%d sequence_overflow=%d wait=%v clock_regressions=%d\n",
				m.Generated, m.SequenceOverflow, time.Duration(m.WaitTimeUs)*time.Microsecond, m.ClockRegressions)
			return nil
		},
	}
	gf.register(cmd)
	cmd.Flags().DurationVar(&duration, "duration", 3*time.Second, "Duration of each benchmark")
	cmd.Flags().IntVar(&batchSize, "batch", 100, "Batch size for the batch benchmark")
	cmd.Flags().IntVar(&concurrency, "concurrency", 8, "Goroutines for the parallel benchmark")
	return cmd
}

// benchLoop runs fn from workers goroutines until d has elapsed.
func benchLoop(name string, d time.Duration, workers int, fn func() (int, error)) (benchResult, error) {
	var (
		mu    sync.Mutex
		total int64
		first error
		wg    sync.WaitGroup
	)

	start := time.Now()
	deadline := start.Add(d)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var n int64
			var err error
			for time.Now().Before(deadline) {
				var k int
				k, err = fn()
				n += int64(k)
				if err != nil {
					break
				}
			}
			mu.Lock()
			total += n
			if err != nil && first == nil {
				first = err
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	res := benchResult{name: name, count: total, elapsed: time.Since(start)}
	if first != nil {
		return res, errors.Wrapf(first, "%s benchmark", name)
	}
	return res, nil
}
