package main

import (
	"fmt"
	"math/rand"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/attractor/internal/gravity"
	"github.com/san-kum/attractor/internal/rigid"
)

func newBenchCmd() *cobra.Command {
	var (
		counts []int
		steps  int
		seed   int64
	)
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark the force step for growing body counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := cliLogger()
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}
			defer log.Sync()

			fmt.Fprintf(cmd.OutOrStdout(), "benchmarking %d steps per run\n\n", steps)
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "BODIES\tPAIRS\tTIME\tSTEPS/SEC\tPAIRS/SEC")

			for _, n := range counts {
				world, err := randomWorld(n, seed)
				if err != nil {
					return err
				}

				var pairs int
				start := time.Now()
				for i := 0; i < steps; i++ {
					pairs = world.FixedStep(0.001).Pairs
				}
				elapsed := time.Since(start)
				world.Close()

				secs := elapsed.Seconds()
				fmt.Fprintf(w, "%d\t%d\t%v\t%.0f\t%.3g\n",
					n, pairs, elapsed.Round(time.Microsecond),
					float64(steps)/secs, float64(steps*pairs)/secs)
				log.Debug("bench run", zap.Int("bodies", n), zap.Duration("elapsed", elapsed))
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntSliceVar(&counts, "bodies", []int{2, 8, 32, 128, 512}, "body counts to benchmark")
	cmd.Flags().IntVar(&steps, "steps", 200, "steps per run")
	cmd.Flags().Int64Var(&seed, "seed", 42, "random seed")
	return cmd
}

// randomWorld scatters n bodies in a cube with side 100.
func randomWorld(n int, seed int64) (*rigid.World, error) {
	rng := rand.New(rand.NewSource(seed))
	world := rigid.NewWorld(gravity.DefaultG, rigid.NewSemiImplicitEuler())
	for i := 0; i < n; i++ {
		pos := r3.Vec{
			X: rng.Float64()*100 - 50,
			Y: rng.Float64()*100 - 50,
			Z: rng.Float64()*100 - 50,
		}
		if _, err := world.Spawn(rigid.BodySpec{Mass: 0.5 + rng.Float64(), Position: pos}); err != nil {
			world.Close()
			return nil, err
		}
	}
	return world, nil
}
