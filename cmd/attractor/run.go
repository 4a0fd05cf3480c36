package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/attractor/internal/config"
	"github.com/san-kum/attractor/internal/metrics"
	"github.com/san-kum/attractor/internal/rigid"
	"github.com/san-kum/attractor/internal/sim"
	"github.com/san-kum/attractor/internal/store"
)

func newRunCmd() *cobra.Command {
	var (
		scene sceneFlags
		plot  bool
		out   string
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "run a scene and print a summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := scene.resolve(cmd)
			if err != nil {
				return err
			}
			return runScene(cmd, sc, plot, out)
		},
	}
	scene.register(cmd)
	cmd.Flags().BoolVar(&plot, "plot", false, "plot total energy over the run")
	cmd.Flags().StringVar(&out, "out", "", "export trajectory to a .csv, .json or .svg file")
	return cmd
}

func runScene(cmd *cobra.Command, sc *config.Scene, plot bool, out string) error {
	log, err := newLogger(sc.Logging)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer log.Sync()

	s, err := sc.Build(log, sim.WithEnergy(metrics.TotalEnergy))
	if err != nil {
		return err
	}
	defer s.World().Close()

	for _, m := range metrics.Default() {
		s.AddMetric(m)
	}

	var energy []float64
	if plot {
		s.AddObserver(sim.ObserverFunc(func(w *rigid.World, t float64) {
			energy = append(energy, metrics.TotalEnergy(w))
		}))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Info("running scene", zap.String("scene", sc.Name), zap.Int("bodies", len(sc.Bodies)))
	res, err := s.Run(ctx, sc.SimConfig())
	if err != nil {
		return err
	}

	printSummary(cmd, sc, res)

	if plot && len(energy) > 1 {
		fmt.Fprintln(cmd.OutOrStdout())
		fmt.Fprintln(cmd.OutOrStdout(), asciigraph.Plot(energy,
			asciigraph.Height(10), asciigraph.Width(60), asciigraph.Caption("total energy")))
	}

	if out != "" {
		meta := store.Meta{
			Scene:      sc.Name,
			Integrator: sc.Integrator,
			G:          sc.G,
			Dt:         sc.Dt,
			Duration:   sc.Duration,
		}
		if err := store.ExportFile(out, meta, res); err != nil {
			return err
		}
		log.Info("trajectory exported", zap.String("path", out), zap.Int("frames", len(res.Frames)))
	}
	return nil
}

func printSummary(cmd *cobra.Command, sc *config.Scene, res *sim.Result) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "scene:\t%s\n", sc.Name)
	fmt.Fprintf(w, "integrator:\t%s\n", sc.Integrator)
	fmt.Fprintf(w, "steps:\t%d\n", res.StepsTaken)
	fmt.Fprintf(w, "elapsed:\t%v\n", res.Elapsed)
	fmt.Fprintf(w, "energy drift:\t%.3e\n", res.EnergyDrift)
	fmt.Fprintf(w, "coincident pairs:\t%d\n", res.CoincidentPairs)

	names := make([]string, 0, len(res.Metrics))
	for name := range res.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "%s:\t%.6g\n", name, res.Metrics[name])
	}
	w.Flush()

	final := res.Final()
	fmt.Fprintf(cmd.OutOrStdout(), "\nt = %.4f\n", final.Time)
	w = tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BODY\tMASS\tX\tY\tZ\t|V|\t|F|\tACTIVE")
	for _, b := range final.Bodies {
		fmt.Fprintf(w, "%s\t%g\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\t%v\n",
			b.Name, b.Mass, b.Position.X, b.Position.Y, b.Position.Z,
			r3.Norm(b.Velocity), r3.Norm(b.Force), b.Active)
	}
	w.Flush()
}
