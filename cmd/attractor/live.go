package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/attractor/internal/sim"
	"github.com/san-kum/attractor/internal/viz"
)

func newLiveCmd() *cobra.Command {
	var (
		scene         sceneFlags
		fps           int
		stepsPerFrame int
	)
	cmd := &cobra.Command{
		Use:   "live",
		Short: "run a scene with live visualization",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := scene.resolve(cmd)
			if err != nil {
				return err
			}

			// The terminal belongs to the view, so only errors are logged.
			logging := sc.Logging
			if logLevel == "" {
				logging.Level = "error"
			}
			log, err := newLogger(logging)
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}
			defer log.Sync()

			build := func() (*sim.Simulator, error) { return sc.Build(log) }
			m, err := viz.NewModel(sc.Name, sc.Dt, stepsPerFrame, build)
			if err != nil {
				return err
			}
			log.Debug("starting live view", zap.String("scene", sc.Name), zap.Int("fps", fps))
			return viz.Run(m.WithFPS(fps))
		},
	}
	scene.register(cmd)
	cmd.Flags().IntVar(&fps, "fps", 30, "frames per second")
	cmd.Flags().IntVar(&stepsPerFrame, "steps-per-frame", 20, "simulation steps per frame")
	return cmd
}
