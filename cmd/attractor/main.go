package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/san-kum/attractor/internal/config"
)

var (
	logLevel  string
	logFormat string
)

// sceneFlags are the scene overrides shared by run, live and ensemble.
type sceneFlags struct {
	configFile  string
	preset      string
	dt          float64
	duration    float64
	g           float64
	integrator  string
	sampleEvery int
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "attractor",
		Short:         "n-body gravitational attraction simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (console, json)")

	rootCmd.AddCommand(
		newRunCmd(),
		newLiveCmd(),
		newPresetsCmd(),
		newInitCmd(),
		newBenchCmd(),
		newEnsembleCmd(),
	)
	return rootCmd
}

func (f *sceneFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.configFile, "config", "", "scene file (yaml or toml)")
	cmd.Flags().StringVar(&f.preset, "preset", "", "use a built-in scene")
	cmd.Flags().Float64Var(&f.dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&f.duration, "time", config.DefaultDuration, "duration")
	cmd.Flags().Float64Var(&f.g, "g", 0, "gravitational constant")
	cmd.Flags().StringVar(&f.integrator, "integrator", "", "integration scheme")
	cmd.Flags().IntVar(&f.sampleEvery, "sample-every", config.DefaultSampleEvery, "record a frame every n steps")
}

// resolve builds the scene from the preset, then the config file, then any
// flags set explicitly on the command line, each overriding the last.
func (f *sceneFlags) resolve(cmd *cobra.Command) (*config.Scene, error) {
	sc := config.GetPreset("binary")
	if f.preset != "" {
		if sc = config.GetPreset(f.preset); sc == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", f.preset, config.ListPresets())
		}
	}

	if f.configFile != "" {
		loaded, err := config.Load(f.configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		sc = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		sc.Dt = f.dt
	}
	if flags.Changed("time") {
		sc.Duration = f.duration
	}
	if flags.Changed("g") {
		sc.G = f.g
	}
	if flags.Changed("integrator") {
		sc.Integrator = f.integrator
	}
	if flags.Changed("sample-every") {
		sc.SampleEvery = f.sampleEvery
	}
	if logLevel != "" {
		sc.Logging.Level = logLevel
	}
	if logFormat != "" {
		sc.Logging.Format = logFormat
	}

	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return sc, nil
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.OutputPaths = []string{"stderr"}

	return zapCfg.Build()
}

// cliLogger builds a logger from the global flags alone, for commands that
// have no scene.
func cliLogger() (*zap.Logger, error) {
	cfg := config.DefaultScene().Logging
	if logLevel != "" {
		cfg.Level = logLevel
	}
	if logFormat != "" {
		cfg.Format = logFormat
	}
	return newLogger(cfg)
}
