package sim

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/san-kum/attractor/internal/gravity"
	"github.com/san-kum/attractor/internal/rigid"
)

// Simulator is the fixed-cadence scheduler that drives a World.
type Simulator struct {
	world     *rigid.World
	metrics   []Metric
	observers []Observer
	schedule  schedule
	energy    EnergyFunc
	log       *zap.Logger

	// interactive stepping
	clock float64
	step  int
}

type Option func(*Simulator)

func WithLogger(log *zap.Logger) Option {
	return func(s *Simulator) {
		if log != nil {
			s.log = log
		}
	}
}

// WithEnergy enables energy drift tracking.
func WithEnergy(fn EnergyFunc) Option {
	return func(s *Simulator) { s.energy = fn }
}

func New(world *rigid.World, opts ...Option) *Simulator {
	s := &Simulator{
		world:     world,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Simulator) World() *rigid.World               { return s.world }
func (s *Simulator) AddMetric(m Metric)                { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer)            { s.observers = append(s.observers, o) }
func (s *Simulator) Schedule(events ...LifecycleEvent) { s.schedule.add(events...) }

// Run steps the world for cfg.Duration and records sampled frames. Every run
// starts from the spawn state: a world that has already been stepped is
// reset first, so scheduled lifecycle events replay from t=0.
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if err := s.rewind(); err != nil {
		return nil, err
	}

	steps := cfg.Steps()
	every := cfg.SampleEvery
	if every <= 0 {
		every = 1
	}

	result := &Result{
		Frames:  make([]Frame, 0, steps/every+2),
		Metrics: make(map[string]float64),
	}

	start := time.Now()
	t := 0.0
	dt := cfg.Dt

	if err := s.applyDue(t, dt, 0); err != nil {
		return result, err
	}
	result.Frames = append(result.Frames, Capture(s.world, t, 0))

	initialEnergy := s.computeEnergy()

	s.log.Info("simulation started",
		zap.Int("bodies", len(s.world.Bodies())),
		zap.Int("steps", steps),
		zap.Float64("dt", dt),
		zap.Float64("g", s.world.G()),
		zap.String("integrator", s.world.Scheme().Name()),
	)

	var runErr error
	for i := 0; i < steps; i++ {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		stats := s.world.FixedStep(dt)
		result.CoincidentPairs += stats.Coincident
		result.StepsTaken++
		t = float64(i+1) * dt

		if cfg.ValidateState {
			if err := s.validate(i+1, t); err != nil {
				runErr = err
				break
			}
		}

		for _, m := range s.metrics {
			m.Observe(s.world, t)
		}
		for _, obs := range s.observers {
			obs.OnStep(s.world, t)
		}

		if err := s.applyDue(t, dt, i+1); err != nil {
			runErr = err
			break
		}

		if (i+1)%every == 0 || i == steps-1 {
			result.Frames = append(result.Frames, Capture(s.world, t, i+1))
		}
	}

	if last := result.Final(); last.Step != result.StepsTaken {
		result.Frames = append(result.Frames, Capture(s.world, t, result.StepsTaken))
	}

	finalEnergy := s.computeEnergy()
	if initialEnergy != 0 {
		result.EnergyDrift = math.Abs(finalEnergy-initialEnergy) / math.Abs(initialEnergy)
	}
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	result.Elapsed = time.Since(start)

	if runErr != nil {
		s.log.Warn("simulation stopped",
			zap.Int("step", result.StepsTaken),
			zap.Error(runErr),
		)
		return result, runErr
	}

	s.log.Info("simulation finished",
		zap.Int("steps", result.StepsTaken),
		zap.Duration("elapsed", result.Elapsed),
		zap.Float64("energy_drift", result.EnergyDrift),
		zap.Int("coincident_pairs", result.CoincidentPairs),
	)
	return result, nil
}

// RunWithCallback steps the world like Run until the duration elapses or
// callback returns false. Metrics and observers see every step, the callback
// runs after them. No frames are recorded.
func (s *Simulator) RunWithCallback(ctx context.Context, cfg Config, callback func(w *rigid.World, t float64) bool) error {
	if err := validateConfig(cfg); err != nil {
		return err
	}
	if err := s.rewind(); err != nil {
		return err
	}

	dt := cfg.Dt
	if err := s.applyDue(0, dt, 0); err != nil {
		return err
	}
	for i := 0; i < cfg.Steps(); i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		s.world.FixedStep(dt)
		t := float64(i+1) * dt

		if cfg.ValidateState {
			if err := s.validate(i+1, t); err != nil {
				return err
			}
		}
		for _, m := range s.metrics {
			m.Observe(s.world, t)
		}
		for _, obs := range s.observers {
			obs.OnStep(s.world, t)
		}
		if !callback(s.world, t) {
			return nil
		}
		if err := s.applyDue(t, dt, i+1); err != nil {
			return err
		}
	}
	return nil
}

// Begin prepares the simulator for stepping with Advance. Like Run it starts
// from the spawn state, then applies the events due at t=0.
func (s *Simulator) Begin(dt float64) error {
	if err := s.rewind(); err != nil {
		return err
	}
	s.clock = 0
	s.step = 0
	return s.applyDue(0, dt, 0)
}

// Advance runs one fixed step and then applies lifecycle events that have
// become due. It is meant for front ends that own their own loop.
func (s *Simulator) Advance(dt float64) (gravity.StepStats, error) {
	stats := s.world.FixedStep(dt)
	s.step++
	s.clock = float64(s.step) * dt

	if err := s.validate(s.step, s.clock); err != nil {
		return stats, err
	}
	for _, m := range s.metrics {
		m.Observe(s.world, s.clock)
	}
	for _, obs := range s.observers {
		obs.OnStep(s.world, s.clock)
	}
	return stats, s.applyDue(s.clock, dt, s.step)
}

// Clock returns the simulated time and step count reached by Advance.
func (s *Simulator) Clock() (float64, int) { return s.clock, s.step }

// rewind returns the world, metrics and lifecycle schedule to their state
// before any step was taken.
func (s *Simulator) rewind() error {
	if s.world.Steps() > 0 {
		if err := s.world.Reset(); err != nil {
			return fmt.Errorf("reset world: %w", err)
		}
	}
	for _, m := range s.metrics {
		m.Reset()
	}
	s.schedule.rewind()
	return nil
}

func (s *Simulator) applyDue(t, dt float64, step int) error {
	for _, ev := range s.schedule.due(t, dt) {
		if err := apply(s.world, ev); err != nil {
			return &SimulationError{Step: step, Time: t, Body: ev.Body, Wrapped: err}
		}
		s.log.Debug("lifecycle event applied",
			zap.String("body", ev.Body),
			zap.Stringer("action", ev.Action),
			zap.Float64("t", t),
		)
	}
	return nil
}

func (s *Simulator) validate(step int, t float64) error {
	for _, b := range Capture(s.world, t, step).Bodies {
		if !b.IsValid() {
			return &SimulationError{Step: step, Time: t, Body: b.Name, Wrapped: ErrInvalidState}
		}
	}
	return nil
}

func (s *Simulator) computeEnergy() float64 {
	if s.energy == nil {
		return 0
	}
	return s.energy(s.world)
}

func validateConfig(cfg Config) error {
	if cfg.Dt <= 0 || math.IsNaN(cfg.Dt) {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrInvalidConfig, cfg.Dt)
	}
	if cfg.Duration <= 0 || math.IsNaN(cfg.Duration) {
		return fmt.Errorf("%w: duration must be positive, got %f", ErrInvalidConfig, cfg.Duration)
	}
	if cfg.SampleEvery < 0 {
		return fmt.Errorf("%w: sample_every must not be negative, got %d", ErrInvalidConfig, cfg.SampleEvery)
	}
	return nil
}
