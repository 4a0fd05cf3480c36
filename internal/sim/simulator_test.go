package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/attractor/internal/gravity"
	"github.com/san-kum/attractor/internal/metrics"
	"github.com/san-kum/attractor/internal/rigid"
)

func newPair(t *testing.T) *rigid.World {
	t.Helper()
	w := rigid.NewWorld(gravity.DefaultG, rigid.NewSemiImplicitEuler())
	for _, spec := range []rigid.BodySpec{
		{Name: "a", Mass: 1},
		{Name: "b", Mass: 1, Position: r3.Vec{X: 1}},
	} {
		if _, err := w.Spawn(spec); err != nil {
			t.Fatal(err)
		}
	}
	return w
}

func TestSimulatorRun(t *testing.T) {
	s := New(newPair(t))
	cfg := Config{Dt: 0.0001, Duration: 0.01, SampleEvery: 10}

	result, err := s.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.StepsTaken != 100 {
		t.Errorf("expected 100 steps, got %d", result.StepsTaken)
	}
	if len(result.Frames) != 11 {
		t.Errorf("expected 11 frames, got %d", len(result.Frames))
	}
	if result.Frames[0].Time != 0 {
		t.Errorf("first frame at t=%f", result.Frames[0].Time)
	}
	if last := result.Final(); math.Abs(last.Time-0.01) > 1e-12 || last.Step != 100 {
		t.Errorf("last frame at t=%f step=%d", last.Time, last.Step)
	}

	a, _ := result.Final().Body("a")
	b, _ := result.Final().Body("b")
	if a.Position.X <= 0 || b.Position.X >= 1 {
		t.Errorf("bodies did not approach: a=%v b=%v", a.Position, b.Position)
	}
	if math.Abs(a.Position.X+b.Position.X-1) > 1e-9 {
		t.Errorf("centre of mass moved: a=%v b=%v", a.Position, b.Position)
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	s := New(newPair(t))

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero dt", Config{Dt: 0, Duration: 1.0}},
		{"negative dt", Config{Dt: -0.1, Duration: 1.0}},
		{"zero duration", Config{Dt: 0.1, Duration: 0}},
		{"negative duration", Config{Dt: 0.1, Duration: -1.0}},
		{"negative sampling", Config{Dt: 0.1, Duration: 1.0, SampleEvery: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Run(context.Background(), tt.cfg)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestSimulatorMetricsAndObservers(t *testing.T) {
	s := New(newPair(t), WithEnergy(metrics.TotalEnergy))
	for _, m := range metrics.Default() {
		s.AddMetric(m)
	}
	calls := 0
	s.AddObserver(ObserverFunc(func(w *rigid.World, t float64) { calls++ }))

	result, err := s.Run(context.Background(), Config{Dt: 0.0001, Duration: 0.001})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if calls != 10 {
		t.Errorf("expected 10 observer calls, got %d", calls)
	}
	for _, name := range []string{"energy", "energy_drift", "momentum_drift"} {
		if _, ok := result.Metrics[name]; !ok {
			t.Errorf("metric %s not found in result", name)
		}
	}
	if result.EnergyDrift > 0.01 {
		t.Errorf("energy drift too large: %f", result.EnergyDrift)
	}
}

func TestSimulatorContextCanceled(t *testing.T) {
	s := New(newPair(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := s.Run(ctx, Config{Dt: 0.001, Duration: 1})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if result == nil || result.StepsTaken != 0 {
		t.Errorf("expected partial result with 0 steps, got %+v", result)
	}
}

func TestSimulatorLifecycleSchedule(t *testing.T) {
	w := newPair(t)
	if _, err := w.Spawn(rigid.BodySpec{Name: "late", Mass: 1, Position: r3.Vec{Y: 5}, Disabled: true}); err != nil {
		t.Fatal(err)
	}

	s := New(w)
	s.Schedule(
		LifecycleEvent{At: 0.005, Body: "b", Action: Destroy},
		LifecycleEvent{At: 0.002, Body: "late", Action: Enable},
	)

	var activeAt []int
	s.AddObserver(ObserverFunc(func(w *rigid.World, t float64) {
		activeAt = append(activeAt, w.Registry().Len())
	}))

	result, err := s.Run(context.Background(), Config{Dt: 0.001, Duration: 0.008, SampleEvery: 1})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	want := []int{2, 2, 3, 3, 3, 2, 2, 2}
	if len(activeAt) != len(want) {
		t.Fatalf("observed %d steps, want %d", len(activeAt), len(want))
	}
	for i := range want {
		if activeAt[i] != want[i] {
			t.Errorf("step %d: %d active bodies, want %d", i+1, activeAt[i], want[i])
		}
	}

	if _, ok := result.Final().Body("b"); ok {
		t.Error("destroyed body still in final frame")
	}
	if _, ok := w.Lookup("b"); ok {
		t.Error("destroyed body still in world")
	}
}

func TestSimulatorUnknownLifecycleBody(t *testing.T) {
	s := New(newPair(t))
	s.Schedule(LifecycleEvent{At: 0, Body: "ghost", Action: Enable})

	_, err := s.Run(context.Background(), Config{Dt: 0.001, Duration: 0.01})
	var simErr *SimulationError
	if !errors.As(err, &simErr) {
		t.Fatalf("expected SimulationError, got %v", err)
	}
	if !errors.Is(err, ErrUnknownBody) || simErr.Body != "ghost" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSimulatorDetectsInvalidState(t *testing.T) {
	w := rigid.NewWorld(gravity.DefaultG, nil)
	if _, err := w.Spawn(rigid.BodySpec{Name: "a", Mass: 1, Velocity: r3.Vec{X: math.Inf(1)}}); err != nil {
		t.Fatal(err)
	}

	s := New(w)
	result, err := s.Run(context.Background(), Config{Dt: 0.01, Duration: 1, ValidateState: true})
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	if result.StepsTaken != 1 {
		t.Errorf("expected to stop after 1 step, got %d", result.StepsTaken)
	}
}

func TestSimulatorRunWithCallback(t *testing.T) {
	s := New(newPair(t))
	steps := 0
	err := s.RunWithCallback(context.Background(), Config{Dt: 0.001, Duration: 1}, func(w *rigid.World, t float64) bool {
		steps++
		return steps < 5
	})
	if err != nil {
		t.Fatal(err)
	}
	if steps != 5 {
		t.Errorf("expected 5 callbacks, got %d", steps)
	}
}

func TestSimulationError(t *testing.T) {
	err := &SimulationError{Time: 1.5, Step: 150, Wrapped: ErrInvalidState}
	expected := "step 150 (t=1.5000): sim: invalid state (NaN or Inf detected)"
	if err.Error() != expected {
		t.Errorf("SimulationError.Error() = %q, want %q", err.Error(), expected)
	}
}

func TestConfigSteps(t *testing.T) {
	tests := []struct {
		cfg  Config
		want int
	}{
		{Config{Dt: 0.1, Duration: 1}, 10},
		{Config{Dt: 0.001, Duration: 5}, 5000},
		{Config{Dt: 0.3, Duration: 1}, 3},
	}
	for _, tt := range tests {
		if got := tt.cfg.Steps(); got != tt.want {
			t.Errorf("Steps(%+v) = %d, want %d", tt.cfg, got, tt.want)
		}
	}
}

func TestSimulatorBeginAdvance(t *testing.T) {
	w := newPair(t)
	s := New(w)
	s.Schedule(LifecycleEvent{At: 0.002, Body: "b", Action: Disable})

	if err := s.Begin(0.001); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		stats, err := s.Advance(0.001)
		if err != nil {
			t.Fatalf("advance %d: %v", i, err)
		}
		if i < 2 && stats.Pairs != 1 {
			t.Errorf("step %d: expected 1 pair, got %d", i+1, stats.Pairs)
		}
		if i == 2 && stats.Pairs != 0 {
			t.Errorf("step 3: disabled body still paired")
		}
	}

	clock, step := s.Clock()
	if step != 3 || math.Abs(clock-0.003) > 1e-12 {
		t.Errorf("clock = %f step = %d", clock, step)
	}

	if err := s.Begin(0.001); err != nil {
		t.Fatal(err)
	}
	if _, step := s.Clock(); step != 0 {
		t.Errorf("Begin did not reset the clock")
	}
}

func TestSimulatorRunTwiceReplaysLifecycle(t *testing.T) {
	w := newPair(t)
	if _, err := w.Spawn(rigid.BodySpec{Name: "late", Mass: 1, Position: r3.Vec{Y: 5}, Disabled: true}); err != nil {
		t.Fatal(err)
	}
	s := New(w)
	s.Schedule(
		LifecycleEvent{At: 0.002, Body: "late", Action: Enable},
		LifecycleEvent{At: 0.005, Body: "b", Action: Destroy},
	)
	cfg := Config{Dt: 0.001, Duration: 0.008, SampleEvery: 1}

	first, err := s.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := s.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if len(first.Frames) != len(second.Frames) {
		t.Fatalf("frame count differs: %d vs %d", len(first.Frames), len(second.Frames))
	}
	b0, ok := second.Frames[0].Body("b")
	if !ok || !b0.Active || b0.Position != (r3.Vec{X: 1}) {
		t.Errorf("second run should start from the spawn state, got %+v", b0)
	}
	for _, name := range []string{"a", "late"} {
		want, _ := first.Final().Body(name)
		got, ok := second.Final().Body(name)
		if !ok || got.Position != want.Position {
			t.Errorf("%s: final position %v, want %v", name, got.Position, want.Position)
		}
	}
	if _, ok := second.Final().Body("b"); ok {
		t.Error("b should be destroyed again in the second run")
	}
}

type countingMetric struct {
	observed, resets int
}

func (c *countingMetric) Name() string                      { return "count" }
func (c *countingMetric) Observe(w *rigid.World, t float64) { c.observed++ }
func (c *countingMetric) Value() float64                    { return float64(c.observed) }

func (c *countingMetric) Reset() {
	c.observed = 0
	c.resets++
}

func TestSimulatorRunWithCallbackFeedsMetricsAndObservers(t *testing.T) {
	s := New(newPair(t))
	m := &countingMetric{observed: 99}
	s.AddMetric(m)
	calls := 0
	s.AddObserver(ObserverFunc(func(w *rigid.World, t float64) { calls++ }))

	err := s.RunWithCallback(context.Background(), Config{Dt: 0.001, Duration: 0.01}, func(w *rigid.World, t float64) bool {
		return true
	})
	if err != nil {
		t.Fatal(err)
	}
	if m.resets != 1 || m.observed != 10 {
		t.Errorf("metric reset %d times and observed %d steps, want 1 and 10", m.resets, m.observed)
	}
	if calls != 10 {
		t.Errorf("expected 10 observer calls, got %d", calls)
	}
}
