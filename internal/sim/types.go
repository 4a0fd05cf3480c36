package sim

import (
	"math"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/attractor/internal/rigid"
)

// Metric is a running diagnostic observed after every step.
type Metric interface {
	Name() string
	Observe(w *rigid.World, t float64)
	Value() float64
	Reset()
}

// Observer is notified after every completed step.
type Observer interface {
	OnStep(w *rigid.World, t float64)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(w *rigid.World, t float64)

func (f ObserverFunc) OnStep(w *rigid.World, t float64) { f(w, t) }

// EnergyFunc reports the total energy of a world, used for drift tracking.
type EnergyFunc func(w *rigid.World) float64

type Config struct {
	Dt            float64
	Duration      float64
	SampleEvery   int // record a frame every n steps; 0 or 1 records every step
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            0.001,
		Duration:      5.0,
		SampleEvery:   10,
		ValidateState: true,
	}
}

// Steps returns the number of fixed steps covering the duration.
func (c Config) Steps() int {
	return int(math.Round(c.Duration / c.Dt))
}

type BodyState struct {
	Name     string
	Mass     float64
	Position r3.Vec
	Velocity r3.Vec
	Force    r3.Vec
	Active   bool
}

func (s BodyState) IsValid() bool {
	for _, v := range []float64{
		s.Position.X, s.Position.Y, s.Position.Z,
		s.Velocity.X, s.Velocity.Y, s.Velocity.Z,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

type Frame struct {
	Time   float64
	Step   int
	Bodies []BodyState
}

// Body returns the state of the named body in this frame.
func (f Frame) Body(name string) (BodyState, bool) {
	for _, b := range f.Bodies {
		if b.Name == name {
			return b, true
		}
	}
	return BodyState{}, false
}

// Capture records every live body of w.
func Capture(w *rigid.World, t float64, step int) Frame {
	bodies := w.Bodies()
	f := Frame{Time: t, Step: step, Bodies: make([]BodyState, len(bodies))}
	for i, b := range bodies {
		f.Bodies[i] = BodyState{
			Name:     b.Name(),
			Mass:     b.Mass(),
			Position: b.Position(),
			Velocity: b.Velocity(),
			Force:    b.NetForce(),
			Active:   b.Active(),
		}
	}
	return f
}

type Result struct {
	Frames          []Frame
	Metrics         map[string]float64
	StepsTaken      int
	EnergyDrift     float64
	CoincidentPairs int
	Elapsed         time.Duration
}

// Final returns the last recorded frame.
func (r *Result) Final() Frame {
	if len(r.Frames) == 0 {
		return Frame{}
	}
	return r.Frames[len(r.Frames)-1]
}
