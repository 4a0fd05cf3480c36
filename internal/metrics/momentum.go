package metrics

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/attractor/internal/rigid"
)

// Momentum returns the total linear momentum of the active bodies.
func Momentum(w *rigid.World) r3.Vec {
	var p r3.Vec
	for _, b := range w.Bodies() {
		if b.Active() {
			p = r3.Add(p, b.Momentum())
		}
	}
	return p
}

// MomentumDrift reports the largest |P - P0| seen since the first observation.
// With no pinned bodies and a fixed body set it should stay near zero.
type MomentumDrift struct {
	name     string
	initial  r3.Vec
	maxDrift float64
	samples  int
}

func NewMomentumDrift() *MomentumDrift {
	return &MomentumDrift{name: "momentum_drift"}
}

func (m *MomentumDrift) Name() string { return m.name }

func (m *MomentumDrift) Observe(w *rigid.World, t float64) {
	p := Momentum(w)
	if m.samples == 0 {
		m.initial = p
	}
	m.samples++
	if d := r3.Norm(r3.Sub(p, m.initial)); d > m.maxDrift {
		m.maxDrift = d
	}
}

func (m *MomentumDrift) Value() float64 { return m.maxDrift }

func (m *MomentumDrift) Reset() {
	m.initial = r3.Vec{}
	m.maxDrift = 0
	m.samples = 0
}

// Metric matches sim.Metric without importing it.
type Metric interface {
	Name() string
	Observe(w *rigid.World, t float64)
	Value() float64
	Reset()
}

func Default() []Metric {
	return []Metric{
		NewEnergy(),
		NewEnergyDrift(),
		NewMomentumDrift(),
	}
}
