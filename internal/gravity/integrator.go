package gravity

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// StepStats summarizes one evaluation of the pairwise forces.
type StepStats struct {
	Bodies     int
	Pairs      int
	Coincident int // pairs skipped because the bodies share a position or are too close for a finite force
}

// Integrator accumulates gravitational forces between registered bodies.
type Integrator struct {
	G float64

	masses    []float64
	positions []r3.Vec
	forces    []r3.Vec
}

func NewIntegrator(g float64) *Integrator {
	return &Integrator{G: g}
}

// Step evaluates every pair in a snapshot of reg and applies the summed force
// to each body exactly once.
func (in *Integrator) Step(reg *Registry) StepStats {
	bodies := reg.Snapshot()
	forces, stats := in.accumulate(bodies)
	for i, b := range bodies {
		b.AddForce(forces[i])
	}
	return stats
}

// Forces returns the net gravitational force on each body, indexed like the
// input. Masses and positions are read once, before any pair is evaluated.
// The returned slice is owned by the caller.
func (in *Integrator) Forces(bodies []Body) []r3.Vec {
	forces, _ := in.accumulate(bodies)
	out := make([]r3.Vec, len(forces))
	copy(out, forces)
	return out
}

func (in *Integrator) accumulate(bodies []Body) ([]r3.Vec, StepStats) {
	n := len(bodies)
	in.snapshot(bodies)
	stats := StepStats{Bodies: n}

	for i := 0; i < n; i++ {
		pi, mi := in.positions[i], in.masses[i]

		for j := i + 1; j < n; j++ {
			stats.Pairs++

			dir := r3.Sub(in.positions[j], pi)
			dist := r3.Norm(dir)
			if dist == 0 {
				stats.Coincident++
				continue
			}

			mag := in.G * mi * in.masses[j] / dist / dist
			if math.IsInf(mag, 0) {
				stats.Coincident++
				continue
			}
			f := r3.Scale(mag, r3.Unit(dir))

			// j is pulled back toward i, i toward j.
			in.forces[j] = r3.Sub(in.forces[j], f)
			in.forces[i] = r3.Add(in.forces[i], f)
		}
	}

	return in.forces, stats
}

func (in *Integrator) snapshot(bodies []Body) {
	n := len(bodies)
	if cap(in.forces) < n {
		in.masses = make([]float64, n)
		in.positions = make([]r3.Vec, n)
		in.forces = make([]r3.Vec, n)
	}
	in.masses = in.masses[:n]
	in.positions = in.positions[:n]
	in.forces = in.forces[:n]

	for i, b := range bodies {
		in.masses[i] = b.Mass()
		in.positions[i] = b.Position()
		in.forces[i] = r3.Vec{}
	}
}

// PotentialEnergy returns the gravitational potential energy of the set,
// skipping coincident pairs and pairs whose term overflows.
func (in *Integrator) PotentialEnergy(bodies []Body) float64 {
	pe := 0.0
	for i := 0; i < len(bodies); i++ {
		pi, mi := bodies[i].Position(), bodies[i].Mass()
		for j := i + 1; j < len(bodies); j++ {
			r := r3.Norm(r3.Sub(bodies[j].Position(), pi))
			if r == 0 {
				continue
			}
			if term := in.G * mi * bodies[j].Mass() / r; !math.IsInf(term, 0) {
				pe -= term
			}
		}
	}
	return pe
}
