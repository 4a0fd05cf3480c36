package metrics

import (
	"math"

	"github.com/san-kum/attractor/internal/rigid"
)

// KineticEnergy sums ½mv² over the active bodies of w.
func KineticEnergy(w *rigid.World) float64 {
	ke := 0.0
	for _, b := range w.Bodies() {
		if b.Active() {
			ke += b.KineticEnergy()
		}
	}
	return ke
}

// PotentialEnergy is the pairwise gravitational potential of the active set.
func PotentialEnergy(w *rigid.World) float64 {
	return w.Gravity().PotentialEnergy(w.Active())
}

func TotalEnergy(w *rigid.World) float64 {
	return KineticEnergy(w) + PotentialEnergy(w)
}

// Energy reports the mean total energy over the observed steps.
type Energy struct {
	name        string
	samples     int
	totalEnergy float64
}

func NewEnergy() *Energy {
	return &Energy{name: "energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(w *rigid.World, t float64) {
	e.totalEnergy += TotalEnergy(w)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// EnergyDrift reports the largest relative deviation from the first observed
// total energy.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(w *rigid.World, t float64) {
	energy := TotalEnergy(w)
	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy == 0 {
		return
	}
	drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
	if drift > e.maxDrift {
		e.maxDrift = drift
	}
}

func (e *EnergyDrift) Value() float64 { return e.maxDrift }

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
