package rigid

import "gonum.org/v1/gonum/spatial/r3"

type lifecycle int

const (
	inactive lifecycle = iota
	active
	destroyed
)

// BodySpec describes a body to spawn.
type BodySpec struct {
	Name     string
	Mass     float64
	Position r3.Vec
	Velocity r3.Vec
	Pinned   bool
	// Disabled spawns the body without registering it for gravity.
	Disabled bool
}

// Body is a rigid point mass owned by a World. It implements gravity.Body.
type Body struct {
	name     string
	mass     float64
	pos      r3.Vec
	vel      r3.Vec
	force    r3.Vec // accumulator for the step in progress
	netForce r3.Vec // force applied during the last completed step
	pinned   bool
	state    lifecycle
	spec     BodySpec
}

func (b *Body) Name() string      { return b.name }
func (b *Body) Mass() float64     { return b.mass }
func (b *Body) Position() r3.Vec  { return b.pos }
func (b *Body) Velocity() r3.Vec  { return b.vel }
func (b *Body) NetForce() r3.Vec  { return b.netForce }
func (b *Body) Pinned() bool      { return b.pinned }
func (b *Body) Active() bool      { return b.state == active }
func (b *Body) Destroyed() bool   { return b.state == destroyed }
func (b *Body) AddForce(f r3.Vec) { b.force = r3.Add(b.force, f) }
func (b *Body) Momentum() r3.Vec  { return r3.Scale(b.mass, b.vel) }
func (b *Body) KineticEnergy() float64 {
	return 0.5 * b.mass * r3.Norm2(b.vel)
}

// Teleport places the body at pos with velocity vel. Call it between steps.
func (b *Body) Teleport(pos, vel r3.Vec) {
	b.pos = pos
	b.vel = vel
}
