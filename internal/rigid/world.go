package rigid

import (
	"fmt"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/attractor/internal/gravity"
)

// World owns a set of bodies and is the host side of the gravity core: it
// registers bodies as they become active, asks the integrator for forces
// once per fixed step, and integrates motion with its Scheme.
type World struct {
	registry *gravity.Registry
	gravity  *gravity.Integrator
	scheme   Scheme
	bodies   []*Body
	byName   map[string]*Body
	retired  []BodySpec // destroyed since spawn, respawned by Reset
	log      *zap.Logger
	steps    int
}

type Option func(*World)

func WithLogger(log *zap.Logger) Option {
	return func(w *World) {
		if log != nil {
			w.log = log
		}
	}
}

// WithRegistry shares an existing registry instead of creating one. Worlds
// sharing a registry attract each other's bodies; each world only ever
// registers and deregisters its own.
func WithRegistry(reg *gravity.Registry) Option {
	return func(w *World) {
		if reg != nil {
			w.registry = reg
		}
	}
}

func NewWorld(g float64, scheme Scheme, opts ...Option) *World {
	if scheme == nil {
		scheme = NewSemiImplicitEuler()
	}
	w := &World{
		registry: gravity.NewRegistry(),
		gravity:  gravity.NewIntegrator(g),
		scheme:   scheme,
		bodies:   make([]*Body, 0, 16),
		byName:   make(map[string]*Body),
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *World) G() float64                   { return w.gravity.G }
func (w *World) SetG(g float64)               { w.gravity.G = g }
func (w *World) Scheme() Scheme               { return w.scheme }
func (w *World) Registry() *gravity.Registry  { return w.registry }
func (w *World) Gravity() *gravity.Integrator { return w.gravity }
func (w *World) Steps() int                   { return w.steps }

// Spawn creates a body and, unless spec.Disabled is set, activates it.
func (w *World) Spawn(spec BodySpec) (*Body, error) {
	if spec.Name == "" {
		spec.Name = fmt.Sprintf("body%d", len(w.bodies))
	}
	if _, ok := w.byName[spec.Name]; ok {
		return nil, fmt.Errorf("spawn %q: %w", spec.Name, ErrDuplicateName)
	}

	b := &Body{
		name:   spec.Name,
		mass:   spec.Mass,
		pos:    spec.Position,
		vel:    spec.Velocity,
		pinned: spec.Pinned,
		state:  inactive,
		spec:   spec,
	}
	if !spec.Disabled {
		if err := w.registry.Register(b); err != nil {
			return nil, fmt.Errorf("spawn %q: %w", spec.Name, err)
		}
		b.state = active
	}

	w.bodies = append(w.bodies, b)
	w.byName[b.name] = b
	w.log.Debug("body spawned",
		zap.String("body", b.name),
		zap.Float64("mass", b.mass),
		zap.Bool("active", b.Active()),
	)
	return b, nil
}

// Enable registers b for gravity. Enabling an active body does nothing.
func (w *World) Enable(b *Body) error {
	if err := w.owned(b); err != nil {
		return err
	}
	if b.state == active {
		return nil
	}
	if err := w.registry.Register(b); err != nil {
		return fmt.Errorf("enable %q: %w", b.name, err)
	}
	b.state = active
	w.log.Debug("body enabled", zap.String("body", b.name))
	return nil
}

// Disable removes b from gravity while keeping its state. A disabled body
// neither attracts nor moves.
func (w *World) Disable(b *Body) error {
	if err := w.owned(b); err != nil {
		return err
	}
	if b.state != active {
		return nil
	}
	w.registry.Deregister(b)
	b.state = inactive
	b.force = r3.Vec{}
	b.netForce = r3.Vec{}
	w.log.Debug("body disabled", zap.String("body", b.name))
	return nil
}

// Destroy deregisters b and forgets it. Destroying twice is a no-op.
func (w *World) Destroy(b *Body) {
	if b == nil || b.state == destroyed {
		return
	}
	if w.byName[b.name] != b {
		return
	}
	w.registry.Deregister(b)
	b.state = destroyed
	delete(w.byName, b.name)
	w.retired = append(w.retired, b.spec)
	for i, other := range w.bodies {
		if other == b {
			w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
			break
		}
	}
	w.log.Debug("body destroyed", zap.String("body", b.name))
}

func (w *World) owned(b *Body) error {
	if b == nil {
		return gravity.ErrNilBody
	}
	if b.state == destroyed {
		return fmt.Errorf("%q: %w", b.name, ErrDestroyed)
	}
	if w.byName[b.name] != b {
		return fmt.Errorf("%q: %w", b.name, ErrForeignBody)
	}
	return nil
}

func (w *World) Lookup(name string) (*Body, bool) {
	b, ok := w.byName[name]
	return b, ok
}

// Bodies returns every live body, active or not, in spawn order.
func (w *World) Bodies() []*Body {
	out := make([]*Body, len(w.bodies))
	copy(out, w.bodies)
	return out
}

// Active returns the bodies currently registered for gravity.
func (w *World) Active() []gravity.Body {
	return w.registry.Snapshot()
}

// FixedStep runs one gravity evaluation and advances every active body that
// is not pinned.
func (w *World) FixedStep(dt float64) gravity.StepStats {
	for _, b := range w.bodies {
		b.force = r3.Vec{}
	}

	stats := w.gravity.Step(w.registry)

	for _, b := range w.bodies {
		if b.state != active {
			continue
		}
		b.netForce = b.force
		if b.pinned {
			b.vel = r3.Vec{}
			continue
		}
		acc := r3.Scale(1/b.mass, b.force)
		b.pos, b.vel = w.scheme.Advance(b.pos, b.vel, acc, dt)
	}
	w.steps++

	if stats.Coincident > 0 {
		w.log.Debug("coincident bodies skipped",
			zap.Int("step", w.steps),
			zap.Int("pairs", stats.Coincident),
		)
	}
	return stats
}

// Reset restores every live body to the state it was spawned with and
// respawns bodies destroyed since then as new bodies.
func (w *World) Reset() error {
	for _, b := range w.bodies {
		b.Teleport(b.spec.Position, b.spec.Velocity)
		b.force = r3.Vec{}
		b.netForce = r3.Vec{}
		var err error
		if b.spec.Disabled {
			err = w.Disable(b)
		} else {
			err = w.Enable(b)
		}
		if err != nil {
			return err
		}
	}

	retired := w.retired
	w.retired = nil
	for _, spec := range retired {
		if _, err := w.Spawn(spec); err != nil {
			return fmt.Errorf("reset: %w", err)
		}
	}
	w.steps = 0
	return nil
}

// Close destroys every body, which removes them from the registry. Bodies
// of other worlds sharing the registry are left alone.
func (w *World) Close() {
	for len(w.bodies) > 0 {
		w.Destroy(w.bodies[len(w.bodies)-1])
	}
	w.retired = nil
}
