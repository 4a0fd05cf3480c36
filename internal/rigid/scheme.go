package rigid

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

// Scheme advances a single body by one fixed step given its acceleration.
type Scheme interface {
	Name() string
	Advance(pos, vel, acc r3.Vec, dt float64) (r3.Vec, r3.Vec)
}

// SemiImplicitEuler updates velocity first and moves with the new velocity.
// It is symplectic and keeps orbits bounded far better than ExplicitEuler.
type SemiImplicitEuler struct{}

func NewSemiImplicitEuler() *SemiImplicitEuler { return &SemiImplicitEuler{} }

func (s *SemiImplicitEuler) Name() string { return "semi-implicit-euler" }

func (s *SemiImplicitEuler) Advance(pos, vel, acc r3.Vec, dt float64) (r3.Vec, r3.Vec) {
	vel = r3.Add(vel, r3.Scale(dt, acc))
	pos = r3.Add(pos, r3.Scale(dt, vel))
	return pos, vel
}

// ExplicitEuler moves with the old velocity, then updates it.
type ExplicitEuler struct{}

func NewExplicitEuler() *ExplicitEuler { return &ExplicitEuler{} }

func (e *ExplicitEuler) Name() string { return "euler" }

func (e *ExplicitEuler) Advance(pos, vel, acc r3.Vec, dt float64) (r3.Vec, r3.Vec) {
	pos = r3.Add(pos, r3.Scale(dt, vel))
	vel = r3.Add(vel, r3.Scale(dt, acc))
	return pos, vel
}

var schemes = map[string]func() Scheme{
	"semi-implicit-euler": func() Scheme { return NewSemiImplicitEuler() },
	"symplectic-euler":    func() Scheme { return NewSemiImplicitEuler() },
	"symplectic":          func() Scheme { return NewSemiImplicitEuler() },
	"euler":               func() Scheme { return NewExplicitEuler() },
}

// DefaultScheme is used when a scene names no integrator.
const DefaultScheme = "semi-implicit-euler"

func SchemeByName(name string) (Scheme, error) {
	if name == "" {
		name = DefaultScheme
	}
	fn, ok := schemes[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s (available: %v)", name, SchemeNames())
	}
	return fn(), nil
}

func SchemeNames() []string {
	names := make([]string, 0, len(schemes))
	for name := range schemes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
