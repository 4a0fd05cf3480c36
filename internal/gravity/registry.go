package gravity

import (
	"fmt"
	"math"
	"slices"
	"sync"
)

// Registry is the ordered set of bodies currently taking part in the
// simulation. Mutation and snapshotting are serialized, so hosts may register
// and deregister from lifecycle callbacks while a step is in flight.
type Registry struct {
	mu     sync.RWMutex
	bodies []Body
	member map[Body]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		bodies: make([]Body, 0, 16),
		member: make(map[Body]struct{}, 16),
	}
}

// Register adds b to the active set. Registering a body that is already
// present does nothing.
func (r *Registry) Register(b Body) error {
	if b == nil {
		return ErrNilBody
	}
	if m := b.Mass(); m <= 0 || math.IsNaN(m) || math.IsInf(m, 0) {
		return fmt.Errorf("register body with mass %g: %w", m, ErrInvalidMass)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.member[b]; ok {
		return nil
	}
	r.member[b] = struct{}{}
	r.bodies = append(r.bodies, b)
	return nil
}

// Deregister removes b and reports whether it was present.
func (r *Registry) Deregister(b Body) bool {
	if b == nil {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.member[b]; !ok {
		return false
	}
	delete(r.member, b)
	if i := slices.Index(r.bodies, b); i >= 0 {
		r.bodies = slices.Delete(r.bodies, i, i+1)
	}
	return true
}

func (r *Registry) Contains(b Body) bool {
	if b == nil {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.member[b]
	return ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bodies)
}

// Snapshot returns the active bodies in registration order. The slice is a
// copy; later registry mutations do not affect it.
func (r *Registry) Snapshot() []Body {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.bodies)
}

// Each calls fn for every body in a snapshot of the active set.
func (r *Registry) Each(fn func(Body)) {
	for _, b := range r.Snapshot() {
		fn(b)
	}
}

func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bodies = r.bodies[:0]
	clear(r.member)
}
