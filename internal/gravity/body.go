package gravity

import "gonum.org/v1/gonum/spatial/r3"

// DefaultG is the gravitational scaling constant in simulation units.
const DefaultG = 667.4

// Body is a point mass taking part in the attraction. Implementations must be
// comparable, typically a pointer, since the registry tracks bodies by identity.
type Body interface {
	Mass() float64
	Position() r3.Vec
	AddForce(f r3.Vec)
}
