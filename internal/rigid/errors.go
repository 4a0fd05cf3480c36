package rigid

import "errors"

var (
	// ErrDuplicateName indicates a spawn reused the name of a live body.
	ErrDuplicateName = errors.New("rigid: duplicate body name")

	// ErrDestroyed indicates an operation on a body that was destroyed.
	ErrDestroyed = errors.New("rigid: body destroyed")

	// ErrForeignBody indicates a body that belongs to another world.
	ErrForeignBody = errors.New("rigid: body not owned by this world")
)
