package gravity

import "errors"

var (
	// ErrNilBody indicates a nil body was handed to the registry.
	ErrNilBody = errors.New("gravity: nil body")

	// ErrInvalidMass indicates a mass that is zero, negative, NaN or infinite.
	ErrInvalidMass = errors.New("gravity: mass must be positive and finite")
)
