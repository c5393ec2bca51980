package tensor

import "github.com/pkg/errors"

// Common errors.
var (
	// ErrShapeMismatch is returned when operand shapes are incompatible,
	// e.g. a batch whose feature width differs from a layer's input width.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrInvalidShape is returned for shapes that are not valid matrices.
	ErrInvalidShape = errors.New("invalid shape")
)
