package tensor

import "github.com/pkg/errors"

// Shape represents the dimensions of a tensor.
//
// Tensors in this module are always two-dimensional: Shape{rows, cols}.
// A batch of feature vectors is Shape{batch, features}, a bias row is
// Shape{1, features} and a scalar loss is Shape{1, 1}.
type Shape []int

// NumElements returns the total number of elements in the tensor.
func (s Shape) NumElements() int {
	if len(s) == 0 {
		return 1 // Scalar has 1 element
	}
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks that the shape is a valid matrix shape (two dimensions, both > 0).
func (s Shape) Validate() error {
	if len(s) != 2 {
		return errors.Wrapf(ErrInvalidShape, "expected 2 dimensions, got %d (%v)", len(s), s)
	}
	for i, dim := range s {
		if dim <= 0 {
			return errors.Wrapf(ErrInvalidShape, "dimension %d is %d (must be > 0)", i, dim)
		}
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}
