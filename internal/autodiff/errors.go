package autodiff

import "github.com/pkg/errors"

// Common errors.
var (
	// ErrGraphConsumed is returned by Backward on a graph that has already
	// been backpropagated. Run a new forward pass on a new graph instead.
	ErrGraphConsumed = errors.New("graph already consumed by backward")

	// ErrNotTracked is returned by Backward when the loss was computed with
	// gradient tracking disabled.
	ErrNotTracked = errors.New("loss was computed without gradient tracking")

	// ErrNotScalar is returned by Backward when the loss is not a 1x1 tensor.
	ErrNotScalar = errors.New("backward requires a scalar loss")

	// ErrForeignVar is returned when a Var from another graph is used.
	ErrForeignVar = errors.New("variable belongs to a different graph")
)
