package tensor

import (
	"math/rand"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Zeros creates a tensor filled with zeros.
//
// Panics if the shape is invalid; callers pass shapes derived from existing
// tensors or layer configuration.
func Zeros(shape Shape) *Tensor {
	if err := shape.Validate(); err != nil {
		panic(err)
	}
	return &Tensor{m: mat.NewDense(shape[0], shape[1], nil)}
}

// ZerosLike creates a zero tensor with the same shape as t.
func ZerosLike(t *Tensor) *Tensor {
	return Zeros(t.Shape())
}

// Full creates a tensor filled with a specific value.
func Full(shape Shape, value float64) *Tensor {
	t := Zeros(shape)
	t.Fill(value)
	return t
}

// Scalar creates a 1x1 tensor holding v.
func Scalar(v float64) *Tensor {
	return &Tensor{m: mat.NewDense(1, 1, []float64{v})}
}

// FromSlice creates a tensor from a row-major slice.
// The slice is copied into the tensor's memory.
func FromSlice(data []float64, shape Shape) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if shape.NumElements() != len(data) {
		return nil, errors.Wrapf(ErrShapeMismatch, "shape %v requires %d elements, but got %d",
			shape, shape.NumElements(), len(data))
	}
	buf := make([]float64, len(data))
	copy(buf, data)
	return &Tensor{m: mat.NewDense(shape[0], shape[1], buf)}, nil
}

// FromRows creates a tensor with one row per input slice.
// All rows must have the same, non-zero length.
func FromRows(rows [][]float64) (*Tensor, error) {
	if len(rows) == 0 {
		return nil, errors.Wrap(ErrInvalidShape, "from rows: no rows")
	}
	cols := len(rows[0])
	if cols == 0 {
		return nil, errors.Wrap(ErrInvalidShape, "from rows: empty row")
	}
	buf := make([]float64, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, errors.Wrapf(ErrShapeMismatch, "from rows: row %d has %d values, want %d", i, len(row), cols)
		}
		buf = append(buf, row...)
	}
	return &Tensor{m: mat.NewDense(len(rows), cols, buf)}, nil
}

// Randn creates a tensor with values drawn from N(0, 1) using rng.
func Randn(shape Shape, rng *rand.Rand) *Tensor {
	t := Zeros(shape)
	data := t.Data()
	for i := range data {
		data[i] = rng.NormFloat64()
	}
	return t
}

// Uniform creates a tensor with values drawn from U(low, high) using rng.
func Uniform(shape Shape, low, high float64, rng *rand.Rand) *Tensor {
	t := Zeros(shape)
	data := t.Data()
	for i := range data {
		data[i] = low + rng.Float64()*(high-low)
	}
	return t
}
