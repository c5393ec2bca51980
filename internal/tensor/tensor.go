// Package tensor provides the dense float64 matrices that hold parameters,
// activations and gradients.
//
// Storage is a gonum mat.Dense in row-major order with a stride equal to the
// number of columns, so Data and Row return views into contiguous memory.
package tensor

import (
	"fmt"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Tensor is a two-dimensional array of float64 values.
//
// Example:
//
//	x, err := tensor.FromRows([][]float64{{1, 2}, {3, 4}})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(x.Shape()) // [2 2]
type Tensor struct {
	m *mat.Dense
}

// New creates a zero-filled tensor with the given number of rows and columns.
func New(rows, cols int) (*Tensor, error) {
	shape := Shape{rows, cols}
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	return &Tensor{m: mat.NewDense(rows, cols, nil)}, nil
}

// FromDense wraps an existing gonum matrix.
//
// The matrix is copied when its stride differs from its column count, so the
// returned tensor always has contiguous rows.
func FromDense(m *mat.Dense) *Tensor {
	r, c := m.Dims()
	if m.RawMatrix().Stride == c {
		return &Tensor{m: m}
	}
	dense := mat.NewDense(r, c, nil)
	dense.Copy(m)
	return &Tensor{m: dense}
}

// Shape returns the tensor's shape as {rows, cols}.
func (t *Tensor) Shape() Shape {
	r, c := t.m.Dims()
	return Shape{r, c}
}

// Rows returns the number of rows.
func (t *Tensor) Rows() int {
	r, _ := t.m.Dims()
	return r
}

// Cols returns the number of columns.
func (t *Tensor) Cols() int {
	_, c := t.m.Dims()
	return c
}

// NumElements returns the total number of elements.
func (t *Tensor) NumElements() int {
	return t.Rows() * t.Cols()
}

// At returns the element at (i, j).
func (t *Tensor) At(i, j int) float64 {
	return t.m.At(i, j)
}

// Set sets the element at (i, j).
func (t *Tensor) Set(i, j int, v float64) {
	t.m.Set(i, j, v)
}

// Data returns the underlying row-major data.
// Modifying the slice modifies the tensor.
func (t *Tensor) Data() []float64 {
	return t.m.RawMatrix().Data
}

// Row returns a view of row i.
// Modifying the slice modifies the tensor.
func (t *Tensor) Row(i int) []float64 {
	return t.m.RawRowView(i)
}

// Item returns the single value of a 1x1 tensor.
func (t *Tensor) Item() (float64, error) {
	if t.Rows() != 1 || t.Cols() != 1 {
		return 0, errors.Wrapf(ErrShapeMismatch, "item: expected shape [1 1], got %v", t.Shape())
	}
	return t.m.At(0, 0), nil
}

// Dense returns the underlying gonum matrix.
func (t *Tensor) Dense() *mat.Dense {
	return t.m
}

// Clone returns a deep copy of the tensor.
func (t *Tensor) Clone() *Tensor {
	return &Tensor{m: mat.DenseCopyOf(t.m)}
}

// AddInPlace adds other element-wise into t.
func (t *Tensor) AddInPlace(other *Tensor) error {
	if !t.Shape().Equal(other.Shape()) {
		return errors.Wrapf(ErrShapeMismatch, "add: %v vs %v", t.Shape(), other.Shape())
	}
	floats.Add(t.Data(), other.Data())
	return nil
}

// Scale multiplies every element of t by c in place.
func (t *Tensor) Scale(c float64) {
	floats.Scale(c, t.Data())
}

// Fill sets every element of t to v.
func (t *Tensor) Fill(v float64) {
	data := t.Data()
	for i := range data {
		data[i] = v
	}
}

// EqualApprox reports whether t and other have the same shape and all
// elements are within tol of each other.
func (t *Tensor) EqualApprox(other *Tensor, tol float64) bool {
	if !t.Shape().Equal(other.Shape()) {
		return false
	}
	return mat.EqualApprox(t.m, other.m, tol)
}

// String returns a compact representation of the tensor.
func (t *Tensor) String() string {
	return fmt.Sprintf("Tensor%v%v", t.Shape(), mat.Formatted(t.m, mat.FormatMATLAB()))
}
