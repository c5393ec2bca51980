package ops

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/mukulkrjha/deep-learning-v2-pytorch/internal/tensor"
)

// AffineOp represents y = xW + b.
//
// Shapes:
//   - x: [batch, in]
//   - W: [in, out]
//   - b: [1, out], broadcast over the batch
//   - y: [batch, out]
type AffineOp struct {
	x, w, b *tensor.Tensor
	output  *tensor.Tensor
}

// NewAffineOp computes xW + b and records the operands for backward.
//
// Returns tensor.ErrShapeMismatch if x's width differs from W's row count or
// b is not a [1, out] row.
func NewAffineOp(x, w, b *tensor.Tensor) (*AffineOp, error) {
	if x.Cols() != w.Rows() {
		return nil, errors.Wrapf(tensor.ErrShapeMismatch,
			"affine: input has %d features, weight expects %d", x.Cols(), w.Rows())
	}
	if b.Rows() != 1 || b.Cols() != w.Cols() {
		return nil, errors.Wrapf(tensor.ErrShapeMismatch,
			"affine: bias shape %v, want [1 %d]", b.Shape(), w.Cols())
	}

	var y mat.Dense
	y.Mul(x.Dense(), w.Dense())
	out := tensor.FromDense(&y)
	bias := b.Row(0)
	for i := 0; i < out.Rows(); i++ {
		floats.Add(out.Row(i), bias)
	}

	return &AffineOp{x: x, w: w, b: b, output: out}, nil
}

// Name returns "affine".
func (op *AffineOp) Name() string { return "affine" }

// Output returns xW + b.
func (op *AffineOp) Output() *tensor.Tensor { return op.output }

// Backward computes [dx, dW, db].
func (op *AffineOp) Backward(outputGrad *tensor.Tensor) []*tensor.Tensor {
	g := outputGrad.Dense()

	var dx mat.Dense
	dx.Mul(g, op.w.Dense().T())

	var dw mat.Dense
	dw.Mul(op.x.Dense().T(), g)

	db := tensor.Zeros(op.b.Shape())
	acc := db.Row(0)
	for i := 0; i < outputGrad.Rows(); i++ {
		floats.Add(acc, outputGrad.Row(i))
	}

	return []*tensor.Tensor{tensor.FromDense(&dx), tensor.FromDense(&dw), db}
}
