package ops

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/mukulkrjha/deep-learning-v2-pytorch/internal/tensor"
)

// LogSoftmaxOp applies log-softmax to each row: y_ij = x_ij - log(sum_k exp(x_ik)).
//
// Every output entry is <= 0 and the exponentials of each row sum to 1.
//
// Backward pass, with s = exp(y):
//
//	dx_ij = dy_ij - s_ij * sum_k dy_ik
type LogSoftmaxOp struct {
	output *tensor.Tensor
}

// NewLogSoftmaxOp computes row-wise log-softmax using log-sum-exp for stability.
func NewLogSoftmaxOp(input *tensor.Tensor) *LogSoftmaxOp {
	out := input.Clone()
	for i := 0; i < out.Rows(); i++ {
		row := out.Row(i)
		lse := floats.LogSumExp(row)
		floats.AddConst(-lse, row)
	}
	return &LogSoftmaxOp{output: out}
}

// Name returns "log_softmax".
func (op *LogSoftmaxOp) Name() string { return "log_softmax" }

// Output returns the log-probabilities.
func (op *LogSoftmaxOp) Output() *tensor.Tensor { return op.output }

// Backward computes the input gradient.
func (op *LogSoftmaxOp) Backward(outputGrad *tensor.Tensor) []*tensor.Tensor {
	grad := outputGrad.Clone()
	for i := 0; i < grad.Rows(); i++ {
		g := grad.Row(i)
		y := op.output.Row(i)
		sum := floats.Sum(g)
		for j := range g {
			g[j] -= math.Exp(y[j]) * sum
		}
	}
	return []*tensor.Tensor{grad}
}
