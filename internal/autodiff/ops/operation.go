// Package ops defines the differentiable operations recorded by the autodiff graph.
//
// Each operation computes its forward value when it is constructed and keeps
// what it needs to compute input gradients during the backward pass:
//   - AffineOp: y = xW + b (d/dx = grad@Wᵀ, d/dW = xᵀ@grad, d/db = column sums of grad)
//   - ReLUOp: y = max(0, x) (d/dx = 1 if x > 0, else 0)
//   - LogSoftmaxOp: row-wise y = x - logsumexp(x)
//   - DropoutOp: y = x * mask, mask fixed at construction
//   - NLLOp: mean negative log-likelihood of the labelled classes
package ops

import "github.com/mukulkrjha/deep-learning-v2-pytorch/internal/tensor"

// Operation represents a differentiable operation in the computation graph.
type Operation interface {
	// Name returns a short identifier used in error messages.
	Name() string

	// Output returns the value produced by the forward pass.
	Output() *tensor.Tensor

	// Backward computes gradients for inputs given the output gradient.
	// Returns one gradient per input, in input order. A nil entry means no
	// gradient flows to that input.
	//
	// Example for AffineOp:
	//   inputs: [x, W, b]
	//   outputGrad: dL/dy
	//   returns: [dL/dy @ Wᵀ, xᵀ @ dL/dy, sum_rows(dL/dy)]
	Backward(outputGrad *tensor.Tensor) []*tensor.Tensor
}
