package ops

import "github.com/mukulkrjha/deep-learning-v2-pytorch/internal/tensor"

// ReLUOp represents a ReLU (Rectified Linear Unit) activation: output = max(0, x).
//
// Backward pass:
//   - d(ReLU(x))/dx = 1 if x > 0, else 0
type ReLUOp struct {
	input  *tensor.Tensor
	output *tensor.Tensor
}

// NewReLUOp computes max(0, x).
func NewReLUOp(input *tensor.Tensor) *ReLUOp {
	out := input.Clone()
	data := out.Data()
	for i, v := range data {
		if v < 0 {
			data[i] = 0
		}
	}
	return &ReLUOp{input: input, output: out}
}

// Name returns "relu".
func (op *ReLUOp) Name() string { return "relu" }

// Output returns max(0, x).
func (op *ReLUOp) Output() *tensor.Tensor { return op.output }

// Backward masks the output gradient where the input was not positive.
func (op *ReLUOp) Backward(outputGrad *tensor.Tensor) []*tensor.Tensor {
	grad := outputGrad.Clone()
	gradData := grad.Data()
	for i, v := range op.input.Data() {
		if v <= 0 {
			gradData[i] = 0
		}
	}
	return []*tensor.Tensor{grad}
}
