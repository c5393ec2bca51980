package ops

import (
	"github.com/pkg/errors"

	"github.com/mukulkrjha/deep-learning-v2-pytorch/internal/tensor"
)

// ErrLabelOutOfRange is returned when a class label falls outside [0, classes).
var ErrLabelOutOfRange = errors.New("label index out of range")

// NLLOp computes the mean negative log-likelihood:
//
//	loss = -(1/N) * sum_i logProbs[i, labels[i]]
//
// The input must already be log-probabilities. Feeding raw scores yields a
// finite but meaningless value.
//
// Backward pass:
//   - d(loss)/d(logProbs[i, labels[i]]) = -1/N, and 0 elsewhere
type NLLOp struct {
	shape  tensor.Shape
	labels []int
	output *tensor.Tensor
}

// NewNLLOp computes the loss for logProbs [batch, classes] against labels.
func NewNLLOp(logProbs *tensor.Tensor, labels []int) (*NLLOp, error) {
	n, classes := logProbs.Rows(), logProbs.Cols()
	if len(labels) != n {
		return nil, errors.Wrapf(tensor.ErrShapeMismatch, "nll: %d labels for %d rows", len(labels), n)
	}

	var sum float64
	for i, label := range labels {
		if label < 0 || label >= classes {
			return nil, errors.Wrapf(ErrLabelOutOfRange, "nll: label %d at row %d, classes=%d", label, i, classes)
		}
		sum += logProbs.At(i, label)
	}

	held := make([]int, n)
	copy(held, labels)

	return &NLLOp{
		shape:  logProbs.Shape(),
		labels: held,
		output: tensor.Scalar(-sum / float64(n)),
	}, nil
}

// Name returns "nll".
func (op *NLLOp) Name() string { return "nll" }

// Output returns the scalar loss.
func (op *NLLOp) Output() *tensor.Tensor { return op.output }

// Backward spreads the scalar gradient to the labelled entries.
func (op *NLLOp) Backward(outputGrad *tensor.Tensor) []*tensor.Tensor {
	g := outputGrad.At(0, 0) / float64(len(op.labels))
	grad := tensor.Zeros(op.shape)
	for i, label := range op.labels {
		grad.Set(i, label, -g)
	}
	return []*tensor.Tensor{grad}
}
