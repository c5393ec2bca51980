package data

import (
	"github.com/pkg/errors"

	"github.com/mukulkrjha/deep-learning-v2-pytorch/internal/tensor"
)

// Batch is one mini-batch: a [batch, features] input matrix and one class
// index per row.
type Batch struct {
	Inputs *tensor.Tensor
	Labels []int
}

// NewBatch pairs inputs with labels. The row count must equal len(labels)
// and be non-zero.
func NewBatch(inputs *tensor.Tensor, labels []int) (Batch, error) {
	if inputs == nil || len(labels) == 0 {
		return Batch{}, ErrEmptyBatch
	}
	if inputs.Rows() != len(labels) {
		return Batch{}, errors.Wrapf(tensor.ErrShapeMismatch, "batch: %d rows but %d labels", inputs.Rows(), len(labels))
	}
	return Batch{Inputs: inputs, Labels: labels}, nil
}

// Size returns the number of examples.
func (b Batch) Size() int {
	return len(b.Labels)
}
