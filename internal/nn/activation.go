package nn

import (
	"github.com/mukulkrjha/deep-learning-v2-pytorch/internal/autodiff"
)

// ReLU is a Rectified Linear Unit activation module.
//
// Applies the element-wise function: f(x) = max(0, x)
type ReLU struct{}

// NewReLU creates a new ReLU activation module.
func NewReLU() *ReLU {
	return &ReLU{}
}

// Forward applies ReLU activation: f(x) = max(0, x).
func (r *ReLU) Forward(g *autodiff.Graph, input autodiff.Var) (autodiff.Var, error) {
	return g.ReLU(input)
}

// Parameters returns nil (ReLU has no trainable parameters).
func (r *ReLU) Parameters() []*Parameter {
	return nil
}

// SetTraining is a no-op.
func (r *ReLU) SetTraining(bool) {}

// LogSoftmax turns each row of scores into log-probabilities.
//
// It is the final layer of a classifier trained with NLLLoss: every output
// entry is <= 0 and the exponentials of each row sum to 1.
type LogSoftmax struct{}

// NewLogSoftmax creates a new LogSoftmax module.
func NewLogSoftmax() *LogSoftmax {
	return &LogSoftmax{}
}

// Forward applies row-wise log-softmax.
func (l *LogSoftmax) Forward(g *autodiff.Graph, input autodiff.Var) (autodiff.Var, error) {
	return g.LogSoftmax(input)
}

// Parameters returns nil (LogSoftmax has no trainable parameters).
func (l *LogSoftmax) Parameters() []*Parameter {
	return nil
}

// SetTraining is a no-op.
func (l *LogSoftmax) SetTraining(bool) {}
