package nn

import (
	"math/rand"

	"github.com/pkg/errors"

	"github.com/mukulkrjha/deep-learning-v2-pytorch/internal/autodiff"
	"github.com/mukulkrjha/deep-learning-v2-pytorch/internal/tensor"
)

// Linear implements a fully connected (dense) layer.
//
// Performs the transformation: y = x @ W + b
// where:
//   - x is the input tensor with shape [batch_size, in_features]
//   - W is the weight matrix with shape [in_features, out_features]
//   - b is the bias row with shape [1, out_features]
//   - y is the output tensor with shape [batch_size, out_features]
//
// Weights are initialized using Xavier/Glorot initialization.
// Biases are initialized to zeros.
type Linear struct {
	inFeatures  int
	outFeatures int
	weight      *Parameter // [in_features, out_features]
	bias        *Parameter // [1, out_features]
}

// NewLinear creates a new Linear layer drawing its initial weights from rng.
//
// Panics if either size is not positive.
func NewLinear(inFeatures, outFeatures int, rng *rand.Rand) *Linear {
	weightShape := tensor.Shape{inFeatures, outFeatures}
	return &Linear{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      NewParameter("weight", Xavier(inFeatures, outFeatures, weightShape, rng)),
		bias:        NewParameter("bias", Zeros(tensor.Shape{1, outFeatures})),
	}
}

// Forward computes x @ W + b.
//
// Returns tensor.ErrShapeMismatch if the input width differs from InFeatures.
func (l *Linear) Forward(g *autodiff.Graph, input autodiff.Var) (autodiff.Var, error) {
	out, err := g.Affine(input, g.Param(l.weight), g.Param(l.bias))
	if err != nil {
		return autodiff.Var{}, errors.Wrapf(err, "linear %d->%d", l.inFeatures, l.outFeatures)
	}
	return out, nil
}

// Parameters returns [weight, bias].
func (l *Linear) Parameters() []*Parameter {
	return []*Parameter{l.weight, l.bias}
}

// SetTraining is a no-op; Linear behaves the same in both modes.
func (l *Linear) SetTraining(bool) {}

// Weight returns the weight parameter.
func (l *Linear) Weight() *Parameter {
	return l.weight
}

// Bias returns the bias parameter.
func (l *Linear) Bias() *Parameter {
	return l.bias
}

// InFeatures returns the number of input features.
func (l *Linear) InFeatures() int {
	return l.inFeatures
}

// OutFeatures returns the number of output features.
func (l *Linear) OutFeatures() int {
	return l.outFeatures
}
