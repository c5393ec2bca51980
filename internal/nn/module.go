// Package nn implements the layers, model container and losses of a
// feed-forward classifier.
//
// This package provides:
//   - Parameter: trainable tensor with an additive gradient accumulator
//   - Layer: the capability set {Forward, Parameters, SetTraining}
//   - Linear, ReLU, LogSoftmax, Dropout: the supported layer kinds
//   - Sequential: the model, an ordered chain of layers
//   - NLLLoss, CrossEntropyLoss: negative log-likelihood losses
//
// Forward passes take an explicit *autodiff.Graph, so whether gradients are
// tracked is decided by the graph's Mode rather than by ambient state.
package nn

import (
	"github.com/mukulkrjha/deep-learning-v2-pytorch/internal/autodiff"
)

// Layer is the interface implemented by every model component.
//
// Example:
//
//	model, err := nn.NewSequential(
//	    nn.NewLinear(784, 128, rng),
//	    nn.NewReLU(),
//	    nn.NewLinear(128, 10, rng),
//	    nn.NewLogSoftmax(),
//	)
type Layer interface {
	// Forward computes the layer output for a batch [batch_size, features],
	// recording operations on g.
	Forward(g *autodiff.Graph, input autodiff.Var) (autodiff.Var, error)

	// Parameters returns all trainable parameters of this layer.
	// Returns nil for layers without parameters.
	Parameters() []*Parameter

	// SetTraining switches between train mode (true) and eval mode (false).
	// Only layers whose behavior differs between the two act on it.
	SetTraining(training bool)
}

// featureLayer is implemented by layers with fixed input and output widths.
type featureLayer interface {
	InFeatures() int
	OutFeatures() int
}
