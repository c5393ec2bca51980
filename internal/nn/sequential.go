package nn

import (
	"github.com/pkg/errors"

	"github.com/mukulkrjha/deep-learning-v2-pytorch/internal/autodiff"
	"github.com/mukulkrjha/deep-learning-v2-pytorch/internal/tensor"
)

// Sequential is a container module that chains multiple layers together.
//
// Each layer's output becomes the next layer's input. Sequential is the
// model of a training session: it owns the parameters of all its layers and
// carries the train/eval mode flag.
//
// Example:
//
//	model, err := nn.NewSequential(
//	    nn.NewLinear(784, 128, rng),
//	    nn.NewReLU(),
//	    nn.NewLinear(128, 10, rng),
//	    nn.NewLogSoftmax(),
//	)
//
//	logp, err := model.Forward(g, g.Input(batch))
type Sequential struct {
	layers   []Layer
	training bool
}

// NewSequential creates a new Sequential container in train mode.
//
// Returns tensor.ErrShapeMismatch if the output width of one fixed-width
// layer differs from the input width of the next. Layers without fixed
// widths (activations, dropout) pass the width through unchanged.
func NewSequential(layers ...Layer) (*Sequential, error) {
	prevOut, prevIdx := 0, -1
	for i, layer := range layers {
		if layer == nil {
			return nil, errors.Errorf("sequential: layer %d is nil", i)
		}
		fl, ok := layer.(featureLayer)
		if !ok {
			continue
		}
		if prevIdx >= 0 && fl.InFeatures() != prevOut {
			return nil, errors.Wrapf(tensor.ErrShapeMismatch,
				"sequential: layer %d outputs %d features but layer %d expects %d",
				prevIdx, prevOut, i, fl.InFeatures())
		}
		prevOut, prevIdx = fl.OutFeatures(), i
	}

	s := &Sequential{layers: layers}
	s.Train()
	return s, nil
}

// Forward applies all layers in sequence.
func (s *Sequential) Forward(g *autodiff.Graph, input autodiff.Var) (autodiff.Var, error) {
	output := input
	for i, layer := range s.layers {
		var err error
		output, err = layer.Forward(g, output)
		if err != nil {
			return autodiff.Var{}, errors.Wrapf(err, "layer %d", i)
		}
	}
	return output, nil
}

// Infer runs a forward pass on a fresh graph with gradient tracking disabled
// and returns the output values.
func (s *Sequential) Infer(mode *autodiff.Mode, input *tensor.Tensor) (*tensor.Tensor, error) {
	if mode == nil {
		mode = autodiff.NewMode()
	}
	var out *tensor.Tensor
	err := mode.NoGrad(func() error {
		g := autodiff.NewGraph(mode)
		v, err := s.Forward(g, g.Input(input))
		if err != nil {
			return err
		}
		out = v.Value()
		return nil
	})
	return out, err
}

// Parameters returns all trainable parameters from all layers, in layer order.
func (s *Sequential) Parameters() []*Parameter {
	var params []*Parameter
	for _, layer := range s.layers {
		params = append(params, layer.Parameters()...)
	}
	return params
}

// SetTraining sets the mode of every layer.
func (s *Sequential) SetTraining(training bool) {
	s.training = training
	for _, layer := range s.layers {
		layer.SetTraining(training)
	}
}

// Train switches the model to train mode.
func (s *Sequential) Train() {
	s.SetTraining(true)
}

// Eval switches the model to eval mode.
func (s *Sequential) Eval() {
	s.SetTraining(false)
}

// Training reports whether the model is in train mode.
func (s *Sequential) Training() bool {
	return s.training
}

// InFeatures returns the input width of the first fixed-width layer, or 0.
func (s *Sequential) InFeatures() int {
	for _, layer := range s.layers {
		if fl, ok := layer.(featureLayer); ok {
			return fl.InFeatures()
		}
	}
	return 0
}

// OutFeatures returns the output width of the last fixed-width layer, or 0.
func (s *Sequential) OutFeatures() int {
	for i := len(s.layers) - 1; i >= 0; i-- {
		if fl, ok := s.layers[i].(featureLayer); ok {
			return fl.OutFeatures()
		}
	}
	return 0
}

// NumParameters returns the total count of trainable scalars.
func (s *Sequential) NumParameters() int {
	total := 0
	for _, p := range s.Parameters() {
		total += p.NumElements()
	}
	return total
}

// Len returns the number of layers in the sequence.
func (s *Sequential) Len() int {
	return len(s.layers)
}

// Layers returns the layers in order.
func (s *Sequential) Layers() []Layer {
	return s.layers
}
