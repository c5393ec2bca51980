package nn

import (
	"math/rand"

	"github.com/mukulkrjha/deep-learning-v2-pytorch/internal/autodiff"
	"github.com/mukulkrjha/deep-learning-v2-pytorch/internal/autodiff/ops"
)

// Dropout randomly zeroes activations during training.
//
// In train mode each unit is zeroed independently with probability p and the
// surviving units are scaled by 1/(1-p), so the expected activation is
// unchanged. In eval mode the layer is the identity. The mode changes only
// through SetTraining.
type Dropout struct {
	p        float64
	rng      *rand.Rand
	training bool
}

// NewDropout creates a Dropout layer in train mode.
//
// Returns ops.ErrInvalidProbability unless 0 <= p < 1. A nil rng gets a
// fixed-seed source.
func NewDropout(p float64, rng *rand.Rand) (*Dropout, error) {
	if p < 0 || p >= 1 {
		return nil, ops.ErrInvalidProbability
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Dropout{p: p, rng: rng, training: true}, nil
}

// Forward masks the input in train mode and passes it through in eval mode.
func (d *Dropout) Forward(g *autodiff.Graph, input autodiff.Var) (autodiff.Var, error) {
	if !d.training || d.p == 0 {
		return input, nil
	}
	return g.Dropout(input, d.p, d.rng)
}

// Parameters returns nil (Dropout has no trainable parameters).
func (d *Dropout) Parameters() []*Parameter {
	return nil
}

// SetTraining switches between masking (true) and identity (false).
func (d *Dropout) SetTraining(training bool) {
	d.training = training
}

// Training reports whether the layer is in train mode.
func (d *Dropout) Training() bool {
	return d.training
}

// P returns the drop probability.
func (d *Dropout) P() float64 {
	return d.p
}
