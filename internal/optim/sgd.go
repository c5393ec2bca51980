package optim

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/mukulkrjha/deep-learning-v2-pytorch/internal/nn"
	"github.com/mukulkrjha/deep-learning-v2-pytorch/internal/tensor"
)

// SGD implements Stochastic Gradient Descent optimizer with optional momentum.
//
// Update rule without momentum:
//
//	param = param - lr * gradient
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + gradient
//	param = param - lr * velocity
//
// Example:
//
//	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{
//	    LR:       0.01,
//	    Momentum: 0.9,
//	})
type SGD struct {
	params     []*nn.Parameter
	lr         float64
	momentum   float64
	velocities map[*nn.Parameter]*tensor.Tensor
}

// SGDConfig holds configuration for SGD optimizer.
type SGDConfig struct {
	LR       float64 // Learning rate (default: 0.01)
	Momentum float64 // Momentum factor (default: 0.0, range: [0, 1))
}

// NewSGD creates a new SGD optimizer.
func NewSGD(params []*nn.Parameter, config SGDConfig) *SGD {
	if config.LR == 0 {
		config.LR = 0.01
	}

	return &SGD{
		params:     params,
		lr:         config.LR,
		momentum:   config.Momentum,
		velocities: make(map[*nn.Parameter]*tensor.Tensor),
	}
}

// Step performs a single optimization step.
//
// Parameters with no gradient (not in the computation graph) are skipped.
func (s *SGD) Step() error {
	for _, param := range s.params {
		grad := param.Grad()
		if grad == nil {
			continue
		}
		if !grad.Shape().Equal(param.Value().Shape()) {
			return errors.Wrapf(tensor.ErrShapeMismatch, "sgd: parameter %q", param.Name())
		}

		if s.momentum == 0 {
			// param -= lr * grad
			floats.AddScaled(param.Value().Data(), -s.lr, grad.Data())
			continue
		}

		velocity, exists := s.velocities[param]
		if !exists {
			velocity = tensor.ZerosLike(param.Value())
			s.velocities[param] = velocity
		}

		// velocity = momentum * velocity + grad
		v := velocity.Data()
		floats.Scale(s.momentum, v)
		floats.Add(v, grad.Data())

		// param -= lr * velocity
		floats.AddScaled(param.Value().Data(), -s.lr, v)
	}
	return nil
}

// ZeroGrad clears gradients for all parameters.
func (s *SGD) ZeroGrad() {
	zeroGrad(s.params)
}

// LR returns the current learning rate.
func (s *SGD) LR() float64 {
	return s.lr
}

// SetLR updates the learning rate.
func (s *SGD) SetLR(lr float64) {
	s.lr = lr
}

// Momentum returns the momentum factor.
func (s *SGD) Momentum() float64 {
	return s.momentum
}

// Reset discards all velocity buffers.
func (s *SGD) Reset() {
	s.velocities = make(map[*nn.Parameter]*tensor.Tensor)
}
