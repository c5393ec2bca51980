// Package optim implements optimization algorithms for training neural networks.
//
// This package provides:
//   - Optimizer interface: Base interface for all optimizers
//   - SGD: Stochastic Gradient Descent with optional momentum
//   - Adam: Adaptive Moment Estimation
//
// Optimizers hold the parameter set they were constructed with and read each
// parameter's gradient accumulator directly.
//
// Example usage:
//
//	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.01})
//
//	for batch := range batches {
//	    optimizer.ZeroGrad()
//	    g := autodiff.NewGraph(mode)
//	    logp, _ := model.Forward(g, g.Input(batch.Inputs))
//	    loss, _ := criterion.Forward(g, logp, batch.Labels)
//	    _ = g.Backward(loss)
//	    _ = optimizer.Step()
//	}
package optim

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/mukulkrjha/deep-learning-v2-pytorch/internal/nn"
)

// Optimizer is the base interface for all optimization algorithms.
type Optimizer interface {
	// Step applies one update to every parameter that has a gradient.
	//
	// Parameters whose accumulator is empty are skipped, so calling Step
	// before any backward pass changes nothing.
	Step() error

	// ZeroGrad clears all parameter gradients.
	//
	// Backward adds into existing gradients; without ZeroGrad once per step
	// gradients from consecutive steps are summed.
	ZeroGrad()

	// LR returns the current learning rate.
	LR() float64

	// SetLR updates the learning rate.
	SetLR(lr float64)
}

// ErrUnknownOptimizer is returned by New for an unsupported name.
var ErrUnknownOptimizer = errors.New("unknown optimizer")

// Config selects and configures an optimizer by name.
type Config struct {
	Name     string     // "sgd" or "adam"
	LR       float64    // Learning rate (0 = optimizer default)
	Momentum float64    // SGD only
	Betas    [2]float64 // Adam only
	Eps      float64    // Adam only
}

// New creates the optimizer named in cfg.
func New(params []*nn.Parameter, cfg Config) (Optimizer, error) {
	switch strings.ToLower(cfg.Name) {
	case "sgd", "":
		return NewSGD(params, SGDConfig{LR: cfg.LR, Momentum: cfg.Momentum}), nil
	case "adam":
		return NewAdam(params, AdamConfig{LR: cfg.LR, Betas: cfg.Betas, Eps: cfg.Eps}), nil
	default:
		return nil, errors.Wrapf(ErrUnknownOptimizer, "%q", cfg.Name)
	}
}

// zeroGrad clears the accumulators of params.
func zeroGrad(params []*nn.Parameter) {
	for _, p := range params {
		p.ZeroGrad()
	}
}
