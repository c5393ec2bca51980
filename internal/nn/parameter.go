package nn

import (
	"github.com/pkg/errors"

	"github.com/mukulkrjha/deep-learning-v2-pytorch/internal/tensor"
)

// Parameter represents a trainable parameter in a neural network.
//
// Parameters are owned by their layer for the lifetime of the model. The
// gradient accumulator has the same shape as the value; it is nil until the
// first backward pass and is added to, not replaced, by every later one.
// Call ZeroGrad (usually through the optimizer) once per step.
//
// Example:
//
//	weight := nn.NewParameter("weight", tensor.Zeros(tensor.Shape{784, 128}))
//	w := weight.Value()
//	grad := weight.Grad() // nil before backward
type Parameter struct {
	name  string         // e.g. "weight", "bias"
	value *tensor.Tensor // The parameter tensor
	grad  *tensor.Tensor // Accumulated gradient (nil until first backward)
}

// NewParameter creates a new trainable parameter.
func NewParameter(name string, t *tensor.Tensor) *Parameter {
	return &Parameter{
		name:  name,
		value: t,
	}
}

// Name returns the parameter name.
func (p *Parameter) Name() string {
	return p.name
}

// Value returns the parameter tensor. Optimizers update it in place.
func (p *Parameter) Value() *tensor.Tensor {
	return p.value
}

// Grad returns the gradient accumulator.
//
// Returns nil if no gradient has been computed since the last ZeroGrad.
func (p *Parameter) Grad() *tensor.Tensor {
	return p.grad
}

// SetGrad replaces the gradient accumulator.
func (p *Parameter) SetGrad(grad *tensor.Tensor) {
	p.grad = grad
}

// AccumulateGrad adds grad into the accumulator, allocating it on first use.
func (p *Parameter) AccumulateGrad(grad *tensor.Tensor) error {
	if !grad.Shape().Equal(p.value.Shape()) {
		return errors.Wrapf(tensor.ErrShapeMismatch, "parameter %q: gradient shape %v, value shape %v",
			p.name, grad.Shape(), p.value.Shape())
	}
	if p.grad == nil {
		p.grad = grad.Clone()
		return nil
	}
	return p.grad.AddInPlace(grad)
}

// ZeroGrad clears the gradient accumulator.
func (p *Parameter) ZeroGrad() {
	p.grad = nil
}

// NumElements returns the number of scalar values in the parameter.
func (p *Parameter) NumElements() int {
	return p.value.NumElements()
}
