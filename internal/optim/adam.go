package optim

import (
	"math"

	"github.com/pkg/errors"

	"github.com/mukulkrjha/deep-learning-v2-pytorch/internal/nn"
	"github.com/mukulkrjha/deep-learning-v2-pytorch/internal/tensor"
)

// Adam implements the Adam (Adaptive Moment Estimation) optimizer.
//
// Update rule:
//
//	m_t = beta1 * m_{t-1} + (1-beta1) * gradient       // First moment
//	v_t = beta2 * v_{t-1} + (1-beta2) * gradient²      // Second moment
//	m_hat = m_t / (1 - beta1^t)                        // Bias correction
//	v_hat = v_t / (1 - beta2^t)                        // Bias correction
//	param = param - lr * m_hat / (sqrt(v_hat) + eps)  // Parameter update
//
// Reference: "Adam: A Method for Stochastic Optimization" (Kingma & Ba, 2014)
//
// Example:
//
//	optimizer := optim.NewAdam(model.Parameters(), optim.AdamConfig{
//	    LR:    0.001,
//	    Betas: [2]float64{0.9, 0.999},
//	    Eps:   1e-8,
//	})
type Adam struct {
	params []*nn.Parameter
	lr     float64
	beta1  float64
	beta2  float64
	eps    float64
	t      int                              // Timestep for bias correction
	m      map[*nn.Parameter]*tensor.Tensor // First moment estimates
	v      map[*nn.Parameter]*tensor.Tensor // Second moment estimates
}

// AdamConfig holds configuration for Adam optimizer.
type AdamConfig struct {
	LR    float64    // Learning rate (default: 0.001)
	Betas [2]float64 // Coefficients for computing running averages (default: [0.9, 0.999])
	Eps   float64    // Term for numerical stability (default: 1e-8)
}

// NewAdam creates a new Adam optimizer.
//
// Default hyperparameters:
//   - LR: 0.001
//   - Beta1: 0.9
//   - Beta2: 0.999
//   - Eps: 1e-8
func NewAdam(params []*nn.Parameter, config AdamConfig) *Adam {
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Betas[0] == 0 {
		config.Betas[0] = 0.9
	}
	if config.Betas[1] == 0 {
		config.Betas[1] = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}

	return &Adam{
		params: params,
		lr:     config.LR,
		beta1:  config.Betas[0],
		beta2:  config.Betas[1],
		eps:    config.Eps,
		m:      make(map[*nn.Parameter]*tensor.Tensor),
		v:      make(map[*nn.Parameter]*tensor.Tensor),
	}
}

// Step performs a single optimization step using Adam algorithm.
//
// When no parameter has a gradient the call is a no-op and the timestep
// does not advance.
func (a *Adam) Step() error {
	if !a.anyGrad() {
		return nil
	}
	a.t++

	biasCorrection1 := 1.0 - math.Pow(a.beta1, float64(a.t))
	biasCorrection2 := 1.0 - math.Pow(a.beta2, float64(a.t))

	for _, param := range a.params {
		grad := param.Grad()
		if grad == nil {
			continue
		}
		if !grad.Shape().Equal(param.Value().Shape()) {
			return errors.Wrapf(tensor.ErrShapeMismatch, "adam: parameter %q", param.Name())
		}

		m, ok := a.m[param]
		if !ok {
			m = tensor.ZerosLike(param.Value())
			a.m[param] = m
		}
		v, ok := a.v[param]
		if !ok {
			v = tensor.ZerosLike(param.Value())
			a.v[param] = v
		}

		a.updateParameter(param.Value().Data(), grad.Data(), m.Data(), v.Data(), biasCorrection1, biasCorrection2)
	}
	return nil
}

// updateParameter performs Adam update for a single parameter.
func (a *Adam) updateParameter(paramData, gradData, mData, vData []float64, biasCorrection1, biasCorrection2 float64) {
	for i := range paramData {
		g := gradData[i]

		mData[i] = a.beta1*mData[i] + (1.0-a.beta1)*g
		vData[i] = a.beta2*vData[i] + (1.0-a.beta2)*g*g

		mHat := mData[i] / biasCorrection1
		vHat := vData[i] / biasCorrection2

		paramData[i] -= a.lr * mHat / (math.Sqrt(vHat) + a.eps)
	}
}

func (a *Adam) anyGrad() bool {
	for _, p := range a.params {
		if p.Grad() != nil {
			return true
		}
	}
	return false
}

// ZeroGrad clears gradients for all parameters.
func (a *Adam) ZeroGrad() {
	zeroGrad(a.params)
}

// LR returns the current learning rate.
func (a *Adam) LR() float64 {
	return a.lr
}

// SetLR updates the learning rate.
func (a *Adam) SetLR(lr float64) {
	a.lr = lr
}

// Timestep returns the number of updates applied so far.
func (a *Adam) Timestep() int {
	return a.t
}

// Reset discards all moment estimates and the timestep.
func (a *Adam) Reset() {
	a.t = 0
	a.m = make(map[*nn.Parameter]*tensor.Tensor)
	a.v = make(map[*nn.Parameter]*tensor.Tensor)
}
