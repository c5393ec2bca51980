package ops

import (
	"math/rand"

	"github.com/pkg/errors"

	"github.com/mukulkrjha/deep-learning-v2-pytorch/internal/tensor"
)

// ErrInvalidProbability is returned for a dropout probability outside [0, 1).
var ErrInvalidProbability = errors.New("dropout probability must be in [0, 1)")

// DropoutOp zeroes each unit with probability p and scales survivors by 1/(1-p).
//
// The mask is drawn once at construction, so backward reuses exactly the
// units the forward pass kept.
type DropoutOp struct {
	mask   *tensor.Tensor // 0 or 1/(1-p)
	output *tensor.Tensor
}

// NewDropoutOp draws a mask from rng and applies it to input.
func NewDropoutOp(input *tensor.Tensor, p float64, rng *rand.Rand) (*DropoutOp, error) {
	if p < 0 || p >= 1 {
		return nil, errors.Wrapf(ErrInvalidProbability, "got %v", p)
	}

	scale := 1 / (1 - p)
	mask := tensor.ZerosLike(input)
	maskData := mask.Data()
	for i := range maskData {
		if rng.Float64() >= p {
			maskData[i] = scale
		}
	}

	out := input.Clone()
	outData := out.Data()
	for i := range outData {
		outData[i] *= maskData[i]
	}

	return &DropoutOp{mask: mask, output: out}, nil
}

// Name returns "dropout".
func (op *DropoutOp) Name() string { return "dropout" }

// Output returns the masked input.
func (op *DropoutOp) Output() *tensor.Tensor { return op.output }

// Mask returns the applied mask.
func (op *DropoutOp) Mask() *tensor.Tensor { return op.mask }

// Backward multiplies the output gradient by the mask.
func (op *DropoutOp) Backward(outputGrad *tensor.Tensor) []*tensor.Tensor {
	grad := outputGrad.Clone()
	gradData := grad.Data()
	for i, m := range op.mask.Data() {
		gradData[i] *= m
	}
	return []*tensor.Tensor{grad}
}
