package nn

import (
	"math/rand"

	"github.com/pkg/errors"

	"github.com/mukulkrjha/deep-learning-v2-pytorch/internal/autodiff/ops"
)

// MLPConfig describes a feed-forward classifier.
type MLPConfig struct {
	// Sizes lists the layer widths from input to classes,
	// e.g. {784, 128, 10} or {784, 256, 128, 64, 10}.
	Sizes []int

	// Dropout is the drop probability applied after every hidden activation.
	// Zero disables dropout.
	Dropout float64

	// Rng draws initial weights and dropout masks. Nil uses a fixed seed.
	Rng *rand.Rand
}

// NewMLP builds Linear -> ReLU [-> Dropout] ... -> Linear -> LogSoftmax.
//
// The output rows are log-probabilities, ready for NLLLoss.
func NewMLP(cfg MLPConfig) (*Sequential, error) {
	if len(cfg.Sizes) < 2 {
		return nil, errors.Errorf("mlp: need at least input and output sizes, got %v", cfg.Sizes)
	}
	for i, n := range cfg.Sizes {
		if n <= 0 {
			return nil, errors.Errorf("mlp: size %d is %d (must be > 0)", i, n)
		}
	}
	if cfg.Dropout < 0 || cfg.Dropout >= 1 {
		return nil, errors.Wrapf(ops.ErrInvalidProbability, "mlp: dropout %v", cfg.Dropout)
	}
	rng := cfg.Rng
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}

	var layers []Layer
	last := len(cfg.Sizes) - 2
	for i := 0; i <= last; i++ {
		layers = append(layers, NewLinear(cfg.Sizes[i], cfg.Sizes[i+1], rng))
		if i == last {
			break
		}
		layers = append(layers, NewReLU())
		if cfg.Dropout > 0 {
			d, err := NewDropout(cfg.Dropout, rng)
			if err != nil {
				return nil, err
			}
			layers = append(layers, d)
		}
	}
	layers = append(layers, NewLogSoftmax())

	return NewSequential(layers...)
}
