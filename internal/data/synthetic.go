package data

import (
	"math/rand"

	"github.com/pkg/errors"
)

// SyntheticConfig describes a Gaussian-mixture classification problem.
type SyntheticConfig struct {
	Samples  int
	Features int
	Classes  int
	// Separation scales the random class centres. Default 2.
	Separation float64
	// Spread is the per-feature standard deviation around a centre. Default 1.
	Spread float64
	Seed   int64
}

// Synthetic draws a balanced dataset with one Gaussian cluster per class.
// Example i belongs to class i % Classes.
func Synthetic(cfg SyntheticConfig) (*Dataset, error) {
	if cfg.Samples <= 0 || cfg.Features <= 0 || cfg.Classes <= 0 {
		return nil, errors.Errorf("synthetic: samples, features and classes must be positive, got %d/%d/%d",
			cfg.Samples, cfg.Features, cfg.Classes)
	}
	if cfg.Separation == 0 {
		cfg.Separation = 2
	}
	if cfg.Spread == 0 {
		cfg.Spread = 1
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	centres := make([][]float64, cfg.Classes)
	for c := range centres {
		centres[c] = make([]float64, cfg.Features)
		for j := range centres[c] {
			centres[c][j] = cfg.Separation * rng.NormFloat64()
		}
	}

	features := make([][]float64, cfg.Samples)
	labels := make([]int, cfg.Samples)
	for i := range features {
		label := i % cfg.Classes
		row := make([]float64, cfg.Features)
		for j := range row {
			row[j] = centres[label][j] + cfg.Spread*rng.NormFloat64()
		}
		features[i] = row
		labels[i] = label
	}
	return NewDataset(features, labels, cfg.Classes)
}
