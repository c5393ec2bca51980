package data

import (
	"math/rand"

	"github.com/pkg/errors"

	"github.com/mukulkrjha/deep-learning-v2-pytorch/internal/tensor"
)

// Dataset is an in-memory labelled dataset. Every feature row has the same
// width and every label lies in [0, Classes).
type Dataset struct {
	Features [][]float64
	Labels   []int
	Classes  int
}

// NewDataset validates and wraps the given examples. The slices are not copied.
func NewDataset(features [][]float64, labels []int, classes int) (*Dataset, error) {
	if len(features) == 0 {
		return nil, ErrEmptyBatch
	}
	if len(features) != len(labels) {
		return nil, errors.Wrapf(tensor.ErrShapeMismatch, "dataset: %d feature rows but %d labels", len(features), len(labels))
	}
	if classes <= 0 {
		return nil, errors.Errorf("dataset: classes must be positive, got %d", classes)
	}
	width := len(features[0])
	if width == 0 {
		return nil, errors.Wrap(tensor.ErrInvalidShape, "dataset: zero-width features")
	}
	for i, row := range features {
		if len(row) != width {
			return nil, errors.Wrapf(tensor.ErrShapeMismatch, "dataset: row %d has %d features, want %d", i, len(row), width)
		}
		if labels[i] < 0 || labels[i] >= classes {
			return nil, errors.Errorf("dataset: label %d at row %d outside [0, %d)", labels[i], i, classes)
		}
	}
	return &Dataset{Features: features, Labels: labels, Classes: classes}, nil
}

// Len returns the number of examples.
func (d *Dataset) Len() int {
	return len(d.Labels)
}

// Width returns the number of features per example.
func (d *Dataset) Width() int {
	if len(d.Features) == 0 {
		return 0
	}
	return len(d.Features[0])
}

// Subset returns a view over the examples at the given indices. Rows are
// shared with d.
func (d *Dataset) Subset(indices []int) *Dataset {
	sub := &Dataset{
		Features: make([][]float64, len(indices)),
		Labels:   make([]int, len(indices)),
		Classes:  d.Classes,
	}
	for i, idx := range indices {
		sub.Features[i] = d.Features[idx]
		sub.Labels[i] = d.Labels[idx]
	}
	return sub
}

// Split shuffles the examples with the given seed and holds out fraction of
// them for validation. Both halves are non-empty.
func (d *Dataset) Split(fraction float64, seed int64) (train, val *Dataset, err error) {
	if fraction <= 0 || fraction >= 1 {
		return nil, nil, errors.Wrapf(ErrInvalidFraction, "got %g", fraction)
	}
	n := d.Len()
	nVal := int(float64(n) * fraction)
	if nVal == 0 || nVal == n {
		return nil, nil, errors.Errorf("split: %d examples too few for fraction %g", n, fraction)
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	return d.Subset(perm[nVal:]), d.Subset(perm[:nVal]), nil
}

// Batch gathers the examples at indices into a Batch.
func (d *Dataset) Batch(indices []int) (Batch, error) {
	if len(indices) == 0 {
		return Batch{}, ErrEmptyBatch
	}
	inputs := tensor.Zeros(tensor.Shape{len(indices), d.Width()})
	labels := make([]int, len(indices))
	for i, idx := range indices {
		copy(inputs.Row(i), d.Features[idx])
		labels[i] = d.Labels[idx]
	}
	return NewBatch(inputs, labels)
}
