package nn

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/mukulkrjha/deep-learning-v2-pytorch/internal/tensor"
)

// Argmax returns the index of the largest value in z (the first on ties).
func Argmax(z []float64) int {
	return floats.MaxIdx(z)
}

// CountCorrect returns how many rows of output have their arg-max at the
// true label.
func CountCorrect(output *tensor.Tensor, labels []int) (int, error) {
	if len(labels) != output.Rows() {
		return 0, errors.Wrapf(tensor.ErrShapeMismatch, "accuracy: %d labels for %d rows", len(labels), output.Rows())
	}
	correct := 0
	for i, label := range labels {
		if Argmax(output.Row(i)) == label {
			correct++
		}
	}
	return correct, nil
}

// Accuracy returns the fraction of rows whose arg-max equals the label.
func Accuracy(output *tensor.Tensor, labels []int) (float64, error) {
	correct, err := CountCorrect(output, labels)
	if err != nil {
		return 0, err
	}
	return float64(correct) / float64(len(labels)), nil
}
