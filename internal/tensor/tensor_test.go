package tensor_test

import (
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mukulkrjha/deep-learning-v2-pytorch/internal/tensor"
)

func TestShape_Validate(t *testing.T) {
	tests := []struct {
		name    string
		shape   tensor.Shape
		wantErr bool
	}{
		{"matrix", tensor.Shape{2, 3}, false},
		{"scalar matrix", tensor.Shape{1, 1}, false},
		{"vector", tensor.Shape{3}, true},
		{"three dims", tensor.Shape{1, 2, 3}, true},
		{"zero rows", tensor.Shape{0, 3}, true},
		{"negative cols", tensor.Shape{2, -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.shape.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tensor.ErrInvalidShape))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestShape_EqualAndClone(t *testing.T) {
	s := tensor.Shape{4, 5}
	c := s.Clone()
	assert.True(t, s.Equal(c))
	c[0] = 7
	assert.False(t, s.Equal(c))
	assert.Equal(t, 20, s.NumElements())
}

func TestFromRows(t *testing.T) {
	x, err := tensor.FromRows([][]float64{{1, 2, 3}, {4, 5, 6}})
	require.NoError(t, err)

	assert.Equal(t, tensor.Shape{2, 3}, x.Shape())
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, x.Data())
	assert.Equal(t, []float64{4, 5, 6}, x.Row(1))
	assert.InDelta(t, 6.0, x.At(1, 2), 1e-12)
}

func TestFromRows_Errors(t *testing.T) {
	_, err := tensor.FromRows(nil)
	assert.True(t, errors.Is(err, tensor.ErrInvalidShape))

	_, err = tensor.FromRows([][]float64{{1, 2}, {3}})
	assert.True(t, errors.Is(err, tensor.ErrShapeMismatch))
}

func TestFromSlice_CopiesData(t *testing.T) {
	data := []float64{1, 2, 3, 4}
	x, err := tensor.FromSlice(data, tensor.Shape{2, 2})
	require.NoError(t, err)

	data[0] = 100
	assert.InDelta(t, 1.0, x.At(0, 0), 1e-12)

	_, err = tensor.FromSlice(data, tensor.Shape{3, 2})
	assert.True(t, errors.Is(err, tensor.ErrShapeMismatch))
}

func TestClone_IsIndependent(t *testing.T) {
	x := tensor.Full(tensor.Shape{2, 2}, 3)
	y := x.Clone()
	y.Set(0, 0, -1)

	assert.InDelta(t, 3.0, x.At(0, 0), 1e-12)
	assert.InDelta(t, -1.0, y.At(0, 0), 1e-12)
}

func TestAddInPlaceAndScale(t *testing.T) {
	x := tensor.Full(tensor.Shape{1, 3}, 1)
	y := tensor.Full(tensor.Shape{1, 3}, 2)

	require.NoError(t, x.AddInPlace(y))
	x.Scale(0.5)
	assert.Equal(t, []float64{1.5, 1.5, 1.5}, x.Data())

	err := x.AddInPlace(tensor.Zeros(tensor.Shape{3, 1}))
	assert.True(t, errors.Is(err, tensor.ErrShapeMismatch))
}

func TestItem(t *testing.T) {
	v, err := tensor.Scalar(2.5).Item()
	require.NoError(t, err)
	assert.InDelta(t, 2.5, v, 1e-12)

	_, err = tensor.Zeros(tensor.Shape{1, 2}).Item()
	assert.True(t, errors.Is(err, tensor.ErrShapeMismatch))
}

func TestRandn_Deterministic(t *testing.T) {
	a := tensor.Randn(tensor.Shape{3, 3}, rand.New(rand.NewSource(7)))
	b := tensor.Randn(tensor.Shape{3, 3}, rand.New(rand.NewSource(7)))
	assert.True(t, a.EqualApprox(b, 0))
}

func TestZeros_PanicsOnInvalidShape(t *testing.T) {
	assert.Panics(t, func() { tensor.Zeros(tensor.Shape{0, 1}) })
}
