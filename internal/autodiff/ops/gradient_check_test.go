package ops_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mukulkrjha/deep-learning-v2-pytorch/internal/autodiff/ops"
	"github.com/mukulkrjha/deep-learning-v2-pytorch/internal/tensor"
)

const (
	fdEpsilon = 1e-6
	fdTol     = 1e-5
)

// weightedSum reduces y to a scalar with fixed weights r, so that dL/dy = r.
func weightedSum(y, r *tensor.Tensor) float64 {
	var s float64
	for i, v := range y.Data() {
		s += v * r.Data()[i]
	}
	return s
}

// checkGradient compares analytic against central finite differences for one input.
func checkGradient(t *testing.T, input *tensor.Tensor, analytic *tensor.Tensor, f func() float64) {
	t.Helper()
	require.True(t, input.Shape().Equal(analytic.Shape()), "gradient shape %v, want %v", analytic.Shape(), input.Shape())

	data := input.Data()
	for i := range data {
		orig := data[i]
		data[i] = orig + fdEpsilon
		plus := f()
		data[i] = orig - fdEpsilon
		minus := f()
		data[i] = orig

		numerical := (plus - minus) / (2 * fdEpsilon)
		assert.InDelta(t, numerical, analytic.Data()[i], fdTol, "element %d", i)
	}
}

func TestAffineOp_Forward(t *testing.T) {
	x, _ := tensor.FromRows([][]float64{{1, 2}})
	w, _ := tensor.FromRows([][]float64{{1, 0, 2}, {0, 1, 3}})
	b, _ := tensor.FromRows([][]float64{{0.5, -0.5, 1}})

	op, err := ops.NewAffineOp(x, w, b)
	require.NoError(t, err)

	assert.Equal(t, []float64{1.5, 1.5, 9}, op.Output().Data())
}

func TestAffineOp_ShapeMismatch(t *testing.T) {
	x := tensor.Zeros(tensor.Shape{2, 3})
	w := tensor.Zeros(tensor.Shape{4, 5})
	b := tensor.Zeros(tensor.Shape{1, 5})

	_, err := ops.NewAffineOp(x, w, b)
	assert.True(t, errors.Is(err, tensor.ErrShapeMismatch))

	_, err = ops.NewAffineOp(tensor.Zeros(tensor.Shape{2, 4}), w, tensor.Zeros(tensor.Shape{1, 4}))
	assert.True(t, errors.Is(err, tensor.ErrShapeMismatch))
}

func TestAffineOp_GradientCheck(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	x := tensor.Randn(tensor.Shape{3, 4}, rng)
	w := tensor.Randn(tensor.Shape{4, 2}, rng)
	b := tensor.Randn(tensor.Shape{1, 2}, rng)
	r := tensor.Randn(tensor.Shape{3, 2}, rng)

	op, err := ops.NewAffineOp(x, w, b)
	require.NoError(t, err)
	grads := op.Backward(r)
	require.Len(t, grads, 3)

	loss := func() float64 {
		o, err := ops.NewAffineOp(x, w, b)
		require.NoError(t, err)
		return weightedSum(o.Output(), r)
	}
	checkGradient(t, x, grads[0], loss)
	checkGradient(t, w, grads[1], loss)
	checkGradient(t, b, grads[2], loss)
}

func TestReLUOp(t *testing.T) {
	x, _ := tensor.FromRows([][]float64{{-2, -0.5, 0.5, 3}})
	op := ops.NewReLUOp(x)
	assert.Equal(t, []float64{0, 0, 0.5, 3}, op.Output().Data())

	grads := op.Backward(tensor.Full(tensor.Shape{1, 4}, 2))
	assert.Equal(t, []float64{0, 0, 2, 2}, grads[0].Data())

	// Forward must not alias the input.
	assert.InDelta(t, -2.0, x.At(0, 0), 1e-12)
}

func TestLogSoftmaxOp_RowsAreLogProbabilities(t *testing.T) {
	x, _ := tensor.FromRows([][]float64{{2, 1, 0.1}, {1000, 1000, 1000}, {-5, 0, 5}})
	op := ops.NewLogSoftmaxOp(x)

	out := op.Output()
	for i := 0; i < out.Rows(); i++ {
		var sum float64
		for _, v := range out.Row(i) {
			assert.LessOrEqual(t, v, 0.0)
			sum += math.Exp(v)
		}
		assert.InDelta(t, 1.0, sum, 1e-9, "row %d", i)
	}
	assert.InDelta(t, -math.Log(3), out.At(1, 0), 1e-9)
}

func TestLogSoftmaxOp_GradientCheck(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	x := tensor.Randn(tensor.Shape{2, 5}, rng)
	r := tensor.Randn(tensor.Shape{2, 5}, rng)

	grads := ops.NewLogSoftmaxOp(x).Backward(r)
	checkGradient(t, x, grads[0], func() float64 {
		return weightedSum(ops.NewLogSoftmaxOp(x).Output(), r)
	})
}

func TestDropoutOp(t *testing.T) {
	x := tensor.Full(tensor.Shape{10, 100}, 1)
	op, err := ops.NewDropoutOp(x, 0.25, rand.New(rand.NewSource(3)))
	require.NoError(t, err)

	kept := 0
	for i, v := range op.Output().Data() {
		m := op.Mask().Data()[i]
		assert.InDelta(t, m, v, 1e-12)
		if v != 0 {
			assert.InDelta(t, 1/(1-0.25), v, 1e-12)
			kept++
		}
	}
	// 1000 units at keep probability 0.75.
	assert.InDelta(t, 750, kept, 60)

	g := op.Backward(tensor.Full(x.Shape(), 1))[0]
	assert.Equal(t, op.Mask().Data(), g.Data())
}

func TestDropoutOp_InvalidProbability(t *testing.T) {
	x := tensor.Zeros(tensor.Shape{1, 1})
	for _, p := range []float64{-0.1, 1, 1.5} {
		_, err := ops.NewDropoutOp(x, p, rand.New(rand.NewSource(1)))
		assert.True(t, errors.Is(err, ops.ErrInvalidProbability), "p=%v", p)
	}
}

func TestNLLOp_Forward(t *testing.T) {
	logp, _ := tensor.FromRows([][]float64{
		{math.Log(0.7), math.Log(0.2), math.Log(0.1)},
		{math.Log(0.1), math.Log(0.1), math.Log(0.8)},
	})
	op, err := ops.NewNLLOp(logp, []int{0, 2})
	require.NoError(t, err)

	want := -(math.Log(0.7) + math.Log(0.8)) / 2
	got, err := op.Output().Item()
	require.NoError(t, err)
	assert.InDelta(t, want, got, 1e-12)
}

func TestNLLOp_Errors(t *testing.T) {
	logp := tensor.Zeros(tensor.Shape{2, 3})

	tests := []struct {
		name   string
		labels []int
		target error
	}{
		{"negative label", []int{0, -1}, ops.ErrLabelOutOfRange},
		{"label equals classes", []int{3, 0}, ops.ErrLabelOutOfRange},
		{"too few labels", []int{0}, tensor.ErrShapeMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ops.NewNLLOp(logp, tt.labels)
			assert.True(t, errors.Is(err, tt.target), "got %v", err)
		})
	}
}

func TestNLLOp_GradientCheck(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	logp := tensor.Randn(tensor.Shape{4, 3}, rng)
	labels := []int{0, 2, 1, 2}

	op, err := ops.NewNLLOp(logp, labels)
	require.NoError(t, err)
	grads := op.Backward(tensor.Scalar(1))

	checkGradient(t, logp, grads[0], func() float64 {
		o, err := ops.NewNLLOp(logp, labels)
		require.NoError(t, err)
		v, _ := o.Output().Item()
		return v
	})
}
