package trainer

import (
	"bytes"
	"context"
	"log"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mukulkrjha/deep-learning-v2-pytorch/internal/autodiff"
	"github.com/mukulkrjha/deep-learning-v2-pytorch/internal/data"
	"github.com/mukulkrjha/deep-learning-v2-pytorch/internal/nn"
	"github.com/mukulkrjha/deep-learning-v2-pytorch/internal/optim"
	"github.com/mukulkrjha/deep-learning-v2-pytorch/internal/tensor"
)

func newMLP(t *testing.T, dropout float64, sizes ...int) *nn.Sequential {
	t.Helper()
	model, err := nn.NewMLP(nn.MLPConfig{Sizes: sizes, Dropout: dropout, Rng: rand.New(rand.NewSource(7))})
	require.NoError(t, err)
	return model
}

func newSession(t *testing.T, model *nn.Sequential, opt optim.Optimizer, opts ...Option) *Session {
	t.Helper()
	s, err := New(model, opt, nn.NewNLLLoss(), opts...)
	require.NoError(t, err)
	return s
}

func randomBatch(t *testing.T, n, width, classes int, seed int64) data.Batch {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	labels := make([]int, n)
	for i := range labels {
		labels[i] = i % classes
	}
	b, err := data.NewBatch(tensor.Uniform(tensor.Shape{n, width}, 0, 1, rng), labels)
	require.NoError(t, err)
	return b
}

func loaderOf(t *testing.T, b data.Batch, classes, batchSize int) *data.Loader {
	t.Helper()
	features := make([][]float64, b.Size())
	for i := range features {
		features[i] = append([]float64(nil), b.Inputs.Row(i)...)
	}
	ds, err := data.NewDataset(features, b.Labels, classes)
	require.NoError(t, err)
	l, err := data.NewLoader(ds, data.LoaderConfig{BatchSize: batchSize})
	require.NoError(t, err)
	return l
}

func TestTrainStep_LowersLoss(t *testing.T) {
	model := newMLP(t, 0, 784, 128, 10)
	opt := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.01})
	s := newSession(t, model, opt)
	batch := randomBatch(t, 4, 784, 10, 1)

	before, err := s.TrainStep(batch)
	require.NoError(t, err)
	after, err := s.TrainStep(batch)
	require.NoError(t, err)

	assert.Less(t, after, before)
	assert.Equal(t, 2, s.Steps())
}

func TestTrainStep_ChangesParameters(t *testing.T) {
	model := newMLP(t, 0, 4, 3)
	opt := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.1})
	s := newSession(t, model, opt)

	w := model.Parameters()[0]
	before := w.Value().Clone()
	_, err := s.TrainStep(randomBatch(t, 6, 4, 3, 2))
	require.NoError(t, err)

	assert.False(t, before.EqualApprox(w.Value(), 1e-12))
}

// recordingOptimizer captures gradients instead of updating parameters.
type recordingOptimizer struct {
	params   []*nn.Parameter
	zero     bool
	captured [][]float64
}

func (o *recordingOptimizer) Step() error {
	g := o.params[0].Grad()
	o.captured = append(o.captured, append([]float64(nil), g.Data()...))
	return nil
}

func (o *recordingOptimizer) ZeroGrad() {
	if o.zero {
		for _, p := range o.params {
			p.ZeroGrad()
		}
	}
}

func (o *recordingOptimizer) LR() float64   { return 0 }
func (o *recordingOptimizer) SetLR(float64) {}

func TestTrainStep_ZeroGradBeforeBackward(t *testing.T) {
	batch := randomBatch(t, 5, 6, 3, 3)

	run := func(zero bool) [][]float64 {
		model := newMLP(t, 0, 6, 4, 3)
		opt := &recordingOptimizer{params: model.Parameters(), zero: zero}
		s := newSession(t, model, opt)
		for i := 0; i < 2; i++ {
			_, err := s.TrainStep(batch)
			require.NoError(t, err)
		}
		return opt.captured
	}

	cleared := run(true)
	assert.InDeltaSlice(t, cleared[0], cleared[1], 1e-12, "zeroed: each step sees one batch gradient")

	accumulated := run(false)
	require.InDeltaSlice(t, cleared[0], accumulated[0], 1e-12)
	for i, g := range cleared[0] {
		assert.InDelta(t, 2*g, accumulated[1][i], 1e-12, "without zeroing the second backward adds")
	}
}

func TestTrainStep_Errors(t *testing.T) {
	model := newMLP(t, 0, 4, 3)
	s := newSession(t, model, optim.NewSGD(model.Parameters(), optim.SGDConfig{}))

	t.Run("label out of range", func(t *testing.T) {
		b, err := data.NewBatch(tensor.Zeros(tensor.Shape{2, 4}), []int{0, 3})
		require.NoError(t, err)
		_, err = s.TrainStep(b)
		assert.True(t, errors.Is(err, nn.ErrLabelOutOfRange))
	})
	t.Run("width mismatch", func(t *testing.T) {
		_, err := s.TrainStep(randomBatch(t, 2, 5, 3, 1))
		assert.True(t, errors.Is(err, tensor.ErrShapeMismatch))
	})
	t.Run("tracking disabled", func(t *testing.T) {
		err := s.Mode.NoGrad(func() error {
			_, err := s.TrainStep(randomBatch(t, 2, 4, 3, 1))
			return err
		})
		assert.True(t, errors.Is(err, autodiff.ErrNotTracked))
		assert.True(t, s.Mode.Enabled())
	})
}

func TestEvaluate_UntrainedAccuracyIsChance(t *testing.T) {
	model := newMLP(t, 0, 784, 128, 10)
	s := newSession(t, model, optim.NewSGD(model.Parameters(), optim.SGDConfig{}))
	src := loaderOf(t, randomBatch(t, 1000, 784, 10, 11), 10, 100)

	res, err := s.Evaluate(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, 1000, res.Total)
	assert.InDelta(t, 0.1, res.Accuracy, 0.06)
	assert.Greater(t, res.Loss, 0.0)
}

func TestEvaluate_IdempotentAndSideEffectFree(t *testing.T) {
	model := newMLP(t, 0.5, 8, 16, 4)
	s := newSession(t, model, optim.NewSGD(model.Parameters(), optim.SGDConfig{}))
	src := loaderOf(t, randomBatch(t, 30, 8, 4, 5), 4, 7)

	first, err := s.Evaluate(context.Background(), src)
	require.NoError(t, err)
	second, err := s.Evaluate(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	for _, p := range model.Parameters() {
		assert.Nil(t, p.Grad(), "%s received a gradient during evaluation", p.Name())
	}
}

func TestEvaluate_RestoresModes(t *testing.T) {
	model := newMLP(t, 0.2, 4, 8, 3)
	s := newSession(t, model, optim.NewSGD(model.Parameters(), optim.SGDConfig{}))
	src := loaderOf(t, randomBatch(t, 10, 4, 3, 1), 3, 4)

	require.True(t, model.Training())
	_, err := s.Evaluate(context.Background(), src)
	require.NoError(t, err)
	assert.True(t, model.Training())
	assert.True(t, s.Mode.Enabled())

	model.Eval()
	_, err = s.Evaluate(context.Background(), src)
	require.NoError(t, err)
	assert.False(t, model.Training())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	model.Train()
	_, err = s.Evaluate(ctx, src)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.True(t, model.Training())
	assert.True(t, s.Mode.Enabled())
}

func TestFit_LearnsSyntheticClusters(t *testing.T) {
	ds, err := data.Synthetic(data.SyntheticConfig{Samples: 300, Features: 10, Classes: 3, Seed: 4})
	require.NoError(t, err)
	trainDS, valDS, err := ds.Split(0.2, 4)
	require.NoError(t, err)
	train, err := data.NewLoader(trainDS, data.LoaderConfig{BatchSize: 16, Shuffle: true, Seed: 4})
	require.NoError(t, err)
	val, err := data.NewLoader(valDS, data.LoaderConfig{BatchSize: 32})
	require.NoError(t, err)

	model := newMLP(t, 0.1, 10, 16, 3)
	opt := optim.NewAdam(model.Parameters(), optim.AdamConfig{LR: 0.01})
	var logs bytes.Buffer
	s := newSession(t, model, opt, WithLogger(log.New(&logs, "", 0)), WithLogEvery(5))

	history, err := s.Fit(context.Background(), train, val, 15)
	require.NoError(t, err)
	require.Len(t, history, 15)
	assert.Equal(t, 15, s.Epoch())

	for i, h := range history {
		assert.Equal(t, i+1, h.Train.Epoch)
		assert.Equal(t, 240, h.Train.Examples)
		assert.Equal(t, 15, h.Train.Batches)
		require.NotNil(t, h.Val)
	}
	assert.Less(t, history[14].Train.Loss, history[0].Train.Loss)
	assert.Greater(t, history[14].Val.Accuracy, 0.9)

	out := logs.String()
	assert.Contains(t, out, "session="+s.ID.String())
	assert.Contains(t, out, "val_acc=")
	assert.Contains(t, out, "examples_per_sec=")
}

func TestFit_NoValidation(t *testing.T) {
	model := newMLP(t, 0, 4, 3)
	s := newSession(t, model, optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.1}))
	src := loaderOf(t, randomBatch(t, 9, 4, 3, 1), 3, 4)

	history, err := s.Fit(context.Background(), src, nil, 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Nil(t, history[1].Val)
	assert.Equal(t, 3, history[1].Train.Batches)

	_, err = s.Fit(context.Background(), src, nil, 0)
	assert.Error(t, err)
}

func TestFit_Cancelled(t *testing.T) {
	model := newMLP(t, 0, 4, 3)
	s := newSession(t, model, optim.NewSGD(model.Parameters(), optim.SGDConfig{}))
	src := loaderOf(t, randomBatch(t, 8, 4, 3, 1), 3, 4)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	history, err := s.Fit(ctx, src, nil, 3)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, history)
	assert.Equal(t, 0, s.Epoch())
	assert.Equal(t, 0, s.Steps())
}

func TestNew_RequiresComponents(t *testing.T) {
	model := newMLP(t, 0, 4, 3)
	_, err := New(model, nil, nn.NewNLLLoss())
	assert.Error(t, err)

	mode := autodiff.NewMode()
	s, err := New(model, optim.NewSGD(model.Parameters(), optim.SGDConfig{}), nn.NewNLLLoss(), WithMode(mode))
	require.NoError(t, err)
	assert.Same(t, mode, s.Mode)
}
