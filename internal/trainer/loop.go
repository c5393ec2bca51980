package trainer

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/mukulkrjha/deep-learning-v2-pytorch/internal/autodiff"
	"github.com/mukulkrjha/deep-learning-v2-pytorch/internal/data"
	"github.com/mukulkrjha/deep-learning-v2-pytorch/internal/nn"
)

// EpochStats summarises one training epoch.
type EpochStats struct {
	Epoch    int
	Loss     float64 // mean of the batch losses
	Batches  int
	Examples int
	Duration time.Duration
}

// EvalResult summarises one evaluation sweep.
type EvalResult struct {
	Loss     float64 // mean over examples
	Accuracy float64
	Correct  int
	Total    int
}

// EpochResult is one entry of the history returned by Fit. Val is nil when
// no validation source was given.
type EpochResult struct {
	Train EpochStats
	Val   *EvalResult
}

// TrainStep performs zero-grad, forward, loss, backward and step on one
// batch, in that order, and returns the batch loss.
func (s *Session) TrainStep(batch data.Batch) (float64, error) {
	s.Optimizer.ZeroGrad()

	g := autodiff.NewGraph(s.Mode)
	output, err := s.Model.Forward(g, g.Input(batch.Inputs))
	if err != nil {
		return 0, errors.Wrap(err, "train step: forward")
	}
	loss, err := s.Loss.Forward(g, output, batch.Labels)
	if err != nil {
		return 0, errors.Wrap(err, "train step: loss")
	}
	value, err := loss.Value().Item()
	if err != nil {
		return 0, err
	}
	if err := g.Backward(loss); err != nil {
		return 0, errors.Wrap(err, "train step: backward")
	}
	if err := s.Optimizer.Step(); err != nil {
		return 0, errors.Wrap(err, "train step: optimizer")
	}
	s.step++
	return value, nil
}

// TrainEpoch resets src and trains on every batch it yields. The context is
// checked before each batch.
func (s *Session) TrainEpoch(ctx context.Context, src data.Source) (EpochStats, error) {
	s.Model.Train()
	src.Reset()

	start := time.Now()
	stats := EpochStats{Epoch: s.epoch + 1}
	var lossSum float64
	for {
		if err := ctx.Err(); err != nil {
			return EpochStats{}, err
		}
		fetch := time.Now()
		batch, ok := src.Next()
		if !ok {
			break
		}
		dataTime := time.Since(fetch)

		compute := time.Now()
		loss, err := s.TrainStep(batch)
		if err != nil {
			return EpochStats{}, errors.Wrapf(err, "epoch %d batch %d", stats.Epoch, stats.Batches+1)
		}
		s.window.Record(batch.Size(), dataTime, time.Since(compute), loss)

		lossSum += loss
		stats.Batches++
		stats.Examples += batch.Size()
		if s.logEvery > 0 && s.step%s.logEvery == 0 {
			s.logWindow(stats.Epoch)
		}
	}
	if stats.Batches == 0 {
		return EpochStats{}, ErrEmptySource
	}

	stats.Loss = lossSum / float64(stats.Batches)
	stats.Duration = time.Since(start)
	s.epoch = stats.Epoch
	return stats, nil
}

// Evaluate computes loss and accuracy over src in eval mode with gradient
// tracking disabled. The previous train/eval mode and tracking state are
// restored on return.
func (s *Session) Evaluate(ctx context.Context, src data.Source) (EvalResult, error) {
	if s.Model.Training() {
		s.Model.Eval()
		defer s.Model.Train()
	}

	var res EvalResult
	var lossSum float64
	err := s.Mode.NoGrad(func() error {
		src.Reset()
		for {
			if err := ctx.Err(); err != nil {
				return err
			}
			batch, ok := src.Next()
			if !ok {
				return nil
			}

			g := autodiff.NewGraph(s.Mode)
			output, err := s.Model.Forward(g, g.Input(batch.Inputs))
			if err != nil {
				return errors.Wrap(err, "evaluate: forward")
			}
			loss, err := s.Loss.Forward(g, output, batch.Labels)
			if err != nil {
				return errors.Wrap(err, "evaluate: loss")
			}
			value, err := loss.Value().Item()
			if err != nil {
				return err
			}
			correct, err := nn.CountCorrect(output.Value(), batch.Labels)
			if err != nil {
				return err
			}
			lossSum += value * float64(batch.Size())
			res.Correct += correct
			res.Total += batch.Size()
		}
	})
	if err != nil {
		return EvalResult{}, err
	}
	if res.Total == 0 {
		return EvalResult{}, ErrEmptySource
	}

	res.Loss = lossSum / float64(res.Total)
	res.Accuracy = float64(res.Correct) / float64(res.Total)
	return res, nil
}

// Fit trains for the given number of epochs, evaluating on val after each
// epoch when val is non-nil. It returns the history of completed epochs.
// A cancelled context stops the run between batches; parameters keep the
// updates made so far.
func (s *Session) Fit(ctx context.Context, train, val data.Source, epochs int) ([]EpochResult, error) {
	if epochs <= 0 {
		return nil, errors.Errorf("trainer: epochs must be > 0 (got %d)", epochs)
	}
	s.logger.Printf("session=%s start epochs=%d batches_per_epoch=%d params=%d",
		s.ID, epochs, train.Len(), countParameters(s.Model.Parameters()))

	history := make([]EpochResult, 0, epochs)
	for i := 0; i < epochs; i++ {
		stats, err := s.TrainEpoch(ctx, train)
		if err != nil {
			return history, err
		}
		result := EpochResult{Train: stats}

		if val == nil {
			s.logger.Printf("session=%s epoch=%d train_loss=%.4f examples=%d duration=%s",
				s.ID, stats.Epoch, stats.Loss, stats.Examples, stats.Duration.Round(time.Millisecond))
		} else {
			ev, err := s.Evaluate(ctx, val)
			if err != nil {
				return history, err
			}
			result.Val = &ev
			s.logger.Printf("session=%s epoch=%d train_loss=%.4f val_loss=%.4f val_acc=%.4f examples=%d duration=%s",
				s.ID, stats.Epoch, stats.Loss, ev.Loss, ev.Accuracy, stats.Examples, stats.Duration.Round(time.Millisecond))
		}
		history = append(history, result)
	}
	return history, nil
}

func (s *Session) logWindow(epoch int) {
	snap := s.window.Snapshot()
	s.logger.Printf("session=%s epoch=%d step=%d examples_per_sec=%.1f data_ms=%.2f compute_ms=%.2f loss=%.4f avg_loss=%.4f",
		s.ID, epoch, s.step, snap.ExamplesPerSec, snap.AvgDataMS, snap.AvgComputeMS, snap.LastLoss, snap.AvgLoss)
}

func countParameters(params []*nn.Parameter) int {
	n := 0
	for _, p := range params {
		n += p.NumElements()
	}
	return n
}
