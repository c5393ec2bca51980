// Package trainer drives training and evaluation of a model.
//
// A Session binds one model, one optimizer and one loss together with the
// gradient-tracking Mode they share. Each training step builds a fresh
// graph, runs forward, loss and backward on it, and lets the optimizer
// update the parameters. Evaluation runs in eval mode with tracking off.
package trainer

import (
	"io"
	"log"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/mukulkrjha/deep-learning-v2-pytorch/internal/autodiff"
	"github.com/mukulkrjha/deep-learning-v2-pytorch/internal/metrics"
	"github.com/mukulkrjha/deep-learning-v2-pytorch/internal/nn"
	"github.com/mukulkrjha/deep-learning-v2-pytorch/internal/optim"
)

// ErrEmptySource is returned when a data source yields no batches.
var ErrEmptySource = errors.New("data source yielded no batches")

// Model is what a Session trains. *nn.Sequential implements it.
type Model interface {
	Forward(g *autodiff.Graph, input autodiff.Var) (autodiff.Var, error)
	Parameters() []*nn.Parameter
	Train()
	Eval()
	Training() bool
}

// Session is a training session.
type Session struct {
	ID        uuid.UUID
	Model     Model
	Optimizer optim.Optimizer
	Loss      nn.Loss
	Mode      *autodiff.Mode

	logger   *log.Logger
	logEvery int
	epoch    int
	step     int
	window   metrics.Window
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger for per-step and per-epoch lines. The default
// discards output.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithLogEvery logs throughput and loss every n training steps. Zero
// disables step logging; epoch lines are always written.
func WithLogEvery(n int) Option {
	return func(s *Session) {
		s.logEvery = n
	}
}

// WithMode shares an existing gradient-tracking Mode.
func WithMode(m *autodiff.Mode) Option {
	return func(s *Session) {
		if m != nil {
			s.Mode = m
		}
	}
}

// New creates a session with a fresh ID and tracking enabled.
func New(model Model, opt optim.Optimizer, loss nn.Loss, opts ...Option) (*Session, error) {
	if model == nil || opt == nil || loss == nil {
		return nil, errors.New("trainer: model, optimizer and loss are required")
	}
	s := &Session{
		ID:        uuid.New(),
		Model:     model,
		Optimizer: opt,
		Loss:      loss,
		Mode:      autodiff.NewMode(),
		logger:    log.New(io.Discard, "", 0),
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Epoch returns the number of completed training epochs.
func (s *Session) Epoch() int {
	return s.epoch
}

// Steps returns the number of completed training steps.
func (s *Session) Steps() int {
	return s.step
}
