package nn

import (
	"github.com/mukulkrjha/deep-learning-v2-pytorch/internal/autodiff"
	"github.com/mukulkrjha/deep-learning-v2-pytorch/internal/autodiff/ops"
)

// ErrLabelOutOfRange is returned when a label falls outside [0, classes).
var ErrLabelOutOfRange = ops.ErrLabelOutOfRange

// Loss maps model output and true labels to a scalar cost.
type Loss interface {
	Forward(g *autodiff.Graph, output autodiff.Var, labels []int) (autodiff.Var, error)
}

// NLLLoss computes the mean negative log-likelihood.
//
// For each example it takes the log-probability at the true label, negates
// it, and averages over the batch. The input MUST already be
// log-probabilities (the output of LogSoftmax). Raw scores produce a
// valid-looking but wrong value; use CrossEntropyLoss for those.
//
// Example:
//
//	criterion := nn.NewNLLLoss()
//	logp, _ := model.Forward(g, g.Input(batch.Inputs))
//	loss, err := criterion.Forward(g, logp, batch.Labels)
type NLLLoss struct{}

// NewNLLLoss creates a new NLL loss.
func NewNLLLoss() *NLLLoss {
	return &NLLLoss{}
}

// Forward computes the loss. Returns ErrLabelOutOfRange for invalid labels.
func (l *NLLLoss) Forward(g *autodiff.Graph, logProbs autodiff.Var, labels []int) (autodiff.Var, error) {
	return g.NLL(logProbs, labels)
}

// CrossEntropyLoss combines LogSoftmax and NLLLoss for models that output
// raw scores (logits).
//
//	CE(logits, y) = NLL(LogSoftmax(logits), y)
type CrossEntropyLoss struct{}

// NewCrossEntropyLoss creates a new cross-entropy loss.
func NewCrossEntropyLoss() *CrossEntropyLoss {
	return &CrossEntropyLoss{}
}

// Forward computes the loss on raw scores.
func (l *CrossEntropyLoss) Forward(g *autodiff.Graph, logits autodiff.Var, labels []int) (autodiff.Var, error) {
	logp, err := g.LogSoftmax(logits)
	if err != nil {
		return autodiff.Var{}, err
	}
	return g.NLL(logp, labels)
}
