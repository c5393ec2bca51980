// Package autodiff implements reverse-mode automatic differentiation over an
// explicit, per-step computation graph.
//
// Architecture:
//   - Graph: an arena of operation records built during one forward pass
//   - Var: a handle to a node in the arena
//   - Leaf: a parameter whose gradient accumulator receives backward results
//   - Mode: the scoped gradient-tracking switch consulted while recording
//
// Nodes reference their parents by arena index. A parent is always appended
// before its children, so walking the arena from the loss towards index 0 is
// a valid reverse topological order. A graph supports exactly one Backward;
// afterwards its records are released and the next step builds a new graph.
//
// Usage:
//
//	g := autodiff.NewGraph(mode)
//	x := g.Input(batch)
//	h, _ := g.Affine(x, g.Param(weight), g.Param(bias))
//	logp, _ := g.LogSoftmax(h)
//	loss, _ := g.NLL(logp, labels)
//	err := g.Backward(loss) // weight and bias now hold accumulated gradients
package autodiff

import (
	"math/rand"

	"github.com/pkg/errors"

	"github.com/mukulkrjha/deep-learning-v2-pytorch/internal/autodiff/ops"
	"github.com/mukulkrjha/deep-learning-v2-pytorch/internal/tensor"
)

// Leaf is a trainable value that participates in the graph.
//
// AccumulateGrad must add grad into the existing accumulator rather than
// replace it; clearing accumulators is the optimizer's job.
type Leaf interface {
	Value() *tensor.Tensor
	AccumulateGrad(grad *tensor.Tensor) error
}

// Var is a handle to a value computed in a Graph.
type Var struct {
	g     *Graph
	id    int
	value *tensor.Tensor
}

// Value returns the forward value. It stays valid after Backward.
func (v Var) Value() *tensor.Tensor {
	return v.value
}

// Graph records operations for one forward/backward pass.
type Graph struct {
	mode     *Mode
	nodes    []node
	consumed bool
}

type node struct {
	op      ops.Operation // nil for inputs and leaves
	parents []int
	leaf    Leaf
	tracked bool // a gradient path to some leaf runs through this node
}

// NewGraph creates an empty graph that records according to mode.
// A nil mode means tracking is always enabled.
func NewGraph(mode *Mode) *Graph {
	if mode == nil {
		mode = NewMode()
	}
	return &Graph{
		mode:  mode,
		nodes: make([]node, 0, 16),
	}
}

// Mode returns the graph's gradient-tracking mode.
func (g *Graph) Mode() *Mode {
	return g.mode
}

// Len returns the number of nodes in the arena.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Consumed reports whether Backward has already run on this graph.
func (g *Graph) Consumed() bool {
	return g.consumed
}

// Input adds a constant value (e.g. a batch of features) to the graph.
func (g *Graph) Input(t *tensor.Tensor) Var {
	return g.push(node{}, t)
}

// Param adds a trainable leaf. Its gradient is accumulated on Backward
// if tracking is enabled now.
func (g *Graph) Param(leaf Leaf) Var {
	return g.push(node{leaf: leaf, tracked: g.mode.Enabled()}, leaf.Value())
}

// Affine records y = xW + b.
func (g *Graph) Affine(x, w, b Var) (Var, error) {
	if err := g.own(x, w, b); err != nil {
		return Var{}, err
	}
	op, err := ops.NewAffineOp(x.value, w.value, b.value)
	if err != nil {
		return Var{}, err
	}
	return g.record(op, x, w, b), nil
}

// ReLU records max(0, x).
func (g *Graph) ReLU(x Var) (Var, error) {
	if err := g.own(x); err != nil {
		return Var{}, err
	}
	return g.record(ops.NewReLUOp(x.value), x), nil
}

// LogSoftmax records the row-wise log-softmax of x.
func (g *Graph) LogSoftmax(x Var) (Var, error) {
	if err := g.own(x); err != nil {
		return Var{}, err
	}
	return g.record(ops.NewLogSoftmaxOp(x.value), x), nil
}

// Dropout records x masked with drop probability p drawn from rng.
func (g *Graph) Dropout(x Var, p float64, rng *rand.Rand) (Var, error) {
	if err := g.own(x); err != nil {
		return Var{}, err
	}
	op, err := ops.NewDropoutOp(x.value, p, rng)
	if err != nil {
		return Var{}, err
	}
	return g.record(op, x), nil
}

// NLL records the mean negative log-likelihood of labels under logProbs.
func (g *Graph) NLL(logProbs Var, labels []int) (Var, error) {
	if err := g.own(logProbs); err != nil {
		return Var{}, err
	}
	op, err := ops.NewNLLOp(logProbs.value, labels)
	if err != nil {
		return Var{}, err
	}
	return g.record(op, logProbs), nil
}

// Backward propagates d(loss)/d(loss) = 1 back through the graph and
// accumulates the result into every reachable leaf.
//
// Leaves not on a path to loss receive nothing. The graph is consumed
// afterwards: a second call returns ErrGraphConsumed.
func (g *Graph) Backward(loss Var) error {
	if loss.g != g {
		return ErrForeignVar
	}
	if g.consumed {
		return ErrGraphConsumed
	}
	if loss.value.Rows() != 1 || loss.value.Cols() != 1 {
		return errors.Wrapf(ErrNotScalar, "loss shape %v", loss.value.Shape())
	}
	if !g.nodes[loss.id].tracked {
		return ErrNotTracked
	}

	grads := make([]*tensor.Tensor, loss.id+1)
	grads[loss.id] = tensor.Scalar(1)

	for i := loss.id; i >= 0; i-- {
		grad := grads[i]
		if grad == nil {
			continue
		}
		grads[i] = nil
		n := g.nodes[i]

		if n.leaf != nil {
			if err := n.leaf.AccumulateGrad(grad); err != nil {
				return errors.Wrapf(err, "backward: accumulate leaf %d", i)
			}
			continue
		}
		if n.op == nil {
			continue
		}

		inputGrads := n.op.Backward(grad)
		for j, parent := range n.parents {
			if j >= len(inputGrads) || inputGrads[j] == nil || !g.nodes[parent].tracked {
				continue
			}
			if existing := grads[parent]; existing != nil {
				if err := existing.AddInPlace(inputGrads[j]); err != nil {
					return errors.Wrapf(err, "backward: %s input %d", n.op.Name(), j)
				}
			} else {
				grads[parent] = inputGrads[j]
			}
		}
	}

	g.consumed = true
	g.nodes = nil
	return nil
}

// own checks that every var belongs to g and that g is still usable.
func (g *Graph) own(vars ...Var) error {
	if g.consumed {
		return ErrGraphConsumed
	}
	for _, v := range vars {
		if v.g != g {
			return ErrForeignVar
		}
	}
	return nil
}

// record appends op with the given inputs. The node is tracked only when
// tracking is enabled and at least one input lies on a gradient path.
func (g *Graph) record(op ops.Operation, inputs ...Var) Var {
	tracked := false
	if g.mode.Enabled() {
		for _, in := range inputs {
			if g.nodes[in.id].tracked {
				tracked = true
				break
			}
		}
	}
	if !tracked {
		return g.push(node{}, op.Output())
	}

	parents := make([]int, len(inputs))
	for i, in := range inputs {
		parents[i] = in.id
	}
	return g.push(node{op: op, parents: parents, tracked: true}, op.Output())
}

func (g *Graph) push(n node, value *tensor.Tensor) Var {
	g.nodes = append(g.nodes, n)
	return Var{g: g, id: len(g.nodes) - 1, value: value}
}
