// Package metrics aggregates per-step training statistics between log lines.
package metrics

import "time"

// Window accumulates timing and loss across multiple training steps.
type Window struct {
	examples int
	data     time.Duration
	compute  time.Duration
	steps    int
	lossSum  float64
	lastLoss float64
}

// Record adds one step: the batch size, time spent fetching the batch, time
// spent in forward/backward/step, and the batch loss.
func (w *Window) Record(batchSize int, dataTime, computeTime time.Duration, loss float64) {
	w.examples += batchSize
	w.data += dataTime
	w.compute += computeTime
	w.steps++
	w.lossSum += loss
	w.lastLoss = loss
}

// Steps returns the number of steps recorded since the last Snapshot.
func (w *Window) Steps() int {
	return w.steps
}

// Snapshot returns aggregated metrics and resets the window.
func (w *Window) Snapshot() Snapshot {
	snap := Snapshot{Steps: w.steps, LastLoss: w.lastLoss}
	total := w.data + w.compute
	if total > 0 {
		snap.ExamplesPerSec = float64(w.examples) / total.Seconds()
	}
	if w.steps > 0 {
		snap.AvgDataMS = (w.data.Seconds() * 1000) / float64(w.steps)
		snap.AvgComputeMS = (w.compute.Seconds() * 1000) / float64(w.steps)
		snap.AvgLoss = w.lossSum / float64(w.steps)
	}

	*w = Window{}
	return snap
}

// Snapshot represents loggable metrics.
type Snapshot struct {
	Steps          int
	ExamplesPerSec float64
	AvgDataMS      float64
	AvgComputeMS   float64
	AvgLoss        float64
	LastLoss       float64
}
