package autodiff

// Mode is the gradient-tracking switch shared by a training session.
//
// Graphs consult their Mode each time an operation is added: while tracking
// is disabled, operations compute values only and record nothing to
// backpropagate through. Mode is not safe for concurrent use; a session
// drives it from a single goroutine.
//
// Example:
//
//	mode := autodiff.NewMode()
//	err := mode.NoGrad(func() error {
//	    return evaluate(model, batches) // no graph is recorded here
//	})
type Mode struct {
	enabled bool
}

// NewMode returns a Mode with gradient tracking enabled.
func NewMode() *Mode {
	return &Mode{enabled: true}
}

// Enabled reports whether gradient tracking is on.
func (m *Mode) Enabled() bool {
	return m.enabled
}

// Set switches tracking and returns a function that restores the previous value.
//
// Intended for use with defer:
//
//	defer mode.Set(false)()
func (m *Mode) Set(enabled bool) (restore func()) {
	prev := m.enabled
	m.enabled = enabled
	return func() {
		m.enabled = prev
	}
}

// NoGrad runs fn with tracking disabled and restores the previous value on
// return, including when fn returns an error or panics.
func (m *Mode) NoGrad(fn func() error) error {
	defer m.Set(false)()
	return fn()
}

// EnableGrad runs fn with tracking enabled and restores the previous value on return.
func (m *Mode) EnableGrad(fn func() error) error {
	defer m.Set(true)()
	return fn()
}
