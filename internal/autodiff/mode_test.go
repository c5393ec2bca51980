package autodiff_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/mukulkrjha/deep-learning-v2-pytorch/internal/autodiff"
)

func TestMode_SetRestores(t *testing.T) {
	mode := autodiff.NewMode()
	assert.True(t, mode.Enabled())

	restore := mode.Set(false)
	assert.False(t, mode.Enabled())
	restore()
	assert.True(t, mode.Enabled())
}

func TestMode_NoGradRestoresOnError(t *testing.T) {
	mode := autodiff.NewMode()
	boom := errors.New("boom")

	err := mode.NoGrad(func() error {
		assert.False(t, mode.Enabled())
		return boom
	})
	assert.Equal(t, boom, err)
	assert.True(t, mode.Enabled())
}

func TestMode_NoGradRestoresOnPanic(t *testing.T) {
	mode := autodiff.NewMode()

	assert.Panics(t, func() {
		_ = mode.NoGrad(func() error { panic("boom") })
	})
	assert.True(t, mode.Enabled())
}

func TestMode_Nested(t *testing.T) {
	mode := autodiff.NewMode()

	_ = mode.NoGrad(func() error {
		_ = mode.EnableGrad(func() error {
			assert.True(t, mode.Enabled())
			return nil
		})
		assert.False(t, mode.Enabled())
		return nil
	})
	assert.True(t, mode.Enabled())
}
