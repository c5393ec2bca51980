package data

import "github.com/pkg/errors"

var (
	// ErrEmptyBatch is returned for a batch with no examples.
	ErrEmptyBatch = errors.New("empty batch")

	// ErrInvalidFormat is returned when an IDX file has a bad header or is truncated.
	ErrInvalidFormat = errors.New("invalid idx format")

	// ErrInvalidFraction is returned by Split for fractions outside (0, 1).
	ErrInvalidFraction = errors.New("split fraction must be in (0, 1)")
)
