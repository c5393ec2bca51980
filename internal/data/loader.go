package data

import (
	"math/rand"

	"github.com/pkg/errors"
)

// Source yields the mini-batches of one epoch.
//
// Reset starts a new epoch. Next returns false once the epoch is exhausted.
// Len reports the number of batches per epoch.
type Source interface {
	Next() (Batch, bool)
	Reset()
	Len() int
}

// LoaderConfig configures a Loader.
type LoaderConfig struct {
	BatchSize int
	Shuffle   bool
	Seed      int64
}

// Loader is a Source over an in-memory Dataset. The final batch of an epoch
// may be smaller than BatchSize.
type Loader struct {
	ds        *Dataset
	batchSize int
	rng       *rand.Rand
	order     []int
	pos       int
}

// NewLoader creates a loader positioned at the start of its first epoch.
func NewLoader(ds *Dataset, cfg LoaderConfig) (*Loader, error) {
	if ds == nil || ds.Len() == 0 {
		return nil, ErrEmptyBatch
	}
	if cfg.BatchSize <= 0 {
		return nil, errors.Errorf("loader: batch size must be positive, got %d", cfg.BatchSize)
	}
	l := &Loader{
		ds:        ds,
		batchSize: cfg.BatchSize,
		order:     make([]int, ds.Len()),
	}
	if cfg.Shuffle {
		l.rng = rand.New(rand.NewSource(cfg.Seed))
	}
	l.Reset()
	return l, nil
}

// Reset rewinds to the start of a new epoch, reshuffling when enabled.
func (l *Loader) Reset() {
	for i := range l.order {
		l.order[i] = i
	}
	if l.rng != nil {
		l.rng.Shuffle(len(l.order), func(i, j int) {
			l.order[i], l.order[j] = l.order[j], l.order[i]
		})
	}
	l.pos = 0
}

// Next returns the next batch of the epoch.
func (l *Loader) Next() (Batch, bool) {
	if l.pos >= len(l.order) {
		return Batch{}, false
	}
	end := min(l.pos+l.batchSize, len(l.order))
	b, err := l.ds.Batch(l.order[l.pos:end])
	if err != nil {
		return Batch{}, false
	}
	l.pos = end
	return b, true
}

// Len returns the number of batches per epoch.
func (l *Loader) Len() int {
	return (len(l.order) + l.batchSize - 1) / l.batchSize
}

// Dataset returns the underlying dataset.
func (l *Loader) Dataset() *Dataset {
	return l.ds
}
