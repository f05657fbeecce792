package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrInsufficientCatalog means the catalog has too few distinct names to
// build a full option set.
var ErrInsufficientCatalog = errors.New("catalog has too few distinct names")

// ErrNotReady is returned by Entries while the load is still in flight.
var ErrNotReady = errors.New("catalog is still loading")

type Status string

const (
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

// Loader runs a Provider exactly once and remembers the outcome. There are no
// retries: a failed load stays failed for the lifetime of the process.
type Loader struct {
	provider Provider
	minNames int
	logger   *zap.Logger

	once sync.Once
	done chan struct{}

	mu      sync.RWMutex
	status  Status
	entries []Entry
	err     error
}

// NewLoader returns a loader in the loading state. minNames is the smallest
// number of distinct names a usable catalog must hold.
func NewLoader(p Provider, minNames int, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		provider: p,
		minNames: minNames,
		logger:   logger,
		done:     make(chan struct{}),
		status:   StatusLoading,
	}
}

// Load fetches the catalog. Only the first call reaches the provider; every
// call returns the terminal error of that fetch (nil on success).
func (l *Loader) Load(ctx context.Context) error {
	l.once.Do(func() {
		defer close(l.done)
		start := time.Now()
		entries, err := l.fetch(ctx)

		l.mu.Lock()
		if err != nil {
			l.status, l.err = StatusFailed, err
		} else {
			l.status, l.entries = StatusReady, entries
		}
		l.mu.Unlock()

		if err != nil {
			l.logger.Error("catalog load failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
			return
		}
		l.logger.Info("catalog loaded", zap.Int("entries", len(entries)), zap.Duration("elapsed", time.Since(start)))
	})
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.err
}

func (l *Loader) fetch(ctx context.Context) ([]Entry, error) {
	entries, err := l.provider.Fetch(ctx)
	if err != nil {
		if errors.Is(err, ErrCatalogLoad) || errors.Is(err, ErrEmptyCatalog) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrCatalogLoad, err)
	}
	if err := Validate(entries); err != nil {
		return nil, err
	}
	// Validate guarantees unique names, so the entry count is the distinct count.
	if len(entries) < l.minNames {
		return nil, fmt.Errorf("%w: need %d, have %d", ErrInsufficientCatalog, l.minNames, len(entries))
	}
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out, nil
}

// Wait blocks until the load has finished or ctx is done.
func (l *Loader) Wait(ctx context.Context) error {
	select {
	case <-l.done:
		l.mu.RLock()
		defer l.mu.RUnlock()
		return l.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Loader) Status() Status {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.status
}

// Entries returns the loaded catalog, ErrNotReady while loading, or the load
// error once failed. The returned slice must not be modified.
func (l *Loader) Entries() ([]Entry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	switch l.status {
	case StatusReady:
		return l.entries, nil
	case StatusFailed:
		return nil, l.err
	default:
		return nil, ErrNotReady
	}
}
