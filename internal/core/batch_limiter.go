package core

// batch_limiter.go bounds how many batches the server works on at once.
//
// Each batch already fans out across its own errgroup; the limiter caps the
// number of batches in flight so a burst of large requests cannot multiply
// into thousands of goroutines. Callers that cannot get a slot within maxWait
// fail with ErrServerBusy.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrServerBusy is returned when every batch slot stays occupied for the
// whole wait period. Clients should retry after a short delay.
var ErrServerBusy = errors.New("too many concurrent batches, please try again later")

// DefaultMaxConcurrentBatches is the default number of batches in flight.
const DefaultMaxConcurrentBatches = 4

// DefaultBatchWait is how long to wait for a slot before rejecting.
const DefaultBatchWait = 10 * time.Second

// BatchLimiter is a counting semaphore for batch admission.
type BatchLimiter struct {
	slots   chan struct{}
	maxWait time.Duration

	mu       sync.RWMutex
	active   int
	waiting  int
	rejected uint64
}

// NewBatchLimiter allows at most maxConcurrent batches at once.
func NewBatchLimiter(maxConcurrent int, maxWait time.Duration) *BatchLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentBatches
	}
	if maxWait <= 0 {
		maxWait = DefaultBatchWait
	}
	return &BatchLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire waits for a slot. The returned release func is safe to call more
// than once; only the first call frees the slot.
func (l *BatchLimiter) Acquire(ctx context.Context) (release func(), err error) {
	if release, ok := l.TryAcquire(); ok {
		return release, nil
	}

	l.mu.Lock()
	l.waiting++
	l.mu.Unlock()
	defer func() {
		l.mu.Lock()
		l.waiting--
		l.mu.Unlock()
	}()

	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		return l.admit(), nil
	case <-timer.C:
		l.mu.Lock()
		l.rejected++
		l.mu.Unlock()
		return nil, ErrServerBusy
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// TryAcquire takes a slot only if one is free right now.
func (l *BatchLimiter) TryAcquire() (release func(), ok bool) {
	select {
	case l.slots <- struct{}{}:
		return l.admit(), true
	default:
		return nil, false
	}
}

func (l *BatchLimiter) admit() func() {
	l.mu.Lock()
	l.active++
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			l.active--
			l.mu.Unlock()
			<-l.slots
		})
	}
}

// ActiveCount returns the number of batches holding a slot.
func (l *BatchLimiter) ActiveCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.active
}

// MaxConcurrent returns the slot count.
func (l *BatchLimiter) MaxConcurrent() int {
	return cap(l.slots)
}

// Available returns the number of free slots.
func (l *BatchLimiter) Available() int {
	return cap(l.slots) - len(l.slots)
}

// WaitForDrain blocks until no batch holds a slot or ctx ends.
// Used during graceful shutdown.
func (l *BatchLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if l.ActiveCount() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// BatchLimiterStatus is a point-in-time view of the limiter.
type BatchLimiterStatus struct {
	Active        int    `json:"active"`
	Waiting       int    `json:"waiting"`
	Available     int    `json:"available"`
	MaxConcurrent int    `json:"max_concurrent"`
	Rejected      uint64 `json:"rejected"`
}

// Status returns the current limiter state for the health endpoint.
func (l *BatchLimiter) Status() BatchLimiterStatus {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return BatchLimiterStatus{
		Active:        l.active,
		Waiting:       l.waiting,
		Available:     l.Available(),
		MaxConcurrent: l.MaxConcurrent(),
		Rejected:      l.rejected,
	}
}
