package resilience

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/concept-rag/conceptrag/internal/cerr"
)

// Bulkhead admits up to maxConcurrent concurrent operations and queues up to
// maxQueue more (FIFO, via golang.org/x/sync/semaphore's own waiter queue);
// anything beyond that is rejected immediately. The teacher never had a
// bulkhead; this is grounded on the same errgroup/semaphore module the
// teacher already depends on for fan-out scoring.
type Bulkhead struct {
	name string
	sem  *semaphore.Weighted

	mu     sync.Mutex
	queued int64

	maxConcurrent int64
	maxQueue      int64
}

// NewBulkhead builds a bulkhead admitting maxConcurrent operations with a
// queue of maxQueue more.
func NewBulkhead(name string, maxConcurrent, maxQueue int) *Bulkhead {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	if maxQueue < 0 {
		maxQueue = 0
	}
	return &Bulkhead{
		name:          name,
		sem:           semaphore.NewWeighted(int64(maxConcurrent)),
		maxConcurrent: int64(maxConcurrent),
		maxQueue:      int64(maxQueue),
	}
}

// Acquire blocks until a slot is available, admitting immediately if the
// bulkhead is below capacity, queuing if at capacity but below maxQueue, and
// rejecting with a §7 BulkheadRejection otherwise. The caller must call
// Release when done, exactly once, iff Acquire returned nil.
func (b *Bulkhead) Acquire(ctx context.Context) error {
	// Fast path: a concurrent slot is free, admit immediately without
	// touching the queue count at all.
	if b.sem.TryAcquire(1) {
		return nil
	}

	b.mu.Lock()
	if b.queued >= b.maxQueue {
		b.mu.Unlock()
		return cerr.BulkheadRejected(b.name)
	}
	b.queued++
	b.mu.Unlock()

	err := b.sem.Acquire(ctx, 1)

	b.mu.Lock()
	b.queued--
	b.mu.Unlock()

	return err
}

// Release returns the slot to the bulkhead.
func (b *Bulkhead) Release() {
	b.sem.Release(1)
}

// Queued reports the number of callers currently waiting for a slot.
func (b *Bulkhead) Queued() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.queued
}
