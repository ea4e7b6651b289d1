package resilience

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/concept-rag/conceptrag/internal/cerr"
)

// BulkheadConfig configures per-operation concurrency admission.
type BulkheadConfig struct {
	MaxConcurrent int
	MaxQueue      int
}

// Profile bundles a circuit, bulkhead, timeout and optional retry config for
// one class of operation, the way a comparable implementation's embedder/store code picks
// different timeout/retry defaults per call site, just named and reusable.
type Profile struct {
	Circuit  CircuitConfig
	Bulkhead BulkheadConfig
	Timeout  time.Duration
	Retry    *RetryConfig
}

// Named profiles from §4.11.
func LLMAPIProfile() Profile {
	return Profile{
		Circuit:  CircuitConfig{FailureThreshold: 5, SuccessThreshold: 2, Timeout: 60 * time.Second},
		Bulkhead: BulkheadConfig{MaxConcurrent: 8, MaxQueue: 16},
		Timeout:  30 * time.Second,
		Retry:    &RetryConfig{MaxRetries: 3, InitialDelay: 500 * time.Millisecond, MaxDelay: 8 * time.Second, Multiplier: 2, Jitter: true},
	}
}

func EmbeddingProfile() Profile {
	return Profile{
		Circuit:  DefaultCircuitConfig(),
		Bulkhead: BulkheadConfig{MaxConcurrent: 10, MaxQueue: 20},
		Timeout:  10 * time.Second,
	}
}

func DatabaseProfile() Profile {
	return Profile{
		Circuit:  DefaultCircuitConfig(),
		Bulkhead: BulkheadConfig{MaxConcurrent: 32, MaxQueue: 64},
		Timeout:  5 * time.Second,
		Retry:    &RetryConfig{MaxRetries: 5, InitialDelay: 100 * time.Millisecond, MaxDelay: 2 * time.Second, Multiplier: 2, Jitter: true},
	}
}

// metrics is the atomic counter bundle for one operation name.
type metrics struct {
	totalRequests  int64
	totalSuccesses int64
	totalFailures  int64
	rejections     int64
}

// Snapshot is a point-in-time read of an operation's metrics.
type Snapshot struct {
	Name           string
	TotalRequests  int64
	TotalSuccesses int64
	TotalFailures  int64
	Rejections     int64
	State          string
	BulkheadQueued int64
}

// executor is the per-name wiring: bulkhead + circuit + profile + metrics.
type executor struct {
	name     string
	profile  Profile
	bulkhead *Bulkhead
	circuit  *CircuitBreaker
	m        metrics
}

// Kernel is a process-wide registry of per-operation-name executors.
// Circuit and bulkhead state are the only mutable shared state on the query
// path; everything else borrows read-only snapshots.
type Kernel struct {
	mu        sync.Mutex
	executors map[string]*executor
}

// NewKernel builds an empty resilience kernel.
func NewKernel() *Kernel {
	return &Kernel{executors: make(map[string]*executor)}
}

// RegisterProfile pre-creates the executor for name with profile, so a
// config-driven profile wins over whatever default a call site passes to
// the first Execute call (getOrCreate keeps the first-registered wiring).
// Calling it twice for the same name is a no-op after the first call.
func (k *Kernel) RegisterProfile(name string, profile Profile) {
	k.getOrCreate(name, profile)
}

// getOrCreate returns the executor for name, creating it from profile on
// first use. Subsequent calls with a different profile for the same name
// keep the first-registered wiring (profiles are assigned once, at
// container wiring time).
func (k *Kernel) getOrCreate(name string, profile Profile) *executor {
	k.mu.Lock()
	defer k.mu.Unlock()
	if ex, ok := k.executors[name]; ok {
		return ex
	}
	ex := &executor{
		name:     name,
		profile:  profile,
		bulkhead: NewBulkhead(name, profile.Bulkhead.MaxConcurrent, profile.Bulkhead.MaxQueue),
		circuit:  NewCircuitBreaker(name, profile.Circuit),
	}
	k.executors[name] = ex
	return ex
}

// Execute runs fn under the named operation's bulkhead, circuit breaker,
// timeout and optional retry, composed outside-in per §4.11:
// bulkhead(circuit(timeout(retry(fn)))).
func Execute[T any](ctx context.Context, k *Kernel, name string, profile Profile, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	ex := k.getOrCreate(name, profile)

	atomic.AddInt64(&ex.m.totalRequests, 1)

	if ex.bulkhead != nil && (ex.profile.Bulkhead.MaxConcurrent > 0) {
		if err := ex.bulkhead.Acquire(ctx); err != nil {
			atomic.AddInt64(&ex.m.rejections, 1)
			return zero, err
		}
		defer ex.bulkhead.Release()
	}

	if !ex.circuit.Allow() {
		atomic.AddInt64(&ex.m.rejections, 1)
		return zero, cerr.CircuitOpen(name)
	}

	cctx := ctx
	if ex.profile.Timeout > 0 {
		var cancel context.CancelFunc
		cctx, cancel = context.WithTimeout(ctx, ex.profile.Timeout)
		defer cancel()
	}

	var result T
	var err error
	if ex.profile.Retry != nil {
		result, err = retryWithResult(cctx, *ex.profile.Retry, func() (T, error) { return fn(cctx) })
	} else {
		result, err = fn(cctx)
	}
	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		err = cerr.TimeoutError(name)
	}

	if err != nil {
		ex.circuit.RecordFailure()
		atomic.AddInt64(&ex.m.totalFailures, 1)
	} else {
		ex.circuit.RecordSuccess()
		atomic.AddInt64(&ex.m.totalSuccesses, 1)
	}

	return result, err
}

// GetMetrics returns a consistent snapshot for name, or the zero Snapshot if
// the name has never been executed.
func (k *Kernel) GetMetrics(name string) Snapshot {
	k.mu.Lock()
	ex, ok := k.executors[name]
	k.mu.Unlock()
	if !ok {
		return Snapshot{Name: name}
	}
	return Snapshot{
		Name:           name,
		TotalRequests:  atomic.LoadInt64(&ex.m.totalRequests),
		TotalSuccesses: atomic.LoadInt64(&ex.m.totalSuccesses),
		TotalFailures:  atomic.LoadInt64(&ex.m.totalFailures),
		Rejections:     atomic.LoadInt64(&ex.m.rejections),
		State:          ex.circuit.State().String(),
		BulkheadQueued: ex.bulkhead.Queued(),
	}
}

// HealthSummary reports, across every registered operation name, which
// circuits are open and which bulkheads are at their queue limit.
type HealthSummary struct {
	OpenCircuits  []string
	FullBulkheads []string
}

// GetHealthSummary reports aggregate health across every registered executor.
func (k *Kernel) GetHealthSummary() HealthSummary {
	k.mu.Lock()
	defer k.mu.Unlock()

	var summary HealthSummary
	for name, ex := range k.executors {
		if ex.circuit.State() == StateOpen {
			summary.OpenCircuits = append(summary.OpenCircuits, name)
		}
		if ex.profile.Bulkhead.MaxQueue > 0 && ex.bulkhead.Queued() >= int64(ex.profile.Bulkhead.MaxQueue) {
			summary.FullBulkheads = append(summary.FullBulkheads, name)
		}
	}
	return summary
}
