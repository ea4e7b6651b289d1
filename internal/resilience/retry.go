package resilience

import (
	"context"
	"math/rand"
	"time"

	"github.com/concept-rag/conceptrag/internal/cerr"
)

// RetryConfig configures exponential backoff with jitter. Grounded on the
// prior internal/errors.RetryConfig/Retry, extended to only retry
// errors the §7 taxonomy marks retryable.
type RetryConfig struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	Jitter       bool
}

// DefaultRetryConfig mirrors a comparable implementation's defaults.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:   3,
		InitialDelay: 200 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
		Jitter:       true,
	}
}

// retryWithResult runs fn, retrying up to cfg.MaxRetries times with
// exponential backoff + jitter, but only when the returned error is
// retryable per cerr.IsRetryable. Validation/NotFound/Fatal errors return on
// the first attempt.
func retryWithResult[T any](ctx context.Context, cfg RetryConfig, fn func() (T, error)) (T, error) {
	var result T
	delay := cfg.InitialDelay

	for attempt := 0; ; attempt++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		var err error
		result, err = fn()
		if err == nil {
			return result, nil
		}
		if !cerr.IsRetryable(err) || attempt >= cfg.MaxRetries {
			return result, err
		}

		wait := delay
		if cfg.Jitter {
			wait = time.Duration(float64(delay) * (0.5 + rand.Float64()*0.5))
		}
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-time.After(wait):
		}

		delay = time.Duration(float64(delay) * cfg.Multiplier)
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}
}
