package embedding

import "context"

// DegradingEmbedder wraps an Embedder with the §4.2 failure policy:
// failures are retried once; a second failure returns the zero vector and
// marks the request unembedded so the ranker (internal/search) can degrade
// gracefully instead of failing the whole query.
type DegradingEmbedder struct {
	inner Embedder
}

// NewDegradingEmbedder wraps inner with the retry-once-then-zero-vector
// policy.
func NewDegradingEmbedder(inner Embedder) *DegradingEmbedder {
	return &DegradingEmbedder{inner: inner}
}

// Embed returns (vector, unembedded, err). unembedded is true when both the
// original attempt and the single retry failed and a zero vector is
// returned in their place; err is always nil in that case, since the
// degrade path is the contract's defined success path, not a failure.
func (e *DegradingEmbedder) Embed(ctx context.Context, text string) (vec []float32, unembedded bool, err error) {
	vec, err = e.inner.Embed(ctx, text)
	if err == nil {
		return vec, false, nil
	}

	vec, err = e.inner.Embed(ctx, text)
	if err == nil {
		return vec, false, nil
	}

	return make([]float32, e.inner.Dimensions()), true, nil
}

func (e *DegradingEmbedder) Dimensions() int             { return e.inner.Dimensions() }
func (e *DegradingEmbedder) ModelName() string           { return e.inner.ModelName() }
func (e *DegradingEmbedder) Available(ctx context.Context) bool { return e.inner.Available(ctx) }
func (e *DegradingEmbedder) Close() error                { return e.inner.Close() }
