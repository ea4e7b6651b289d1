// Package embedding implements the Embedding Service: a deterministic
// local text -> 384-dim unit vector mapping. The LRU+TTL caching
// decorator around it lives in internal/cache. Grounded on a comparable implementation's internal/embed.StaticEmbedder
// (hash-based, no external model) and internal/embed.CachedEmbedder
// (hashicorp/golang-lru wrapping).
package embedding

import (
	"context"
	"math"
)

// Dimensions is the fixed embedding dimension mandated by §6.
const Dimensions = 384

// Embedder maps text to a fixed-dimension unit vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	ModelName() string
	Available(ctx context.Context) bool
	Close() error
}

// normalizeVector scales v to unit L2 norm. A zero vector is returned as-is
// (embedding of an empty string, or the degrade-to-zero-vector path on
// repeated embedding failure, per §4.2).
func normalizeVector(v []float32) []float32 {
	var sumSquares float64
	for _, val := range v {
		sumSquares += float64(val) * float64(val)
	}
	magnitude := math.Sqrt(sumSquares)
	if magnitude == 0 {
		return v
	}
	out := make([]float32, len(v))
	for i, val := range v {
		out[i] = float32(float64(val) / magnitude)
	}
	return out
}

// IsZeroVector reports whether v is the all-zero vector the ranker uses to
// detect an "unembedded" query and degrade gracefully (§4.2, §4.6).
func IsZeroVector(v []float32) bool {
	for _, f := range v {
		if f != 0 {
			return false
		}
	}
	return true
}
