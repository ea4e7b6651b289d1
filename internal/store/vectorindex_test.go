package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitVector(dim int, hot int) []float32 {
	v := make([]float32, dim)
	v[hot] = 1.0
	return v
}

func TestVectorIndex_SearchReturnsClosestFirst(t *testing.T) {
	idx := newVectorIndex(Dimensions)
	require.NoError(t, idx.Add(1, unitVector(Dimensions, 0)))
	require.NoError(t, idx.Add(2, unitVector(Dimensions, 1)))
	require.NoError(t, idx.Add(3, unitVector(Dimensions, 2)))

	hits, err := idx.Search(unitVector(Dimensions, 0), 3)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, uint32(1), hits[0].ID)
	assert.InDelta(t, 0.0, hits[0].Distance, 1e-4)
}

func TestVectorIndex_DeleteRemovesFromResults(t *testing.T) {
	idx := newVectorIndex(Dimensions)
	require.NoError(t, idx.Add(1, unitVector(Dimensions, 0)))
	require.NoError(t, idx.Add(2, unitVector(Dimensions, 1)))

	idx.Delete(1)
	assert.Equal(t, 1, idx.Count())
}

func TestVectorIndex_RejectsWrongDimension(t *testing.T) {
	idx := newVectorIndex(Dimensions)
	err := idx.Add(1, make([]float32, 10))
	assert.Error(t, err)
}

func TestVectorIndex_EmptyGraphSearchReturnsEmpty(t *testing.T) {
	idx := newVectorIndex(Dimensions)
	hits, err := idx.Search(unitVector(Dimensions, 0), 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestPartitionCount_ScalesWithTableSize(t *testing.T) {
	assert.Equal(t, 2, partitionCount(50))
	assert.Equal(t, 256, partitionCount(60_000))
}
