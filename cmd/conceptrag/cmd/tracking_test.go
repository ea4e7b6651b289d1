package cmd

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/concept-rag/conceptrag/internal/async"
	"github.com/concept-rag/conceptrag/internal/seed"
	"github.com/concept-rag/conceptrag/internal/store"
)

type stubProcessor struct {
	chunks []*store.Chunk
	err    error
}

func (s *stubProcessor) ProcessDocument(ctx context.Context, path string, cached *seed.DocumentStageData) (*store.Catalog, []*store.Chunk, *seed.DocumentStageData, error) {
	if s.err != nil {
		return nil, nil, nil, s.err
	}
	return &store.Catalog{Source: path}, s.chunks, nil, nil
}

func TestTrackingProcessor_UpdatesFilesAndChunksOnSuccess(t *testing.T) {
	progress := async.NewIndexProgress()
	progress.SetStage(async.StageChunking, 2)
	inner := &stubProcessor{chunks: []*store.Chunk{{ID: 1}, {ID: 2}}}
	p := newTrackingProcessor(inner, progress)

	_, _, _, err := p.ProcessDocument(context.Background(), "a.md", nil)
	require.NoError(t, err)
	_, _, _, err = p.ProcessDocument(context.Background(), "b.md", nil)
	require.NoError(t, err)

	snap := progress.Snapshot()
	assert.Equal(t, 2, snap.FilesProcessed)
	assert.Equal(t, 4, snap.ChunksIndexed)
}

func TestTrackingProcessor_CountsFileAsProcessedEvenOnError(t *testing.T) {
	progress := async.NewIndexProgress()
	progress.SetStage(async.StageChunking, 1)
	inner := &stubProcessor{err: errors.New("boom")}
	p := newTrackingProcessor(inner, progress)

	_, _, _, err := p.ProcessDocument(context.Background(), "broken.md", nil)
	require.Error(t, err)
	assert.Equal(t, 1, progress.Snapshot().FilesProcessed)
	assert.Equal(t, 0, progress.Snapshot().ChunksIndexed)
}
