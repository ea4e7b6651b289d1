package seed

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/concept-rag/conceptrag/internal/store"
)

func TestLoadCheckpoint_MissingFileStartsAtDocuments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.json")

	cp, err := LoadCheckpoint(path)
	require.NoError(t, err)
	assert.Equal(t, string(StageDocuments), cp.Stage)
	assert.Equal(t, CheckpointVersion, cp.Version)
}

func TestSaveAndLoadCheckpoint_RoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.json")

	cp := &store.Checkpoint{
		Stage:           string(StageConcepts),
		ProcessedHashes: []string{"abc", "def"},
		TotalProcessed:  2,
		DatabasePath:    "/data/db.sqlite",
		FilesDir:        "/data/files",
		Version:         CheckpointVersion,
	}
	require.NoError(t, SaveCheckpoint(path, cp))

	loaded, err := LoadCheckpoint(path)
	require.NoError(t, err)
	assert.Equal(t, cp.Stage, loaded.Stage)
	assert.Equal(t, cp.ProcessedHashes, loaded.ProcessedHashes)
	assert.Equal(t, cp.TotalProcessed, loaded.TotalProcessed)
}

func TestSaveCheckpoint_CreatesMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "checkpoint.json")
	cp := &store.Checkpoint{Stage: string(StageDocuments), Version: CheckpointVersion}

	require.NoError(t, SaveCheckpoint(path, cp))

	loaded, err := LoadCheckpoint(path)
	require.NoError(t, err)
	assert.Equal(t, string(StageDocuments), loaded.Stage)
}

func TestValidateResume_NoWarningsWhenPathsMatch(t *testing.T) {
	cp := &store.Checkpoint{DatabasePath: "/data/db.sqlite", FilesDir: "/data/files"}
	warnings := ValidateResume(cp, "/data/db.sqlite", "/data/files")
	assert.Empty(t, warnings)
}

func TestValidateResume_WarnsOnMismatch(t *testing.T) {
	cp := &store.Checkpoint{DatabasePath: "/old/db.sqlite", FilesDir: "/old/files"}
	warnings := ValidateResume(cp, "/new/db.sqlite", "/new/files")
	assert.Len(t, warnings, 2)
}

func TestValidateResume_IgnoresEmptyCheckpointPaths(t *testing.T) {
	cp := &store.Checkpoint{}
	warnings := ValidateResume(cp, "/new/db.sqlite", "/new/files")
	assert.Empty(t, warnings)
}

func TestHasProcessed(t *testing.T) {
	cp := &store.Checkpoint{ProcessedHashes: []string{"aaa"}}
	assert.True(t, HasProcessed(cp, "aaa"))
	assert.False(t, HasProcessed(cp, "bbb"))
}

func TestMarkProcessed_IsIdempotent(t *testing.T) {
	cp := &store.Checkpoint{}
	MarkProcessed(cp, "aaa")
	MarkProcessed(cp, "aaa")
	assert.Equal(t, []string{"aaa"}, cp.ProcessedHashes)
	assert.Equal(t, 1, cp.TotalProcessed)
}

func TestMarkFailed_IsIdempotent(t *testing.T) {
	cp := &store.Checkpoint{}
	MarkFailed(cp, "broken.pdf")
	MarkFailed(cp, "broken.pdf")
	assert.Equal(t, []string{"broken.pdf"}, cp.FailedFiles)
	assert.Equal(t, 1, cp.TotalFailed)
}
