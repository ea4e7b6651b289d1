// Package seed implements the Seeding Orchestrator: a
// resumable, staged ingestion pipeline (documents -> concepts ->
// summaries -> categories -> complete) with an atomically-written
// checkpoint file and a per-document stage cache for surviving a failed
// run partway through.
//
// Grounded on a comparable implementation's internal/session/storage.go for the
// temp-file-then-rename atomic JSON write pattern and internal/embed/lock.go
// for cross-process file locking via gofrs/flock. The package has no
// file-change trigger; a run starts only when a caller invokes it.
package seed

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/concept-rag/conceptrag/internal/cerr"
	"github.com/concept-rag/conceptrag/internal/store"
)

// CheckpointFileName is the name of the checkpoint file (§4.12:
// ".seeding-checkpoint.json"). The seed and stats commands place it inside
// the files directory being seeded, not beside the database.
const CheckpointFileName = ".seeding-checkpoint.json"

// CheckpointVersion is the current checkpoint schema version.
const CheckpointVersion = 1

// LoadCheckpoint reads the checkpoint file at path. A missing file is not
// an error — it returns a fresh checkpoint at the "documents" stage, the
// natural starting point for a first run.
func LoadCheckpoint(path string) (*store.Checkpoint, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &store.Checkpoint{Stage: string(StageDocuments), Version: CheckpointVersion}, nil
	}
	if err != nil {
		return nil, cerr.New(cerr.ErrCodeCheckpointIO, fmt.Sprintf("seed: read checkpoint %s", path), err)
	}

	var cp store.Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, cerr.New(cerr.ErrCodeCheckpointIO, fmt.Sprintf("seed: parse checkpoint %s", path), err)
	}
	return &cp, nil
}

// SaveCheckpoint writes cp to path atomically: write to a ".tmp" sibling,
// then rename over the target (§4.12: "writes are atomic").
func SaveCheckpoint(path string, cp *store.Checkpoint) error {
	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return fmt.Errorf("seed: marshal checkpoint: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return cerr.New(cerr.ErrCodeCheckpointIO, fmt.Sprintf("seed: create checkpoint dir %s", dir), err)
		}
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return cerr.New(cerr.ErrCodeCheckpointIO, fmt.Sprintf("seed: write checkpoint temp file %s", tmpPath), err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return cerr.New(cerr.ErrCodeCheckpointIO, fmt.Sprintf("seed: rename checkpoint into place %s", path), err)
	}
	return nil
}

// ValidateResume checks a loaded checkpoint's database path and files
// directory against the ones the current run was invoked with. Mismatches
// are warnings, not blockers (§4.12: "mismatches produce warnings but do
// not block").
func ValidateResume(cp *store.Checkpoint, databasePath, filesDir string) []string {
	var warnings []string
	if cp.DatabasePath != "" && !samePath(cp.DatabasePath, databasePath) {
		warnings = append(warnings, fmt.Sprintf("checkpoint database path %q does not match current %q", cp.DatabasePath, databasePath))
	}
	if cp.FilesDir != "" && !samePath(cp.FilesDir, filesDir) {
		warnings = append(warnings, fmt.Sprintf("checkpoint files directory %q does not match current %q", cp.FilesDir, filesDir))
	}
	return warnings
}

func samePath(a, b string) bool {
	return strings.TrimRight(filepath.Clean(a), "/") == strings.TrimRight(filepath.Clean(b), "/")
}

// HasProcessed reports whether hash is already recorded as processed.
func HasProcessed(cp *store.Checkpoint, hash string) bool {
	for _, h := range cp.ProcessedHashes {
		if h == hash {
			return true
		}
	}
	return false
}

// MarkProcessed records hash as processed if not already present and
// bumps TotalProcessed.
func MarkProcessed(cp *store.Checkpoint, hash string) {
	if HasProcessed(cp, hash) {
		return
	}
	cp.ProcessedHashes = append(cp.ProcessedHashes, hash)
	cp.TotalProcessed++
}

// MarkFailed records file as failed if not already present and bumps
// TotalFailed.
func MarkFailed(cp *store.Checkpoint, file string) {
	for _, f := range cp.FailedFiles {
		if f == file {
			return
		}
	}
	cp.FailedFiles = append(cp.FailedFiles, file)
	cp.TotalFailed++
}
