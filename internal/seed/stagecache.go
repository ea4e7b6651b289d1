package seed

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/concept-rag/conceptrag/internal/cerr"
)

// stageCacheTTL is how long a per-document stage cache entry is trusted
// before being treated as stale (§6: "TTL default 7 days").
const stageCacheTTL = 7 * 24 * time.Hour

// DocumentStageData is what a per-document stage cache entry holds: the
// intermediate work of a prior, possibly-failed run, reusable instead of
// recomputed. Field names and shape follow §6's per-document stage cache
// layout (<db>/.stage-cache/<collectionHash>/<fileHash>.json: "hash,
// source, processedAt, concepts?, contentOverview?, metadata?").
type DocumentStageData struct {
	Hash            string            `json:"hash"`
	Source          string            `json:"source,omitempty"`
	ProcessedAt     time.Time         `json:"processedAt"`
	Concepts        []string          `json:"concepts,omitempty"`
	ContentOverview string            `json:"contentOverview,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// StageCache is a directory of one JSON file per document hash, rooted
// under a caller-chosen collection directory.
type StageCache struct {
	dir string
}

// NewStageCache builds a StageCache rooted at dir, creating it if absent.
func NewStageCache(dir string) (*StageCache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, cerr.New(cerr.ErrCodeStageCacheIO, fmt.Sprintf("seed: create stage cache dir %s", dir), err)
	}
	return &StageCache{dir: dir}, nil
}

func (c *StageCache) path(fileHash string) string {
	return filepath.Join(c.dir, fileHash+".json")
}

// Get returns the cached data for fileHash if present and not expired.
func (c *StageCache) Get(fileHash string) (*DocumentStageData, bool, error) {
	data, err := os.ReadFile(c.path(fileHash))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, cerr.New(cerr.ErrCodeStageCacheIO, fmt.Sprintf("seed: read stage cache for %s", fileHash), err)
	}

	var entry DocumentStageData
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false, cerr.New(cerr.ErrCodeStageCacheIO, fmt.Sprintf("seed: parse stage cache for %s", fileHash), err)
	}
	if time.Since(entry.ProcessedAt) > stageCacheTTL {
		return nil, false, nil
	}
	return &entry, true, nil
}

// Put stores entry for fileHash atomically (temp file + rename, matching
// the checkpoint's own write discipline).
func (c *StageCache) Put(fileHash string, entry *DocumentStageData) error {
	entry.Hash = fileHash
	if entry.ProcessedAt.IsZero() {
		entry.ProcessedAt = time.Now()
	}
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("seed: marshal stage cache entry: %w", err)
	}

	target := c.path(fileHash)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return cerr.New(cerr.ErrCodeStageCacheIO, fmt.Sprintf("seed: write stage cache temp file for %s", fileHash), err)
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return cerr.New(cerr.ErrCodeStageCacheIO, fmt.Sprintf("seed: rename stage cache into place for %s", fileHash), err)
	}
	return nil
}
