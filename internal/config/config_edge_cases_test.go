package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindProjectRoot_NonExistentDir_NoError(t *testing.T) {
	if _, err := FindProjectRoot(filepath.Join(t.TempDir(), "does-not-exist")); err != nil {
		t.Fatalf("FindProjectRoot should tolerate a missing leaf dir, got: %v", err)
	}
}

func TestFindProjectRoot_DeepNesting_FindsGitRoot(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(tmpDir, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(tmpDir, "a", "b", "c", "d", "e")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	root, err := FindProjectRoot(nested)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resolvedTmp, _ := filepath.EvalSymlinks(tmpDir)
	resolvedRoot, _ := filepath.EvalSymlinks(root)
	if resolvedRoot != resolvedTmp {
		t.Errorf("expected %s, got %s", resolvedTmp, resolvedRoot)
	}
}

func TestFindProjectRoot_ConfigFileMarksRoot(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, ".conceptrag.yaml"), []byte("version: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(tmpDir, "sub")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	root, err := FindProjectRoot(nested)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resolvedTmp, _ := filepath.EvalSymlinks(tmpDir)
	resolvedRoot, _ := filepath.EvalSymlinks(root)
	if resolvedRoot != resolvedTmp {
		t.Errorf("expected %s, got %s", resolvedTmp, resolvedRoot)
	}
}

func TestLoad_ZeroValuesNotMerged(t *testing.T) {
	tmpDir := t.TempDir()
	withIsolatedUserConfig(t)

	// bm25.b: 0 is a real (if unusual) value but our merge-only-non-zero
	// strategy treats it as "unset" — the default 0.75 survives, matching
	// a comparable implementation's own documented merge caveat.
	content := "bm25:\n  b: 0\n"
	if err := os.WriteFile(filepath.Join(tmpDir, ".conceptrag.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BM25.B != 0.75 {
		t.Errorf("expected default bm25.b to survive a zero override, got %f", cfg.BM25.B)
	}
}

func TestLoad_NegativeValues_Validated(t *testing.T) {
	tmpDir := t.TempDir()
	withIsolatedUserConfig(t)

	content := "embedding_dim: -1\n"
	if err := os.WriteFile(filepath.Join(tmpDir, ".conceptrag.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(tmpDir); err == nil {
		t.Error("expected validation error for negative embedding_dim")
	}
}

func TestLoad_InvalidTransport_Validated(t *testing.T) {
	tmpDir := t.TempDir()
	withIsolatedUserConfig(t)

	content := "server:\n  transport: http\n"
	if err := os.WriteFile(filepath.Join(tmpDir, ".conceptrag.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(tmpDir); err == nil {
		t.Error("expected validation error for unsupported transport")
	}
}

func TestLoad_UnreadableConfigFile_ReturnsError(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores file permissions")
	}
	tmpDir := t.TempDir()
	withIsolatedUserConfig(t)

	path := filepath.Join(tmpDir, ".conceptrag.yaml")
	if err := os.WriteFile(path, []byte("version: 1\n"), 0o000); err != nil {
		t.Fatal(err)
	}
	defer os.Chmod(path, 0o644)

	if _, err := Load(tmpDir); err == nil {
		t.Error("expected error reading an unreadable config file")
	}
}

func TestConfig_ResilienceProfilesMergeByName(t *testing.T) {
	tmpDir := t.TempDir()
	withIsolatedUserConfig(t)

	content := "resilience:\n  profiles:\n    embedding:\n      max_concurrent: 99\n      max_queue: 1\n      failure_threshold: 1\n      half_open_success_needed: 1\n      max_retries: 1\n"
	if err := os.WriteFile(filepath.Join(tmpDir, ".conceptrag.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Resilience.Profiles["embedding"].MaxConcurrent != 99 {
		t.Errorf("expected overridden embedding profile, got %+v", cfg.Resilience.Profiles["embedding"])
	}
	if _, ok := cfg.Resilience.Profiles["store"]; !ok {
		t.Error("expected default store profile to survive alongside the overridden one")
	}
}

func TestConfig_WriteYAML_RoundTrips(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "out.yaml")

	cfg := NewConfig()
	cfg.DBPath = "/tmp/roundtrip.db"
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded := NewConfig()
	if err := loaded.loadYAML(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded.DBPath != "/tmp/roundtrip.db" {
		t.Errorf("expected db_path to round-trip, got %s", loaded.DBPath)
	}
}
