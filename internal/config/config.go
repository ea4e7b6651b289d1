// Package config implements the layered configuration described in §6:
// defaults, then a user config (~/.config/conceptrag/config.yaml), then a
// project config (.conceptrag.yaml), then CONCEPTRAG_* environment
// overrides, the same precedence order and merge-only-non-zero-values
// technique a comparable CLI's internal/config.Config uses, applied to
// this domain's own field list instead of a source-code-search one.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete conceptrag configuration (§6).
type Config struct {
	Version      int                `yaml:"version" json:"version"`
	DBPath       string             `yaml:"db_path" json:"db_path"`
	FilesDir     string             `yaml:"files_dir" json:"files_dir"`
	EmbeddingDim int                `yaml:"embedding_dim" json:"embedding_dim"`
	Hybrid       HybridWeightsConfig `yaml:"hybrid_weights" json:"hybrid_weights"`
	BM25         BM25Config         `yaml:"bm25" json:"bm25"`
	Cache        CacheConfig        `yaml:"cache" json:"cache"`
	Resilience   ResilienceConfig   `yaml:"resilience" json:"resilience"`
	Server       ServerConfig       `yaml:"server" json:"server"`
}

// CollectionWeights mirrors internal/search.Weights, duplicated here (rather
// than imported) so config stays independent of the search package's types.
type CollectionWeights struct {
	Vector  float64 `yaml:"vector" json:"vector"`
	BM25    float64 `yaml:"bm25" json:"bm25"`
	Title   float64 `yaml:"title" json:"title"`
	WordNet float64 `yaml:"wordnet" json:"wordnet"`
}

// HybridWeightsConfig carries the per-collection component weights (§6:
// "hybrid_weights_{catalog,chunks,concepts}"). These currently only document
// the fixed constants internal/search.WeightsFor returns (Open Question,
// §13: "hybrid weights are fixed constants, exposed only via the debug
// field") — config does not yet feed them back into the search engine.
type HybridWeightsConfig struct {
	Catalog  CollectionWeights `yaml:"catalog" json:"catalog"`
	Chunks   CollectionWeights `yaml:"chunks" json:"chunks"`
	Concepts CollectionWeights `yaml:"concepts" json:"concepts"`
}

// BM25Config carries the BM25 ranking constants (§6: "bm25_k1=1.5, bm25_b=0.75").
type BM25Config struct {
	K1 float64 `yaml:"k1" json:"k1"`
	B  float64 `yaml:"b" json:"b"`
}

// CacheConfig carries the result/embedding cache TTLs (§6: "result_cache_ttl=5m,
// embedding_cache_ttl=1h").
type CacheConfig struct {
	ResultTTL    time.Duration `yaml:"result_cache_ttl" json:"result_cache_ttl"`
	EmbeddingTTL time.Duration `yaml:"embedding_cache_ttl" json:"embedding_cache_ttl"`
	ResultSize   int           `yaml:"result_cache_size" json:"result_cache_size"`
	EmbeddingSize int          `yaml:"embedding_cache_size" json:"embedding_cache_size"`
}

// ResilienceProfileConfig carries one named resilience.Profile's tunables.
type ResilienceProfileConfig struct {
	MaxConcurrent        int `yaml:"max_concurrent" json:"max_concurrent"`
	MaxQueue              int `yaml:"max_queue" json:"max_queue"`
	FailureThreshold      int `yaml:"failure_threshold" json:"failure_threshold"`
	HalfOpenSuccessNeeded int `yaml:"half_open_success_needed" json:"half_open_success_needed"`
	MaxRetries            int `yaml:"max_retries" json:"max_retries"`
}

// ResilienceConfig carries the named resilience profiles (§6:
// "resilience_profiles"), keyed the way internal/resilience.Kernel names
// its executors (e.g. "embedding", "store", "llm").
type ResilienceConfig struct {
	Profiles map[string]ResilienceProfileConfig `yaml:"profiles" json:"profiles"`
}

// ServerConfig configures the MCP server transport and logging.
type ServerConfig struct {
	Transport string `yaml:"transport" json:"transport"`
	LogLevel  string `yaml:"log_level" json:"log_level"`
	Debug     bool   `yaml:"debug" json:"debug"`
}

// NewConfig returns a Config populated with the defaults §6 enumerates.
func NewConfig() *Config {
	return &Config{
		Version:      1,
		DBPath:       defaultDBPath(),
		FilesDir:     "./documents",
		EmbeddingDim: 384,
		Hybrid: HybridWeightsConfig{
			Catalog:  CollectionWeights{Vector: 0.30, BM25: 0.30, Title: 0.25, WordNet: 0.15},
			Chunks:   CollectionWeights{Vector: 0.35, BM25: 0.30, Title: 0.20, WordNet: 0.15},
			Concepts: CollectionWeights{Vector: 0.30, BM25: 0.20, Title: 0.40, WordNet: 0.10},
		},
		BM25: BM25Config{K1: 1.5, B: 0.75},
		Cache: CacheConfig{
			ResultTTL:     5 * time.Minute,
			EmbeddingTTL:  time.Hour,
			ResultSize:    1000,
			EmbeddingSize: 10000,
		},
		Resilience: ResilienceConfig{
			Profiles: map[string]ResilienceProfileConfig{
				"embedding": {MaxConcurrent: 4, MaxQueue: 16, FailureThreshold: 5, HalfOpenSuccessNeeded: 2, MaxRetries: 2},
				"store":     {MaxConcurrent: 8, MaxQueue: 32, FailureThreshold: 5, HalfOpenSuccessNeeded: 2, MaxRetries: 1},
			},
		},
		Server: ServerConfig{
			Transport: "stdio",
			LogLevel:  "info",
		},
	}
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".conceptrag", "conceptrag.db")
	}
	return filepath.Join(home, ".conceptrag", "conceptrag.db")
}

// GetUserConfigPath returns the path to the user/global configuration file,
// following the XDG Base Directory spec, the same layout this package's
// config.GetUserConfigPath has always used.
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "conceptrag", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "conceptrag", "config.yaml")
	}
	return filepath.Join(home, ".config", "conceptrag", "config.yaml")
}

// GetUserConfigDir returns the directory containing the user configuration.
func GetUserConfigDir() string {
	return filepath.Dir(GetUserConfigPath())
}

// UserConfigExists reports whether the user configuration file exists.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

// LoadUserConfig loads the user configuration file, if present.
func LoadUserConfig() (*Config, error) {
	return loadUserConfig()
}

func loadUserConfig() (*Config, error) {
	configPath := GetUserConfigPath()
	if !fileExists(configPath) {
		return nil, nil
	}
	cfg := NewConfig()
	if err := cfg.loadYAML(configPath); err != nil {
		return nil, fmt.Errorf("failed to load user config from %s: %w", configPath, err)
	}
	return cfg, nil
}

// Load loads configuration from dir in order of increasing precedence:
// defaults, user config, project config (.conceptrag.yaml in dir), then
// CONCEPTRAG_* environment overrides.
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if userCfg, err := loadUserConfig(); err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	} else if userCfg != nil {
		cfg.mergeWith(userCfg)
	}

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFromFile(dir string) error {
	yamlPath := filepath.Join(dir, ".conceptrag.yaml")
	if _, err := os.Stat(yamlPath); err == nil {
		return c.loadYAML(yamlPath)
	}
	ymlPath := filepath.Join(dir, ".conceptrag.yml")
	if _, err := os.Stat(ymlPath); err == nil {
		return c.loadYAML(ymlPath)
	}
	return nil
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	c.mergeWith(&parsed)
	return nil
}

// mergeWith overlays other's non-zero fields onto c.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}
	if other.DBPath != "" {
		c.DBPath = other.DBPath
	}
	if other.FilesDir != "" {
		c.FilesDir = other.FilesDir
	}
	if other.EmbeddingDim != 0 {
		c.EmbeddingDim = other.EmbeddingDim
	}

	mergeWeights(&c.Hybrid.Catalog, other.Hybrid.Catalog)
	mergeWeights(&c.Hybrid.Chunks, other.Hybrid.Chunks)
	mergeWeights(&c.Hybrid.Concepts, other.Hybrid.Concepts)

	if other.BM25.K1 != 0 {
		c.BM25.K1 = other.BM25.K1
	}
	if other.BM25.B != 0 {
		c.BM25.B = other.BM25.B
	}

	if other.Cache.ResultTTL != 0 {
		c.Cache.ResultTTL = other.Cache.ResultTTL
	}
	if other.Cache.EmbeddingTTL != 0 {
		c.Cache.EmbeddingTTL = other.Cache.EmbeddingTTL
	}
	if other.Cache.ResultSize != 0 {
		c.Cache.ResultSize = other.Cache.ResultSize
	}
	if other.Cache.EmbeddingSize != 0 {
		c.Cache.EmbeddingSize = other.Cache.EmbeddingSize
	}

	if len(other.Resilience.Profiles) > 0 {
		if c.Resilience.Profiles == nil {
			c.Resilience.Profiles = make(map[string]ResilienceProfileConfig, len(other.Resilience.Profiles))
		}
		for name, profile := range other.Resilience.Profiles {
			c.Resilience.Profiles[name] = profile
		}
	}

	if other.Server.Transport != "" {
		c.Server.Transport = other.Server.Transport
	}
	if other.Server.LogLevel != "" {
		c.Server.LogLevel = other.Server.LogLevel
	}
	if other.Server.Debug {
		c.Server.Debug = other.Server.Debug
	}
}

func mergeWeights(dst *CollectionWeights, src CollectionWeights) {
	if src.Vector != 0 {
		dst.Vector = src.Vector
	}
	if src.BM25 != 0 {
		dst.BM25 = src.BM25
	}
	if src.Title != 0 {
		dst.Title = src.Title
	}
	if src.WordNet != 0 {
		dst.WordNet = src.WordNet
	}
}

// applyEnvOverrides applies CONCEPTRAG_* environment variable overrides,
// the highest-precedence layer in the load order.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("CONCEPTRAG_DB_PATH"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("CONCEPTRAG_FILES_DIR"); v != "" {
		c.FilesDir = v
	}
	if v := os.Getenv("CONCEPTRAG_LOG_LEVEL"); v != "" {
		c.Server.LogLevel = v
	}
	if v := os.Getenv("CONCEPTRAG_TRANSPORT"); v != "" {
		c.Server.Transport = v
	}
	if v := os.Getenv("CONCEPTRAG_BM25_K1"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.BM25.K1 = f
		}
	}
	if v := os.Getenv("CONCEPTRAG_BM25_B"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.BM25.B = f
		}
	}
	if v := os.Getenv("CONCEPTRAG_DEBUG"); v != "" {
		c.Server.Debug = strings.ToLower(v) == "true" || v == "1"
	}
}

// Validate checks the configuration for internally inconsistent values.
func (c *Config) Validate() error {
	if c.EmbeddingDim <= 0 {
		return fmt.Errorf("embedding_dim must be positive, got %d", c.EmbeddingDim)
	}
	if c.BM25.K1 < 0 {
		return fmt.Errorf("bm25.k1 must be non-negative, got %f", c.BM25.K1)
	}
	if c.BM25.B < 0 || c.BM25.B > 1 {
		return fmt.Errorf("bm25.b must be between 0 and 1, got %f", c.BM25.B)
	}
	if c.Cache.ResultTTL < 0 || c.Cache.EmbeddingTTL < 0 {
		return fmt.Errorf("cache TTLs must be non-negative")
	}
	validTransports := map[string]bool{"stdio": true}
	if !validTransports[strings.ToLower(c.Server.Transport)] {
		return fmt.Errorf("server.transport must be 'stdio', got %s", c.Server.Transport)
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Server.LogLevel)] {
		return fmt.Errorf("server.log_level must be 'debug', 'info', 'warn', or 'error', got %s", c.Server.LogLevel)
	}
	return nil
}

// WriteYAML writes the configuration to path.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// FindProjectRoot walks up from startDir looking for a .git directory or a
// .conceptrag.yaml/.yml file, the same project-root discovery the CLI
// performs before opening its store.
func FindProjectRoot(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}
	currentDir := absDir
	for {
		if dirExists(filepath.Join(currentDir, ".git")) {
			return currentDir, nil
		}
		if fileExists(filepath.Join(currentDir, ".conceptrag.yaml")) || fileExists(filepath.Join(currentDir, ".conceptrag.yml")) {
			return currentDir, nil
		}
		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return absDir, nil
		}
		currentDir = parentDir
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
