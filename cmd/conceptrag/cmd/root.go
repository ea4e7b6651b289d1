// Package cmd provides the CLI commands for conceptrag.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/concept-rag/conceptrag/internal/config"
	"github.com/concept-rag/conceptrag/internal/container"
	"github.com/concept-rag/conceptrag/internal/embedding"
	"github.com/concept-rag/conceptrag/internal/logging"
	"github.com/concept-rag/conceptrag/internal/resilience"
	"github.com/concept-rag/conceptrag/pkg/version"
)

var (
	dbPathFlag  string
	offlineFlag bool
	debugMode   bool
	loggingDone func()
)

// NewRootCmd creates the root command for the conceptrag CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "conceptrag",
		Short: "Local-first concept-graph RAG server",
		Long: `conceptrag indexes a document set into a catalog/chunk/concept/
category graph with hybrid (BM25 + semantic + title + WordNet) search over
each collection, served either directly from the CLI or to an AI assistant
over MCP.

Run 'conceptrag seed <dir>' to build an index, then 'conceptrag serve' to
expose it over MCP, or use 'conceptrag search'/'concept'/'category' directly.`,
		Version: version.Version,
	}

	cmd.SetVersionTemplate("conceptrag version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&dbPathFlag, "db", "", "Database path (defaults to config db_path)")
	cmd.PersistentFlags().BoolVar(&offlineFlag, "offline", false, "Use the deterministic static embedder instead of a configured model")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.conceptrag/logs/")

	cmd.PersistentPreRunE = startLogging
	cmd.PersistentPostRunE = stopLogging

	cmd.AddCommand(newSeedCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newConceptCmd())
	cmd.AddCommand(newCategoryCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newStatsCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func startLogging(_ *cobra.Command, _ []string) error {
	if !debugMode {
		return nil
	}
	logger, cleanup, err := logging.Setup(logging.DebugConfig())
	if err != nil {
		return fmt.Errorf("failed to setup debug logging: %w", err)
	}
	loggingDone = cleanup
	slog.SetDefault(logger)
	slog.Info("debug logging enabled", slog.String("log_file", logging.DefaultLogPath()))
	return nil
}

func stopLogging(_ *cobra.Command, _ []string) error {
	if loggingDone != nil {
		loggingDone()
		loggingDone = nil
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// loadConfig loads the layered configuration, falling back to in-process
// defaults (never failing outright) the way every subcommand expects.
func loadConfig() *config.Config {
	root, err := config.FindProjectRoot(".")
	if err != nil {
		cfg := config.NewConfig()
		applyFlagOverrides(cfg)
		return cfg
	}
	cfg, err := config.Load(root)
	if err != nil {
		cfg = config.NewConfig()
	}
	applyFlagOverrides(cfg)
	return cfg
}

func applyFlagOverrides(cfg *config.Config) {
	if dbPathFlag != "" {
		cfg.DBPath = dbPathFlag
	}
}

// buildContainer wires a Container against cfg.DBPath, substituting the
// static embedder when offlineFlag is set (the container's own default is
// already the static embedder, but this makes the CLI's choice explicit
// and independent of container.Build's internal default).
func buildContainer(ctx context.Context, cfg *config.Config) (*container.Container, error) {
	opts := container.Options{
		DatabasePath:       cfg.DBPath,
		EmbeddingCacheSize: cfg.Cache.EmbeddingSize,
		EmbeddingCacheTTL:  cfg.Cache.EmbeddingTTL,
		ResilienceProfiles: resilienceProfilesFromConfig(cfg),
	}
	if offlineFlag {
		opts.Embedder = embedding.NewStaticEmbedder()
	}
	return container.Build(ctx, opts)
}

// resilienceProfilesFromConfig turns the user-tunable profile knobs in
// cfg.Resilience into the resilience package's Profile shape, keeping
// config's own type independent of resilience (as config.CollectionWeights
// does for internal/search.Weights).
func resilienceProfilesFromConfig(cfg *config.Config) map[string]resilience.Profile {
	if len(cfg.Resilience.Profiles) == 0 {
		return nil
	}
	out := make(map[string]resilience.Profile, len(cfg.Resilience.Profiles))
	for name, p := range cfg.Resilience.Profiles {
		var retry *resilience.RetryConfig
		if p.MaxRetries > 0 {
			r := resilience.DefaultRetryConfig()
			r.MaxRetries = p.MaxRetries
			retry = &r
		}
		out[name] = resilience.Profile{
			Circuit: resilience.CircuitConfig{
				FailureThreshold: p.FailureThreshold,
				SuccessThreshold: p.HalfOpenSuccessNeeded,
				Timeout:          30 * time.Second,
			},
			Bulkhead: resilience.BulkheadConfig{
				MaxConcurrent: p.MaxConcurrent,
				MaxQueue:      p.MaxQueue,
			},
			Timeout: 10 * time.Second,
			Retry:   retry,
		}
	}
	return out
}
