package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/concept-rag/conceptrag/internal/async"
	"github.com/concept-rag/conceptrag/internal/container"
	"github.com/concept-rag/conceptrag/internal/extract"
	"github.com/concept-rag/conceptrag/internal/output"
	"github.com/concept-rag/conceptrag/internal/seed"
	"github.com/concept-rag/conceptrag/internal/store"
)

type seedOptions struct {
	force        bool
	seedCategory bool
}

func newSeedCmd() *cobra.Command {
	var opts seedOptions

	cmd := &cobra.Command{
		Use:   "seed [dir]",
		Short: "Build the catalog/chunk/concept/category index from a directory of documents",
		Long: `Runs the resumable documents -> concepts -> summaries -> categories
pipeline over every .txt/.md file under dir (default: the configured
files directory), picking up where a prior interrupted run left off
unless --force clears the checkpoint and stage cache first.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) > 0 {
				dir = args[0]
			}
			return runSeed(cmd, dir, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.force, "force", false, "Discard the existing checkpoint and stage cache, reprocessing every document")
	cmd.Flags().BoolVar(&opts.seedCategory, "seed-categories", true, "Seed a starter category taxonomy before the categories stage")

	return cmd
}

func runSeed(cmd *cobra.Command, dir string, opts seedOptions) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := loadConfig()
	filesDir := dir
	if filesDir == "" {
		filesDir = cfg.FilesDir
	}
	absDir, err := filepath.Abs(filesDir)
	if err != nil {
		return fmt.Errorf("seed: resolve files directory: %w", err)
	}

	lock := seed.NewRunLock(absDir)
	acquired, err := lock.TryLock()
	if err != nil {
		return err
	}
	if !acquired {
		return fmt.Errorf("seed: another seeding run holds the lock on %s", absDir)
	}
	defer func() { _ = lock.Unlock() }()

	out := output.New(cmd.OutOrStdout())

	c, err := buildContainer(ctx, cfg)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	defer func() { _ = c.Close() }()

	checkpointPath := filepath.Join(absDir, seed.CheckpointFileName)
	stageCacheDir := filepath.Join(absDir, ".stage-cache")

	if opts.force {
		if err := os.Remove(checkpointPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("seed: clear checkpoint: %w", err)
		}
		if err := os.RemoveAll(stageCacheDir); err != nil {
			return fmt.Errorf("seed: clear stage cache: %w", err)
		}
		out.Status("🧹", "Cleared checkpoint and stage cache, starting fresh")
	}

	orchestrator, warnings, err := seed.New(ctx, c.Store, checkpointPath, stageCacheDir, cfg.DBPath, absDir)
	if err != nil {
		return fmt.Errorf("seed: build orchestrator: %w", err)
	}
	for _, w := range warnings {
		out.Warning(w)
	}

	if opts.seedCategory {
		if err := seedDefaultCategories(ctx, c); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}

	paths, err := extract.DiscoverFiles(absDir, extract.DefaultExtensions)
	if err != nil {
		return fmt.Errorf("seed: discover files: %w", err)
	}
	out.Statusf("📂", "Discovered %d documents under %s", len(paths), absDir)

	stageCache, err := seed.NewStageCache(stageCacheDir)
	if err != nil {
		return fmt.Errorf("seed: open stage cache: %w", err)
	}

	progress := async.NewIndexProgress()
	progress.SetStage(async.StageChunking, len(paths))
	processor := newTrackingProcessor(extract.NewDocumentProcessor(c.Embedder), progress)
	out.Status("📄", "Stage 1/4: documents")
	if err := orchestrator.RunDocuments(ctx, paths, processor); err != nil {
		progress.SetError(err.Error())
		return fmt.Errorf("seed: documents stage: %w", err)
	}
	progress.SetReady()
	snap := progress.Snapshot()
	out.Statusf("", "Processed %d/%d documents in %ds", snap.FilesProcessed, snap.FilesTotal, snap.ElapsedSeconds)

	aggregator := extract.NewConceptAggregator(stageCache, c.Embedder)
	out.Status("🧠", "Stage 2/4: concepts")
	if err := orchestrator.RunConcepts(ctx, aggregator); err != nil {
		return fmt.Errorf("seed: concepts stage: %w", err)
	}

	summarizer := extract.NewSummarizer(c.Store.Chunks)
	out.Status("📝", "Stage 3/4: summaries")
	if err := orchestrator.RunSummaries(ctx, summarizer); err != nil {
		return fmt.Errorf("seed: summaries stage: %w", err)
	}

	mapper, err := extract.NewCategoryMapper(ctx, c.Store.Concepts, c.Store.Categories)
	if err != nil {
		return fmt.Errorf("seed: build category mapper: %w", err)
	}
	out.Status("🗂️ ", "Stage 4/4: categories")
	if err := orchestrator.RunCategories(ctx, mapper); err != nil {
		return fmt.Errorf("seed: categories stage: %w", err)
	}

	stats, err := c.Store.Stats(ctx)
	if err != nil {
		return fmt.Errorf("seed: gather stats: %w", err)
	}
	out.Newline()
	out.Success("Seeding complete")
	for _, table := range []store.Table{store.TableCatalog, store.TableChunks, store.TableConcepts, store.TableCategories} {
		out.Statusf("", "%-12s %d rows", table, stats[table].Rows)
	}
	return nil
}

// trackingProcessor decorates a seed.DocumentProcessor with an
// async.IndexProgress counter, so a long seed run over many documents has
// something to report besides silence until the stage completes.
type trackingProcessor struct {
	inner     seed.DocumentProcessor
	progress  *async.IndexProgress
	processed int
}

func newTrackingProcessor(inner seed.DocumentProcessor, progress *async.IndexProgress) *trackingProcessor {
	return &trackingProcessor{inner: inner, progress: progress}
}

func (p *trackingProcessor) ProcessDocument(ctx context.Context, path string, cached *seed.DocumentStageData) (*store.Catalog, []*store.Chunk, *seed.DocumentStageData, error) {
	cat, chunks, toCache, err := p.inner.ProcessDocument(ctx, path, cached)
	p.processed++
	p.progress.UpdateFiles(p.processed)
	if err == nil {
		p.progress.SetChunksTotal(p.progress.Snapshot().ChunksTotal + len(chunks))
		p.progress.UpdateChunks(p.progress.Snapshot().ChunksIndexed + len(chunks))
	}
	return cat, chunks, toCache, err
}

// seedDefaultCategories upserts the starter taxonomy, embedding each
// category's name first so it participates in vector search alongside the
// keyword/alias matching category.Service already provides.
func seedDefaultCategories(ctx context.Context, c *container.Container) error {
	categories := extract.DefaultCategorySeeds()
	for _, cat := range categories {
		vec, err := c.Embedder.Embed(ctx, cat.Category)
		if err != nil {
			return fmt.Errorf("embed category %q: %w", cat.Category, err)
		}
		cat.Vector = vec
	}
	if err := c.Store.Categories.Upsert(ctx, categories); err != nil {
		return fmt.Errorf("upsert default categories: %w", err)
	}
	return c.Category.Refresh(ctx)
}
