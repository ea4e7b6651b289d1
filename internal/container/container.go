// Package container wires every subsystem into one process in a fixed
// dependency order, exposing typed handles to the tool layer. The root
// command of a comparable CLI performs the same kind of startup wiring
// inline in the root command rather than through a separate container
// type — generalized here into its own package since the order itself
// (resilience+embedding first, then store, then caches, then
// repositories, then search services, then tools) is an invariant worth
// making explicit and independently testable rather than left implicit
// in a cobra RunE closure.
package container

import (
	"context"
	"fmt"
	"time"

	"github.com/concept-rag/conceptrag/internal/cache"
	"github.com/concept-rag/conceptrag/internal/category"
	"github.com/concept-rag/conceptrag/internal/embedding"
	"github.com/concept-rag/conceptrag/internal/expand"
	"github.com/concept-rag/conceptrag/internal/hierarchy"
	"github.com/concept-rag/conceptrag/internal/idcache"
	"github.com/concept-rag/conceptrag/internal/resilience"
	"github.com/concept-rag/conceptrag/internal/search"
	"github.com/concept-rag/conceptrag/internal/store"
)

// Options configures a Container build.
type Options struct {
	// DatabasePath is passed straight to store.Open; "" opens an
	// in-memory store (used by tests and the static-embedding offline path).
	DatabasePath string
	// Embedder is the shared embedding backend. If nil, a StaticEmbedder
	// is used (offline/deterministic default, matching the CLI's
	// --offline flag default path).
	Embedder embedding.Embedder
	// Lexicon supplies the query expander's synonym/hypernym/hyponym
	// lookups. If nil, expand.DefaultLexicon() is used.
	Lexicon expand.Lexicon
	// EmbeddingCacheSize/EmbeddingCacheTTL size the LRU wrapped around the
	// embedder (§4.10). Zero values fall back to cache's own defaults.
	EmbeddingCacheSize int
	EmbeddingCacheTTL  time.Duration
	// ResilienceProfiles, keyed by operation name ("embedding", "store"),
	// override the resilience.Kernel's built-in profile for that name the
	// first time it's exercised (§4.11). Nil leaves every operation on its
	// package-level default profile.
	ResilienceProfiles map[string]resilience.Profile
}

// Container holds every wired component, built in the order §4.13
// mandates: resilience kernel and embedding service first, then the
// store, then the concept/category id cache (requires the store), then
// the query expander and hierarchical/category services (repositories
// built on the store and id cache), then the search engine (requires
// the repositories and the resilience kernel). Shutdown (Close) reverses
// this order.
type Container struct {
	Resilience *resilience.Kernel
	Embedder   embedding.Embedder
	Store      *store.Store
	IDs        *idcache.Cache
	Expander   *expand.Expander
	Search     *search.Engine
	Hierarchy  *hierarchy.Service
	Category   *category.Service
}

// Build wires a Container per §4.13's fixed order. A missing concept or
// category table at store-open time is tolerated: idcache.New and
// category.New both degrade to empty state rather than fail, so
// dependent services return "no results" for their domain instead of
// preventing the container from starting.
func Build(ctx context.Context, opts Options) (*Container, error) {
	kernel := resilience.NewKernel()
	for name, profile := range opts.ResilienceProfiles {
		kernel.RegisterProfile(name, profile)
	}

	embedder := opts.Embedder
	if embedder == nil {
		embedder = embedding.NewStaticEmbedder()
	}
	embedder = cache.NewCachedEmbedder(embedder, opts.EmbeddingCacheSize, opts.EmbeddingCacheTTL)

	s, err := store.Open(opts.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("container: open store: %w", err)
	}

	ids, err := idcache.New(ctx, s.Concepts, s.Categories)
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("container: build id cache: %w", err)
	}

	lexicon := opts.Lexicon
	if lexicon == nil {
		lexicon = expand.DefaultLexicon()
	}
	expander := expand.New(embedder, s.Concepts, ids, lexicon)

	searchEngine := search.New(s, embedder, expander, ids)
	searchEngine.UseKernel(kernel)
	hierarchyService := hierarchy.New(s.Concepts, s.Catalog, s.Chunks)

	categoryService, err := category.New(ctx, s.Categories, s.Catalog)
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("container: build category service: %w", err)
	}

	return &Container{
		Resilience: kernel,
		Embedder:   embedder,
		Store:      s,
		IDs:        ids,
		Expander:   expander,
		Search:     searchEngine,
		Hierarchy:  hierarchyService,
		Category:   categoryService,
	}, nil
}

// Close shuts down the container in the reverse of Build's order: the
// category service's in-memory index first, then the store (which may
// hold file handles), then the embedder (which may hold a model/network
// resource). The resilience kernel and the read-only id cache/search
// engine/hierarchy service hold no closeable resources of their own.
func (c *Container) Close() error {
	var firstErr error
	if err := c.Category.Close(); err != nil {
		firstErr = fmt.Errorf("container: close category service: %w", err)
	}
	if err := c.Store.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("container: close store: %w", err)
	}
	if err := c.Embedder.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("container: close embedder: %w", err)
	}
	return firstErr
}
