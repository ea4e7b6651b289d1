package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/concept-rag/conceptrag/internal/container"
	"github.com/concept-rag/conceptrag/internal/output"
	"github.com/concept-rag/conceptrag/internal/search"
	"github.com/concept-rag/conceptrag/internal/store"
)

type searchOptions struct {
	collection string
	limit      int
	source     string
	format     string
	debug      bool
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Hybrid search over catalog, chunks, or concepts",
		Long: `Ranks rows in one collection (catalog, chunks, or concepts) by a
weighted sum of vector/BM25/title/WordNet component scores.

Examples:
  conceptrag search "distributed consensus"
  conceptrag search "distributed consensus" --collection chunks --source docs/raft.md
  conceptrag search "distributed consensus" --collection concepts --debug`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.collection, "collection", "c", "catalog", "Collection to search: catalog, chunks, concepts")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 10, "Maximum number of results")
	cmd.Flags().StringVarP(&opts.source, "source", "s", "", "Scope a chunks search to one source document path")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Show the four raw component scores and weights used")

	return cmd
}

func runSearch(cmd *cobra.Command, query string, opts searchOptions) error {
	ctx := cmd.Context()
	cfg := loadConfig()

	c, err := buildContainer(ctx, cfg)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	defer func() { _ = c.Close() }()

	collection, err := parseCollection(opts.collection)
	if err != nil {
		return err
	}

	catalogID, err := resolveSourceScope(ctx, c, collection, opts.source)
	if err != nil {
		return err
	}

	results, err := c.Search.Search(ctx, collection, query, opts.limit, catalogID)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	if opts.format == "json" {
		return printSearchJSON(cmd, results)
	}
	return printSearchText(cmd, c, collection, query, results, opts.debug)
}

func parseCollection(s string) (search.Collection, error) {
	switch strings.ToLower(s) {
	case "catalog", "":
		return search.CollectionCatalog, nil
	case "chunks":
		return search.CollectionChunks, nil
	case "concepts":
		return search.CollectionConcepts, nil
	default:
		return "", fmt.Errorf("search: unknown collection %q (want catalog, chunks, or concepts)", s)
	}
}

func resolveSourceScope(ctx context.Context, c *container.Container, collection search.Collection, source string) (*uint32, error) {
	if source == "" || collection != search.CollectionChunks {
		return nil, nil
	}
	rows, err := c.Store.Catalog.Where(ctx, store.Eq("source", source), 1)
	if err != nil {
		return nil, fmt.Errorf("search: resolve source %q: %w", source, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("search: source %q not found", source)
	}
	id := rows[0].ID
	return &id, nil
}

func printSearchJSON(cmd *cobra.Command, results []search.Result) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

func printSearchText(cmd *cobra.Command, c *container.Container, collection search.Collection, query string, results []search.Result, debug bool) error {
	out := output.New(cmd.OutOrStdout())
	if len(results) == 0 {
		out.Status("", fmt.Sprintf("No results found for %q", query))
		return nil
	}

	weights := search.WeightsFor(collection)
	out.Statusf("🔍", "Found %d results for %q:", len(results), query)
	out.Newline()

	for i, r := range results {
		label, detail, err := describeRow(cmd.Context(), c, collection, r.ID)
		if err != nil {
			return err
		}
		out.Statusf("", "%d. %s (score: %.3f)", i+1, label, r.Score)
		if detail != "" {
			out.Status("", "   "+detail)
		}
		if debug {
			out.Status("", fmt.Sprintf(
				"   vector=%.3f(w=%.2f) bm25=%.3f(w=%.2f) title=%.3f(w=%.2f) wordnet=%.3f(w=%.2f)",
				r.Components.Vector, weights.Vector,
				r.Components.BM25, weights.BM25,
				r.Components.Title, weights.Title,
				r.Components.WordNet, weights.WordNet,
			))
		}
		out.Newline()
	}
	return nil
}

func describeRow(ctx context.Context, c *container.Container, collection search.Collection, id uint32) (label, detail string, err error) {
	switch collection {
	case search.CollectionCatalog:
		row, found, err := c.Store.Catalog.Get(ctx, id)
		if err != nil || !found {
			return fmt.Sprintf("catalog #%d", id), "", err
		}
		return row.Title, row.Source, nil
	case search.CollectionChunks:
		row, found, err := c.Store.Chunks.Get(ctx, id)
		if err != nil || !found {
			return fmt.Sprintf("chunk #%d", id), "", err
		}
		return fmt.Sprintf("chunk #%d (catalog #%d)", row.ID, row.CatalogID), snippet(row.Text, 160), nil
	case search.CollectionConcepts:
		row, found, err := c.Store.Concepts.Get(ctx, id)
		if err != nil || !found {
			return fmt.Sprintf("concept #%d", id), "", err
		}
		return row.Concept, row.Summary, nil
	default:
		return fmt.Sprintf("#%d", id), "", nil
	}
}

func snippet(text string, maxLen int) string {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\n", " "))
	r := []rune(text)
	if len(r) <= maxLen {
		return text
	}
	return string(r[:maxLen]) + "..."
}
