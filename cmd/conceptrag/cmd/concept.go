package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/concept-rag/conceptrag/internal/output"
)

type conceptOptions struct {
	maxSources int
	maxChunks  int
	format     string
}

func newConceptCmd() *cobra.Command {
	var opts conceptOptions

	cmd := &cobra.Command{
		Use:   "concept <name>",
		Short: "Show a concept's sources and densest chunk previews",
		Long: `Resolves a concept by exact name and assembles its hierarchical view:
the sources (catalog entries) it appears in, and within each source the
chunk previews with the highest concept density.

Example:
  conceptrag concept "distributed consensus"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConcept(cmd, args[0], opts)
		},
	}

	cmd.Flags().IntVar(&opts.maxSources, "max-sources", 5, "Maximum number of sources to show")
	cmd.Flags().IntVar(&opts.maxChunks, "max-chunks", 10, "Maximum total chunk previews across all sources")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")

	return cmd
}

func runConcept(cmd *cobra.Command, name string, opts conceptOptions) error {
	ctx := cmd.Context()
	cfg := loadConfig()

	c, err := buildContainer(ctx, cfg)
	if err != nil {
		return fmt.Errorf("concept: %w", err)
	}
	defer func() { _ = c.Close() }()

	result, err := c.Hierarchy.Search(ctx, name, opts.maxSources, opts.maxChunks)
	if err != nil {
		return fmt.Errorf("concept: %w", err)
	}

	if opts.format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	out := output.New(cmd.OutOrStdout())
	out.Statusf("🧠", "%s", result.Concept)
	if result.Summary != "" {
		out.Status("", result.Summary)
	}
	if len(result.Synonyms) > 0 {
		out.Statusf("", "synonyms: %v", result.Synonyms)
	}
	out.Newline()

	if len(result.Sources) == 0 {
		out.Status("", "No sources found for this concept")
		return nil
	}

	out.Statusf("📚", "%d source(s), %d total matching chunks:", len(result.Sources), result.TotalChunks)
	for _, src := range result.Sources {
		out.Newline()
		out.Statusf("", "%s", src.Title)
		if src.Summary != "" {
			out.Status("", "  "+src.Summary)
		}
		for _, chunk := range src.Chunks {
			out.Status("", fmt.Sprintf("  - [density %.2f] %s", chunk.ConceptDensity, snippet(chunk.Text, 140)))
		}
	}
	return nil
}
