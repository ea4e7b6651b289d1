package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/concept-rag/conceptrag/internal/output"
)

func newCategoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "category",
		Short: "Resolve categories and inspect the category hierarchy",
	}

	cmd.AddCommand(newCategoryShowCmd())
	cmd.AddCommand(newCategoryListCmd())
	return cmd
}

type categoryShowOptions struct {
	includeChildren bool
	format          string
}

func newCategoryShowCmd() *cobra.Command {
	var opts categoryShowOptions

	cmd := &cobra.Command{
		Use:   "show <name-or-alias-or-id>",
		Short: "Resolve a category and show its hierarchy path, document counts, and members",
		Long: `Resolves query by, in order, alias, exact name, numeric id, then fuzzy
name match. On failure, prints up to 5 "did you mean" suggestions instead.

Example:
  conceptrag category show "dist-sys"
  conceptrag category show Mathematics --include-children`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCategoryShow(cmd, args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.includeChildren, "include-children", false, "Sum document/chunk/concept counts across descendant categories too")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")

	return cmd
}

type categoryShowResult struct {
	ID              uint32   `json:"id"`
	Name            string   `json:"name"`
	Description     string   `json:"description,omitempty"`
	HierarchyPath   []string `json:"hierarchy_path"`
	Documents       int      `json:"documents"`
	Chunks          int      `json:"chunks"`
	Concepts        int      `json:"concepts"`
	IncludeChildren bool     `json:"include_children"`
}

func runCategoryShow(cmd *cobra.Command, query string, opts categoryShowOptions) error {
	ctx := cmd.Context()
	cfg := loadConfig()

	c, err := buildContainer(ctx, cfg)
	if err != nil {
		return fmt.Errorf("category: %w", err)
	}
	defer func() { _ = c.Close() }()

	cat, found, err := c.Category.Resolve(ctx, query)
	if err != nil {
		return fmt.Errorf("category: resolve %q: %w", query, err)
	}
	if !found {
		suggestions := c.Category.SuggestSimilar(query)
		if len(suggestions) > 0 {
			return fmt.Errorf("category: %q not found; did you mean: %s?", query, strings.Join(suggestions, ", "))
		}
		return fmt.Errorf("category: %q not found", query)
	}

	path, err := c.Category.GetHierarchyPath(ctx, cat.ID)
	if err != nil {
		return fmt.Errorf("category: hierarchy path: %w", err)
	}

	docs, chunks, concepts, err := c.Category.AggregateCounts(ctx, cat.ID, opts.includeChildren)
	if err != nil {
		return fmt.Errorf("category: aggregate counts: %w", err)
	}

	result := categoryShowResult{
		ID:              cat.ID,
		Name:            cat.Category,
		Description:     cat.Description,
		HierarchyPath:   path,
		Documents:       docs,
		Chunks:          chunks,
		Concepts:        concepts,
		IncludeChildren: opts.includeChildren,
	}

	if opts.format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	out := output.New(cmd.OutOrStdout())
	out.Statusf("🗂️ ", "%s", strings.Join(path, " > "))
	if result.Description != "" {
		out.Status("", result.Description)
	}
	suffix := ""
	if opts.includeChildren {
		suffix = " (including descendants)"
	}
	out.Statusf("", "%d documents, %d chunks, %d concepts%s", docs, chunks, concepts, suffix)
	return nil
}

func newCategoryListCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list <name-or-alias-or-id>",
		Short: "List the catalog entries filed under a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCategoryList(cmd, args[0], jsonOutput)
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func runCategoryList(cmd *cobra.Command, query string, jsonOutput bool) error {
	ctx := cmd.Context()
	cfg := loadConfig()

	c, err := buildContainer(ctx, cfg)
	if err != nil {
		return fmt.Errorf("category: %w", err)
	}
	defer func() { _ = c.Close() }()

	cat, found, err := c.Category.Resolve(ctx, query)
	if err != nil {
		return fmt.Errorf("category: resolve %q: %w", query, err)
	}
	if !found {
		return fmt.Errorf("category: %q not found", query)
	}

	rows, err := c.Category.FindByCategory(ctx, cat.ID)
	if err != nil {
		return fmt.Errorf("category: list members: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	out := output.New(cmd.OutOrStdout())
	if len(rows) == 0 {
		out.Status("", fmt.Sprintf("No documents filed under %q", cat.Category))
		return nil
	}
	out.Statusf("🗂️ ", "%d document(s) under %s:", len(rows), cat.Category)
	for _, row := range rows {
		out.Statusf("", "- %s (%s)", row.Title, row.Source)
	}
	return nil
}
