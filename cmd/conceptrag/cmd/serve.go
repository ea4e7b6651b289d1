package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/concept-rag/conceptrag/internal/mcpserver"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the container's search/hierarchy/category tools over MCP (stdio)",
		Long: `Starts an MCP server over stdio exposing catalog_search, chunks_search,
broad_chunks_search, concept_search, source_concepts, concept_sources,
extract_concepts, list_categories, category_search, list_concepts_in_category,
and get_visuals to an MCP client.

MCP requires stdout to carry only JSON-RPC traffic: no status output is
printed before the server starts. Use --debug to route diagnostics to
~/.conceptrag/logs/ instead.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd)
		},
	}
	return cmd
}

func runServe(cmd *cobra.Command) error {
	ctx := cmd.Context()
	cfg := loadConfig()

	c, err := buildContainer(ctx, cfg)
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	defer func() { _ = c.Close() }()

	server, err := mcpserver.NewServer(c)
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return server.Serve(ctx)
}
