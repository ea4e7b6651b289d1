// Package mcpserver exposes the container's search, hierarchy, and
// category services as MCP tools (§6 "Tool-facing interfaces"). Grounded
// on a comparable implementation's internal/mcp/server.go: the same modelcontextprotocol/
// go-sdk wiring (mcp.NewServer, mcp.AddTool with typed Input/Output
// structs, mcp.StdioTransport), generalized from four source-code-search
// tools to the eleven document/concept/category tools this domain needs.
package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/concept-rag/conceptrag/internal/container"
	"github.com/concept-rag/conceptrag/pkg/version"
)

// Server bridges an MCP client to a built Container.
type Server struct {
	mcp    *mcp.Server
	c      *container.Container
	logger *slog.Logger
}

// NewServer builds a Server over an already-wired Container and registers
// every §6 tool.
func NewServer(c *container.Container) (*Server, error) {
	if c == nil {
		return nil, errors.New("mcpserver: container is required")
	}

	s := &Server{
		c:      c,
		logger: slog.Default(),
	}

	s.mcp = mcp.NewServer(&mcp.Implementation{
		Name:    "conceptrag",
		Version: version.Version,
	}, nil)

	s.registerTools()

	return s, nil
}

// toolHandler is the shape mcp.AddTool expects for a typed tool handler.
type toolHandler[In any, Out any] func(context.Context, *mcp.CallToolRequest, In) (*mcp.CallToolResult, Out, error)

// withRequestLogging wraps a handler with per-call request-id log
// correlation (internal/mcp/server.go's generateRequestID), using
// google/uuid in place of a hand-rolled crypto/rand+hex scheme.
func withRequestLogging[In any, Out any](s *Server, tool string, handler toolHandler[In, Out]) toolHandler[In, Out] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input In) (*mcp.CallToolResult, Out, error) {
		requestID := uuid.NewString()
		s.logger.Info("tool call started", slog.String("tool", tool), slog.String("request_id", requestID))
		result, output, err := handler(ctx, req, input)
		if err != nil {
			s.logger.Warn("tool call failed",
				slog.String("tool", tool), slog.String("request_id", requestID), slog.String("error", err.Error()))
			return result, output, err
		}
		s.logger.Info("tool call finished", slog.String("tool", tool), slog.String("request_id", requestID))
		return result, output, err
	}
}

// registerTools registers all eleven §6 tools with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "catalog_search",
		Description: "Hybrid-ranked search over catalog entries (documents). Returns the documents whose title, summary, and embedded meaning best match the query.",
	}, withRequestLogging(s, "catalog_search", s.catalogSearchHandler))

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "chunks_search",
		Description: "Hybrid-ranked search over the chunks of a single source document. Provide source to scope the search, or omit it to search every chunk.",
	}, withRequestLogging(s, "chunks_search", s.chunksSearchHandler))

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "broad_chunks_search",
		Description: "Hybrid-ranked search over every chunk in the store, regardless of source document.",
	}, withRequestLogging(s, "broad_chunks_search", s.broadChunksSearchHandler))

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "concept_search",
		Description: "Look up a concept by name or id and return its densest chunk previews across every source it appears in, plus any associated visuals.",
	}, withRequestLogging(s, "concept_search", s.conceptSearchHandler))

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "source_concepts",
		Description: "List the concepts that appear in one source document, identified by source path or catalog id.",
	}, withRequestLogging(s, "source_concepts", s.sourceConceptsHandler))

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "concept_sources",
		Description: "List the source documents a concept appears in.",
	}, withRequestLogging(s, "concept_sources", s.conceptSourcesHandler))

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "extract_concepts",
		Description: "Given text identifying a document, return its primary concepts, technical terms, and categories.",
	}, withRequestLogging(s, "extract_concepts", s.extractConceptsHandler))

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_categories",
		Description: "List known categories, sorted and optionally filtered, with document/chunk/concept counts.",
	}, withRequestLogging(s, "list_categories", s.listCategoriesHandler))

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "category_search",
		Description: "Resolve a category by name, alias, or id and return its documents and aggregate counts, optionally including descendant categories and chunk previews.",
	}, withRequestLogging(s, "category_search", s.categorySearchHandler))

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_concepts_in_category",
		Description: "List the concepts that appear anywhere in a category's documents.",
	}, withRequestLogging(s, "list_concepts_in_category", s.listConceptsInCategoryHandler))

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_visuals",
		Description: "Fetch visuals (diagrams, charts, figures, tables) by id, catalog entry, or visual type.",
	}, withRequestLogging(s, "get_visuals", s.getVisualsHandler))

	s.logger.Info("mcp tools registered", slog.Int("count", 11))
}

// Serve runs the server over stdio, blocking until ctx is canceled or the
// transport closes. Only stdio is supported: an MCP server reached via
// other transports is out of this container's scope (§1 Non-goals).
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("starting mcp server", slog.String("transport", "stdio"))
	err := s.mcp.Run(ctx, &mcp.StdioTransport{})
	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Error("mcp server stopped with error", slog.String("error", err.Error()))
		return fmt.Errorf("mcpserver: serve: %w", err)
	}
	s.logger.Info("mcp server stopped")
	return nil
}
