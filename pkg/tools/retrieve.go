// Package tools exposes the retrieval engine as MCP tools.
package tools

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rhonorato-ship-it/metabase-mcp/pkg/retrieve"
	"github.com/rs/zerolog"
)

// RetrieveToolName is the registered name of the retrieve tool.
const RetrieveToolName = "retrieve"

// Retriever runs one retrieval call. *retrieve.Retriever implements it.
type Retriever interface {
	Retrieve(ctx context.Context, args map[string]any, requestID string) (*retrieve.Response, error)
}

// Handler serves tool calls.
type Handler struct {
	retriever Retriever
	logger    zerolog.Logger
	newID     func() string
}

// NewHandler creates a tool handler backed by r.
func NewHandler(r Retriever, logger zerolog.Logger) *Handler {
	return &Handler{
		retriever: r,
		logger:    logger,
		newID:     uuid.NewString,
	}
}

// Tools returns the tools served by h.
func (h *Handler) Tools() []server.ServerTool {
	return []server.ServerTool{
		{Tool: RetrieveTool(), Handler: h.HandleRetrieve},
	}
}

// RetrieveTool describes the retrieve tool and its parameters.
func RetrieveTool() mcp.Tool {
	models := make([]string, len(retrieve.Models))
	for i, m := range retrieve.Models {
		models[i] = string(m)
	}

	return mcp.NewTool(RetrieveToolName,
		mcp.WithDescription("Fetch one or more Metabase cards, dashboards, tables, databases, collections, or fields by ID. "+
			"Responses are compacted as the batch grows: 10+ IDs drop timestamps and analytics, 25+ IDs keep only identifiers and relationships. "+
			"Database tables can be paged with table_offset and table_limit."),
		mcp.WithString("model",
			mcp.Required(),
			mcp.Enum(models...),
			mcp.Description("Kind of entity to retrieve"),
		),
		mcp.WithArray("ids",
			mcp.Required(),
			mcp.Items(map[string]any{"type": "number"}),
			mcp.MinItems(1),
			mcp.MaxItems(retrieve.MaxIDs),
			mcp.Description("Entity IDs, at most 50 (2 for databases)"),
		),
		mcp.WithNumber("table_offset",
			mcp.Min(0),
			mcp.Description("Database only: index of the first table to return (default 0)"),
		),
		mcp.WithNumber("table_limit",
			mcp.Min(1),
			mcp.Max(retrieve.MaxTableLimit),
			mcp.Description("Database only: number of tables to return, 1-100. Omit to return all tables"),
		),
	)
}

// HandleRetrieve runs the retrieve tool. Failures are reported as tool
// errors so the caller sees the message.
func (h *Handler) HandleRetrieve(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	requestID := h.newID()
	start := time.Now()

	resp, err := h.retriever.Retrieve(ctx, request.GetArguments(), requestID)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Str("request_id", requestID).
			Str("tool", RetrieveToolName).
			Dur("duration", time.Since(start)).
			Msg("Tool call failed")
		return mcp.NewToolResultError(err.Error()), nil
	}

	body, err := resp.JSON()
	if err != nil {
		h.logger.Error().Err(err).Str("request_id", requestID).Msg("Failed to encode response")
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(string(body)), nil
}

// NewServer creates an MCP server with every tool of h registered.
func NewServer(h *Handler, version string) *server.MCPServer {
	s := server.NewMCPServer("metabase-mcp", version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	s.AddTools(h.Tools()...)
	return s
}
