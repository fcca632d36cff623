package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"lorebot/internal/pipeline"
	"lorebot/internal/retrieval"
)

// Searcher abstracts raw chunk retrieval for the MCP layer.
type Searcher interface {
	Search(ctx context.Context, category, query string) ([]retrieval.Chunk, error)
}

// Asker abstracts the full question pipeline for the MCP layer.
type Asker interface {
	Answer(ctx context.Context, category, question string) (pipeline.Answer, error)
}

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Search     Searcher
	Asker      Asker
	Categories []string
}

// NewMCPServer creates an MCP server exposing the lore index to agents:
// lore_search returns raw chunks, lore_ask runs the full grounded pipeline.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"lorebot",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions("lorebot — retrieval over a fictional game world's lore, grouped by category: "+strings.Join(deps.Categories, ", ")+"."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("lore_search",
			mcp.WithDescription("Semantically search the lore index and return relevant chunks."),
			mcp.WithString("query", mcp.Description("Search query"), mcp.Required()),
			mcp.WithString("category", mcp.Description("Restrict the search to one category; empty searches all")),
			mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 8)")),
		),
		mcpSearch(deps),
	)

	s.AddTool(
		mcp.NewTool("lore_ask",
			mcp.WithDescription("Ask a lore question and get an answer grounded in the indexed documents."),
			mcp.WithString("question", mcp.Description("The question to answer"), mcp.Required()),
			mcp.WithString("category", mcp.Description("Restrict retrieval to one category; empty searches all")),
		),
		mcpAsk(deps),
	)

	return s
}

func mcpSearch(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return mcpError("query is required"), nil
		}

		category := req.GetString("category", "")
		limit := req.GetInt("limit", 8)
		if limit <= 0 {
			limit = 8
		}
		if limit > 50 {
			limit = 50
		}

		chunks, err := deps.Search.Search(ctx, category, query)
		if err != nil {
			return mcpError(fmt.Sprintf("search failed: %v", err)), nil
		}
		if len(chunks) > limit {
			chunks = chunks[:limit]
		}
		if len(chunks) == 0 {
			return mcpText("[]"), nil
		}

		type chunkResult struct {
			Text     string  `json:"text"`
			Source   string  `json:"source"`
			Category string  `json:"category"`
			Score    float32 `json:"score"`
		}

		results := make([]chunkResult, len(chunks))
		for i, c := range chunks {
			results[i] = chunkResult{
				Text:     c.Text,
				Source:   c.Source,
				Category: c.Category,
				Score:    c.Score,
			}
		}

		b, err := json.Marshal(results)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpAsk(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question, err := req.RequireString("question")
		if err != nil {
			return mcpError("question is required"), nil
		}
		category := req.GetString("category", "")

		ans, err := deps.Asker.Answer(ctx, category, question)
		if err != nil {
			return mcpError(fmt.Sprintf("ask failed: %v", err)), nil
		}

		text := ans.Text
		if !ans.NotFound && len(ans.Sources) > 0 {
			text += "\n\nSources: " + strings.Join(ans.Sources, ", ")
		}
		return mcpText(text), nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
