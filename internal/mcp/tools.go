// ABOUTME: MCP tool definitions and registration for the docquery server
// ABOUTME: Exposes ingest, query, structured query, clear and document listing
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"docquery/internal/rag"
)

// RegisterTools registers all docquery MCP tools with the server.
func RegisterTools(server *mcpserver.MCPServer, system *rag.System) *Handlers {
	handlers := &Handlers{system: system}

	server.AddTool(mcp.Tool{
		Name:        "ingest_documents",
		Description: "Chunk, embed and index every supported document in a directory. Re-ingesting appends duplicate vectors for unchanged documents.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"directory": map[string]interface{}{
					"type":        "string",
					"description": "Directory to ingest. Defaults to the configured documents directory.",
				},
			},
		},
	}, handlers.IngestDocuments)

	server.AddTool(mcp.Tool{
		Name:        "query_documents",
		Description: "Answer a question grounded in the most relevant indexed chunks, with source attributions.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"question": map[string]interface{}{
					"type":        "string",
					"description": "The question to answer",
				},
				"top_k": map[string]interface{}{
					"type":        "number",
					"description": "Number of chunks to retrieve (default from configuration)",
				},
			},
			Required: []string{"question"},
		},
	}, handlers.QueryDocuments)

	server.AddTool(mcp.Tool{
		Name:        "query_structured",
		Description: "Answer a question with output constrained to a JSON schema. Falls back to raw text with an error marker when the model output is not valid JSON.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"question": map[string]interface{}{
					"type":        "string",
					"description": "The question to answer",
				},
				"response_format": map[string]interface{}{
					"type":        "string",
					"description": "JSON schema for the desired answer shape, as a JSON string",
				},
				"top_k": map[string]interface{}{
					"type":        "number",
					"description": "Number of chunks to retrieve (default from configuration)",
				},
			},
			Required: []string{"question", "response_format"},
		},
	}, handlers.QueryStructured)

	server.AddTool(mcp.Tool{
		Name:        "clear_index",
		Description: "Discard all indexed vectors and metadata and persist the empty index.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.ClearIndex)

	server.AddTool(mcp.Tool{
		Name:        "list_documents",
		Description: "List the ingestable files in the configured documents directory with their sizes.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.ListDocuments)

	return handlers
}
