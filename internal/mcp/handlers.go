// ABOUTME: MCP tool handler implementations for the docquery server
// ABOUTME: Validates arguments and maps orchestrator results to tool responses
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"docquery/internal/rag"
)

// Handlers contains the handler functions for all MCP tools.
type Handlers struct {
	system *rag.System
}

// IngestDocuments handles the ingest_documents tool.
func (h *Handlers) IngestDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	directory := request.GetString("directory", "")

	report, err := h.system.Ingest(directory)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("ingestion failed: %v", err)), nil
	}

	responseJSON, err := json.Marshal(report)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}

// QueryDocuments handles the query_documents tool.
func (h *Handlers) QueryDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := request.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError("question argument is required and must be a string"), nil
	}
	topK := int(request.GetFloat("top_k", 0))

	response, err := h.system.Query(question, topK)
	if err != nil {
		if errors.Is(err, rag.ErrEmptyQuestion) {
			return mcp.NewToolResultError("question must not be empty"), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("query failed: %v", err)), nil
	}

	responseJSON, err := json.Marshal(response)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}

// QueryStructured handles the query_structured tool. The response_format
// argument arrives as a JSON string and is decoded here so schema errors are
// reported before any model call.
func (h *Handlers) QueryStructured(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := request.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError("question argument is required and must be a string"), nil
	}
	formatJSON, err := request.RequireString("response_format")
	if err != nil {
		return mcp.NewToolResultError("response_format argument is required and must be a string"), nil
	}
	topK := int(request.GetFloat("top_k", 0))

	var responseFormat map[string]interface{}
	if err := json.Unmarshal([]byte(formatJSON), &responseFormat); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("response_format is not valid JSON: %v", err)), nil
	}

	response, err := h.system.QueryStructured(question, responseFormat, topK)
	if err != nil {
		if errors.Is(err, rag.ErrEmptyQuestion) {
			return mcp.NewToolResultError("question must not be empty"), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("structured query failed: %v", err)), nil
	}

	responseJSON, err := json.Marshal(response)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}

// ClearIndex handles the clear_index tool.
func (h *Handlers) ClearIndex(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := h.system.ClearIndex(); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("clear failed: %v", err)), nil
	}

	responseJSON, err := json.Marshal(map[string]string{
		"status":  "success",
		"message": "Vector store index cleared",
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}

// ListDocuments handles the list_documents tool.
func (h *Handlers) ListDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docs, err := h.system.ListDocuments()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing failed: %v", err)), nil
	}

	responseJSON, err := json.Marshal(map[string]interface{}{
		"documents":     docs,
		"count":         len(docs),
		"total_vectors": h.system.TotalVectors(),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}
