// Package mcp exposes a tool registry as a Model Context Protocol server,
// so MCP clients such as desktop assistants can call get_restaurants
// directly.
//
//	registry := tool.NewRegistry().Add(restaurant.Tool(catalog, logger))
//	if err := mcp.ServeStdio(registry, mcp.WithName("tablebridge")); err != nil {
//	    log.Fatal(err)
//	}
package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	ai "github.com/spetersoncode/tablebridge"
)

// ToMCPTool converts a tool definition. Its JSON schema becomes the MCP
// tool's RawInputSchema.
func ToMCPTool(t ai.Tool) mcp.Tool {
	return mcp.NewToolWithRawSchema(t.Name, t.Description, t.Parameters)
}

// ToMCPTools converts a slice of tool definitions.
func ToMCPTools(tools []ai.Tool) []mcp.Tool {
	result := make([]mcp.Tool, len(tools))
	for i, t := range tools {
		result[i] = ToMCPTool(t)
	}
	return result
}

// FromMCPCallToolRequest converts an MCP call into a registry call.
// Missing arguments become an empty object.
func FromMCPCallToolRequest(req mcp.CallToolRequest) (ai.ToolCall, error) {
	args := "{}"
	if req.Params.Arguments != nil {
		data, err := json.Marshal(req.Params.Arguments)
		if err != nil {
			return ai.ToolCall{}, fmt.Errorf("failed to marshal arguments: %w", err)
		}
		args = string(data)
	}
	return ai.ToolCall{
		ID:        "mcp_" + req.Params.Name,
		Name:      req.Params.Name,
		Arguments: args,
	}, nil
}

// ToMCPCallToolResult converts a tool result.
func ToMCPCallToolResult(result ai.ToolResult) *mcp.CallToolResult {
	if result.IsError {
		return mcp.NewToolResultError(result.Content)
	}
	return mcp.NewToolResultText(result.Content)
}
