package tools

import (
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

// parseArgs decodes tool call arguments into target via a JSON round trip.
// A nil arguments map leaves target at its defaults.
func parseArgs(request mcp.CallToolRequest, target any) error {
	if request.Params.Arguments == nil {
		return nil
	}
	data, err := json.Marshal(request.Params.Arguments)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, target)
}

// toolResultJSON converts a payload to an MCP tool result with JSON content.
// Returns a tool error result if the conversion fails.
func toolResultJSON(payload any) (*mcp.CallToolResult, error) {
	resultJSON, err := mcp.NewToolResultJSON(payload)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("failed to build response", err), nil
	}
	return resultJSON, nil
}
