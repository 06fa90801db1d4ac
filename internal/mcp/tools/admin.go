package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stencilproject/stencil/internal/domain/items"
	"github.com/stencilproject/stencil/internal/domain/users"
	"github.com/stencilproject/stencil/internal/storage/memory"
)

// AdminTools provides MCP tools for store-wide statistics and export.
type AdminTools struct {
	itemsService *items.Service
	usersService *users.Service
	store        *memory.Repository
}

// NewAdminTools creates a new AdminTools instance.
func NewAdminTools(itemsService *items.Service, usersService *users.Service, store *memory.Repository) *AdminTools {
	return &AdminTools{
		itemsService: itemsService,
		usersService: usersService,
		store:        store,
	}
}

// GetDatabaseStatsTool returns the MCP tool definition for store statistics.
func (t *AdminTools) GetDatabaseStatsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_database_stats",
		Description: "Get aggregate statistics for the whole store: item counts, category distribution, pricing, and user counts by state and role.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// GetDatabaseStatsHandler handles the get_database_stats tool call.
func (t *AdminTools) GetDatabaseStatsHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t == nil || t.itemsService == nil || t.usersService == nil {
		return mcp.NewToolResultError("services not configured"), nil
	}

	itemStats, err := t.itemsService.Stats(ctx)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("failed to compute item stats", err), nil
	}
	userStats, err := t.usersService.Stats(ctx)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("failed to compute user stats", err), nil
	}

	return toolResultJSON(map[string]any{
		"items": itemStats,
		"users": userStats,
	})
}

// ExportDatabaseTool returns the MCP tool definition for exporting the store.
func (t *AdminTools) ExportDatabaseTool() mcp.Tool {
	return mcp.Tool{
		Name:        "export_database",
		Description: "Export every record in the store as a JSON snapshot with an exported_at timestamp. Each table is consistent at read time.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// ExportDatabaseHandler handles the export_database tool call.
func (t *AdminTools) ExportDatabaseHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t == nil || t.store == nil {
		return mcp.NewToolResultError("store not configured"), nil
	}

	snapshot, err := t.store.Snapshot(ctx)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("failed to export store", err), nil
	}

	return toolResultJSON(snapshot)
}
