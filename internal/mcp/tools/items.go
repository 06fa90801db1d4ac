package tools

import (
	"context"
	"errors"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stencilproject/stencil/internal/domain/ids"
	"github.com/stencilproject/stencil/internal/domain/items"
)

// ItemTools provides MCP tools for querying and managing the item catalog.
type ItemTools struct {
	itemsService *items.Service
}

// NewItemTools creates a new ItemTools instance.
func NewItemTools(itemsService *items.Service) *ItemTools {
	return &ItemTools{itemsService: itemsService}
}

// GetItemsTool returns the MCP tool definition for listing items.
func (t *ItemTools) GetItemsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_items",
		Description: "List items from the catalog with optional category and availability filters. Returns a JSON array of items plus the total count.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"category": map[string]interface{}{
					"type":        "string",
					"description": "Filter items by exact category name",
				},
				"available_only": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, only return items that are available",
					"default":     false,
				},
				"offset": map[string]interface{}{
					"type":        "integer",
					"description": "Number of items to skip for pagination",
					"default":     0,
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of items to return (default 100, max 1000)",
					"default":     100,
				},
			},
		},
	}
}

// GetItemsHandler handles the get_items tool call.
func (t *ItemTools) GetItemsHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t == nil || t.itemsService == nil {
		return mcp.NewToolResultError("items service not configured"), nil
	}

	args := struct {
		Category      string `json:"category"`
		AvailableOnly bool   `json:"available_only"`
		Offset        int    `json:"offset"`
		Limit         int    `json:"limit"`
	}{
		Limit: items.DefaultLimit,
	}
	if err := parseArgs(request, &args); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid arguments", err), nil
	}

	if args.Offset < 0 {
		return mcp.NewToolResultError("offset must not be negative"), nil
	}
	if args.Limit < 1 || args.Limit > items.MaxLimit {
		return mcp.NewToolResultError("limit must be between 1 and 1000"), nil
	}

	result, err := t.itemsService.List(ctx, items.Filters{
		Category:      strings.TrimSpace(args.Category),
		AvailableOnly: args.AvailableOnly,
	}, items.Pagination{Offset: args.Offset, Limit: args.Limit})
	if err != nil {
		return mcp.NewToolResultErrorFromErr("failed to list items", err), nil
	}

	return toolResultJSON(map[string]any{
		"items": result.Items,
		"total": result.Total,
	})
}

// GetItemTool returns the MCP tool definition for getting a single item.
func (t *ItemTools) GetItemTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_item",
		Description: "Get detailed information about a specific item by its ULID.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "string",
					"description": "The ULID of the item to retrieve",
				},
			},
			Required: []string{"id"},
		},
	}
}

// GetItemHandler handles the get_item tool call.
func (t *ItemTools) GetItemHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t == nil || t.itemsService == nil {
		return mcp.NewToolResultError("items service not configured"), nil
	}

	args := struct {
		ID string `json:"id"`
	}{}
	if err := parseArgs(request, &args); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid arguments", err), nil
	}

	if args.ID == "" {
		return mcp.NewToolResultError("id parameter is required"), nil
	}
	if err := ids.ValidateULID(args.ID); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid ULID format", err), nil
	}

	item, err := t.itemsService.Get(ctx, args.ID)
	if err != nil {
		if errors.Is(err, items.ErrNotFound) {
			return mcp.NewToolResultErrorf("item not found: %s", args.ID), nil
		}
		return mcp.NewToolResultErrorFromErr("failed to get item", err), nil
	}

	return toolResultJSON(item)
}

// CreateItemTool returns the MCP tool definition for creating an item.
func (t *ItemTools) CreateItemTool() mcp.Tool {
	return mcp.Tool{
		Name:        "create_item",
		Description: "Create a new item in the catalog. Returns the created item with its assigned ULID and timestamps.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Item name (1-200 characters)",
				},
				"description": map[string]interface{}{
					"type":        "string",
					"description": "Optional item description",
				},
				"price": map[string]interface{}{
					"type":        "number",
					"description": "Item price, must be greater than zero",
				},
				"category": map[string]interface{}{
					"type":        "string",
					"description": "Item category (defaults to 'uncategorized')",
				},
				"is_available": map[string]interface{}{
					"type":        "boolean",
					"description": "Whether the item is available (default true)",
				},
				"tags": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Optional tags (max 20)",
				},
			},
			Required: []string{"name", "price"},
		},
	}
}

// CreateItemHandler handles the create_item tool call.
func (t *ItemTools) CreateItemHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t == nil || t.itemsService == nil {
		return mcp.NewToolResultError("items service not configured"), nil
	}

	var params items.CreateParams
	if err := parseArgs(request, &params); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid arguments", err), nil
	}

	item, err := t.itemsService.Create(ctx, params)
	if err != nil {
		var verr items.ValidationError
		if errors.As(err, &verr) {
			return mcp.NewToolResultErrorFromErr("validation failed", err), nil
		}
		return mcp.NewToolResultErrorFromErr("failed to create item", err), nil
	}

	return toolResultJSON(item)
}

// UpdateItemTool returns the MCP tool definition for updating an item.
func (t *ItemTools) UpdateItemTool() mcp.Tool {
	return mcp.Tool{
		Name:        "update_item",
		Description: "Update an existing item. Only the provided fields are changed; omitted fields keep their current values.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "string",
					"description": "The ULID of the item to update",
				},
				"name": map[string]interface{}{
					"type":        "string",
					"description": "New item name",
				},
				"description": map[string]interface{}{
					"type":        "string",
					"description": "New description",
				},
				"price": map[string]interface{}{
					"type":        "number",
					"description": "New price, must be greater than zero",
				},
				"category": map[string]interface{}{
					"type":        "string",
					"description": "New category",
				},
				"is_available": map[string]interface{}{
					"type":        "boolean",
					"description": "New availability state",
				},
				"tags": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Replacement tag list",
				},
			},
			Required: []string{"id"},
		},
	}
}

// UpdateItemHandler handles the update_item tool call.
func (t *ItemTools) UpdateItemHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t == nil || t.itemsService == nil {
		return mcp.NewToolResultError("items service not configured"), nil
	}

	args := struct {
		ID string `json:"id"`
		items.UpdateParams
	}{}
	if err := parseArgs(request, &args); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid arguments", err), nil
	}

	if args.ID == "" {
		return mcp.NewToolResultError("id parameter is required"), nil
	}
	if err := ids.ValidateULID(args.ID); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid ULID format", err), nil
	}

	item, err := t.itemsService.Update(ctx, args.ID, args.UpdateParams)
	if err != nil {
		if errors.Is(err, items.ErrNotFound) {
			return mcp.NewToolResultErrorf("item not found: %s", args.ID), nil
		}
		return mcp.NewToolResultErrorFromErr("failed to update item", err), nil
	}

	return toolResultJSON(item)
}

// DeleteItemTool returns the MCP tool definition for deleting an item.
func (t *ItemTools) DeleteItemTool() mcp.Tool {
	return mcp.Tool{
		Name:        "delete_item",
		Description: "Delete an item from the catalog by its ULID. Returns a confirmation with the deleted item.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "string",
					"description": "The ULID of the item to delete",
				},
			},
			Required: []string{"id"},
		},
	}
}

// DeleteItemHandler handles the delete_item tool call.
func (t *ItemTools) DeleteItemHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t == nil || t.itemsService == nil {
		return mcp.NewToolResultError("items service not configured"), nil
	}

	args := struct {
		ID string `json:"id"`
	}{}
	if err := parseArgs(request, &args); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid arguments", err), nil
	}

	if args.ID == "" {
		return mcp.NewToolResultError("id parameter is required"), nil
	}
	if err := ids.ValidateULID(args.ID); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid ULID format", err), nil
	}

	item, err := t.itemsService.Get(ctx, args.ID)
	if err != nil {
		if errors.Is(err, items.ErrNotFound) {
			return mcp.NewToolResultErrorf("item not found: %s", args.ID), nil
		}
		return mcp.NewToolResultErrorFromErr("failed to get item", err), nil
	}

	if err := t.itemsService.Delete(ctx, args.ID); err != nil {
		return mcp.NewToolResultErrorFromErr("failed to delete item", err), nil
	}

	return toolResultJSON(map[string]any{
		"success":      true,
		"message":      "Item '" + item.Name + "' deleted successfully",
		"deleted_item": item,
	})
}

// SearchItemsTool returns the MCP tool definition for searching items.
func (t *ItemTools) SearchItemsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_items",
		Description: "Search items by a case-insensitive substring match on name, category, or description.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search term",
				},
				"search_field": map[string]interface{}{
					"type":        "string",
					"description": "Field to search in (name, category, description)",
					"enum":        items.ValidSearchFields(),
					"default":     string(items.SearchByName),
				},
			},
			Required: []string{"query"},
		},
	}
}

// SearchItemsHandler handles the search_items tool call.
func (t *ItemTools) SearchItemsHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t == nil || t.itemsService == nil {
		return mcp.NewToolResultError("items service not configured"), nil
	}

	args := struct {
		Query       string `json:"query"`
		SearchField string `json:"search_field"`
	}{
		SearchField: string(items.SearchByName),
	}
	if err := parseArgs(request, &args); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid arguments", err), nil
	}

	if strings.TrimSpace(args.Query) == "" {
		return mcp.NewToolResultError("query parameter is required"), nil
	}

	matches, err := t.itemsService.Search(ctx, args.Query, items.SearchField(args.SearchField))
	if err != nil {
		var ferr items.FilterError
		if errors.As(err, &ferr) {
			return mcp.NewToolResultErrorFromErr("invalid search field", err), nil
		}
		return mcp.NewToolResultErrorFromErr("failed to search items", err), nil
	}

	return toolResultJSON(map[string]any{
		"items":        matches,
		"count":        len(matches),
		"query":        args.Query,
		"search_field": args.SearchField,
	})
}
