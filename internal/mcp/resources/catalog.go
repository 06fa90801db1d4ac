// Package resources exposes read-only MCP resources over the shared store.
package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stencilproject/stencil/internal/domain/items"
	"github.com/stencilproject/stencil/internal/domain/users"
)

const (
	catalogMIMEType = "application/json"

	allItemsResource   = "items://all"
	categoriesResource = "items://categories"
	allUsersResource   = "users://all"
	statsResource      = "stats://database"
)

// CatalogResources serves live store data as MCP resources.
type CatalogResources struct {
	itemsService *items.Service
	usersService *users.Service
}

// NewCatalogResources creates a new CatalogResources instance.
func NewCatalogResources(itemsService *items.Service, usersService *users.Service) *CatalogResources {
	return &CatalogResources{
		itemsService: itemsService,
		usersService: usersService,
	}
}

func (r *CatalogResources) AllItemsResource() mcp.Resource {
	return mcp.NewResource(
		allItemsResource,
		"All Items",
		mcp.WithResourceDescription("Every item in the catalog as a JSON array"),
		mcp.WithMIMEType(catalogMIMEType),
	)
}

func (r *CatalogResources) AllItemsReadHandler() func(context.Context, mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		result, err := r.itemsService.List(ctx, items.Filters{}, items.Pagination{Limit: items.MaxLimit})
		if err != nil {
			return nil, fmt.Errorf("list items: %w", err)
		}
		return jsonContents(request, allItemsResource, result.Items)
	}
}

// categorySummary aggregates one category for the items://categories resource.
type categorySummary struct {
	Count      int      `json:"count"`
	Available  int      `json:"available"`
	TotalValue float64  `json:"total_value"`
	Items      []string `json:"items"`
}

func (r *CatalogResources) CategoriesResource() mcp.Resource {
	return mcp.NewResource(
		categoriesResource,
		"Item Categories",
		mcp.WithResourceDescription("Per-category item counts, availability, and total value"),
		mcp.WithMIMEType(catalogMIMEType),
	)
}

func (r *CatalogResources) CategoriesReadHandler() func(context.Context, mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		result, err := r.itemsService.List(ctx, items.Filters{}, items.Pagination{Limit: items.MaxLimit})
		if err != nil {
			return nil, fmt.Errorf("list items: %w", err)
		}

		categories := make(map[string]*categorySummary)
		for _, item := range result.Items {
			summary, ok := categories[item.Category]
			if !ok {
				summary = &categorySummary{}
				categories[item.Category] = summary
			}
			summary.Count++
			summary.TotalValue += item.Price
			if item.IsAvailable {
				summary.Available++
			}
			summary.Items = append(summary.Items, item.Name)
		}

		return jsonContents(request, categoriesResource, categories)
	}
}

func (r *CatalogResources) AllUsersResource() mcp.Resource {
	return mcp.NewResource(
		allUsersResource,
		"All Users",
		mcp.WithResourceDescription("Every user in the store as a JSON array"),
		mcp.WithMIMEType(catalogMIMEType),
	)
}

func (r *CatalogResources) AllUsersReadHandler() func(context.Context, mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		result, err := r.usersService.List(ctx, users.Filters{}, users.Pagination{Limit: users.MaxLimit})
		if err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		return jsonContents(request, allUsersResource, result.Users)
	}
}

func (r *CatalogResources) StatsResource() mcp.Resource {
	return mcp.NewResource(
		statsResource,
		"Database Statistics",
		mcp.WithResourceDescription("Aggregate item and user statistics for the whole store"),
		mcp.WithMIMEType(catalogMIMEType),
	)
}

func (r *CatalogResources) StatsReadHandler() func(context.Context, mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		itemStats, err := r.itemsService.Stats(ctx)
		if err != nil {
			return nil, fmt.Errorf("item stats: %w", err)
		}
		userStats, err := r.usersService.Stats(ctx)
		if err != nil {
			return nil, fmt.Errorf("user stats: %w", err)
		}

		return jsonContents(request, statsResource, map[string]any{
			"items": itemStats,
			"users": userStats,
		})
	}
}

func jsonContents(request mcp.ReadResourceRequest, fallbackURI string, payload any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal resource payload: %w", err)
	}

	responseURI := fallbackURI
	if request.Params.URI != "" {
		responseURI = request.Params.URI
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      responseURI,
			MIMEType: catalogMIMEType,
			Text:     string(data),
		},
	}, nil
}
