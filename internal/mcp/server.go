// Package mcp wires the store's services into an MCP server.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stencilproject/stencil/internal/domain/items"
	"github.com/stencilproject/stencil/internal/domain/users"
	"github.com/stencilproject/stencil/internal/mcp/prompts"
	"github.com/stencilproject/stencil/internal/mcp/resources"
	"github.com/stencilproject/stencil/internal/mcp/tools"
	"github.com/stencilproject/stencil/internal/metrics"
	"github.com/stencilproject/stencil/internal/storage/memory"
)

// Server exposes the item and user services through MCP tools,
// resources, and prompts.
type Server struct {
	mcp          *mcpserver.MCPServer
	itemsService *items.Service
	usersService *users.Service
	store        *memory.Repository

	itemTools  *tools.ItemTools
	userTools  *tools.UserTools
	adminTools *tools.AdminTools
	catalog    *resources.CatalogResources
	schema     *resources.SchemaResources
	templates  *prompts.PromptTemplates
}

// Config holds configuration for the MCP server.
type Config struct {
	Name      string
	Version   string
	BaseURL   string
	Transport string
}

// NewServer creates an MCP server over the given services and store.
// All capabilities are enabled: tools for CRUD operations, resources
// for live store data, and prompts for common catalog workflows.
func NewServer(
	cfg Config,
	itemsService *items.Service,
	usersService *users.Service,
	store *memory.Repository,
) *Server {
	mcpServer := mcpserver.NewMCPServer(
		cfg.Name,
		cfg.Version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(true, true),
		mcpserver.WithPromptCapabilities(true),
		mcpserver.WithRecovery(),
		mcpserver.WithInstructions("MCP server for the Stencil item and user store - query and manage catalog items and user accounts"),
	)

	srv := &Server{
		mcp:          mcpServer,
		itemsService: itemsService,
		usersService: usersService,
		store:        store,
		itemTools:    tools.NewItemTools(itemsService),
		userTools:    tools.NewUserTools(usersService),
		adminTools:   tools.NewAdminTools(itemsService, usersService, store),
		catalog:      resources.NewCatalogResources(itemsService, usersService),
		schema:       resources.NewSchemaResources(cfg.Name, cfg.Version, cfg.BaseURL, cfg.Transport),
		templates:    prompts.NewPromptTemplates(),
	}

	srv.registerTools()
	srv.registerResources()
	srv.registerPrompts()

	return srv
}

// MCPServer returns the underlying MCP server for use with transports.
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcp
}

func (s *Server) registerTools() {
	s.addTool(s.itemTools.GetItemsTool(), s.itemTools.GetItemsHandler)
	s.addTool(s.itemTools.GetItemTool(), s.itemTools.GetItemHandler)
	s.addTool(s.itemTools.CreateItemTool(), s.itemTools.CreateItemHandler)
	s.addTool(s.itemTools.UpdateItemTool(), s.itemTools.UpdateItemHandler)
	s.addTool(s.itemTools.DeleteItemTool(), s.itemTools.DeleteItemHandler)
	s.addTool(s.itemTools.SearchItemsTool(), s.itemTools.SearchItemsHandler)

	s.addTool(s.userTools.GetUsersTool(), s.userTools.GetUsersHandler)
	s.addTool(s.userTools.GetUserTool(), s.userTools.GetUserHandler)
	s.addTool(s.userTools.CreateUserTool(), s.userTools.CreateUserHandler)
	s.addTool(s.userTools.UpdateUserTool(), s.userTools.UpdateUserHandler)
	s.addTool(s.userTools.DeleteUserTool(), s.userTools.DeleteUserHandler)

	s.addTool(s.adminTools.GetDatabaseStatsTool(), s.adminTools.GetDatabaseStatsHandler)
	s.addTool(s.adminTools.ExportDatabaseTool(), s.adminTools.ExportDatabaseHandler)
}

func (s *Server) registerResources() {
	s.addResource(s.catalog.AllItemsResource(), s.catalog.AllItemsReadHandler())
	s.addResource(s.catalog.CategoriesResource(), s.catalog.CategoriesReadHandler())
	s.addResource(s.catalog.AllUsersResource(), s.catalog.AllUsersReadHandler())
	s.addResource(s.catalog.StatsResource(), s.catalog.StatsReadHandler())

	s.addResource(s.schema.OpenAPIResource(), s.schema.OpenAPIReadHandler())
	s.addResource(s.schema.ServerInfoResource(), s.schema.ServerInfoReadHandler())
	s.addResource(s.schema.EndpointsResource(), s.schema.EndpointsReadHandler())
}

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(s.templates.CreateItemFromTextPrompt(), s.templates.CreateItemFromTextHandler)
	s.mcp.AddPrompt(s.templates.CatalogSummaryPrompt(), s.templates.CatalogSummaryHandler)
	s.mcp.AddPrompt(s.templates.RestockReviewPrompt(), s.templates.RestockReviewHandler)
}

// addTool registers a tool with call counting around its handler.
func (s *Server) addTool(tool mcp.Tool, handler mcpserver.ToolHandlerFunc) {
	name := tool.Name
	s.mcp.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := handler(ctx, request)
		status := "success"
		if err != nil || (result != nil && result.IsError) {
			status = "error"
		}
		metrics.MCPToolCallsTotal.WithLabelValues(name, status).Inc()
		return result, err
	})
}

// addResource registers a resource with read counting around its handler.
func (s *Server) addResource(resource mcp.Resource, handler mcpserver.ResourceHandlerFunc) {
	uri := resource.URI
	s.mcp.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		contents, err := handler(ctx, request)
		if err == nil {
			metrics.MCPResourceReadsTotal.WithLabelValues(uri).Inc()
		}
		return contents, err
	})
}

// Shutdown gracefully shuts down the MCP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return nil
}
