package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stencilproject/stencil/internal/api"
)

const (
	openAPIResource   = "schema://openapi"
	serverInfoURI     = "info://server"
	endpointsResource = "docs://endpoints"
)

// SchemaResources serves the API contract and server metadata as MCP resources.
type SchemaResources struct {
	serverName    string
	serverVersion string
	baseURL       string
	transport     string
}

// NewSchemaResources creates a new SchemaResources instance.
func NewSchemaResources(serverName, serverVersion, baseURL, transport string) *SchemaResources {
	return &SchemaResources{
		serverName:    serverName,
		serverVersion: serverVersion,
		baseURL:       baseURL,
		transport:     transport,
	}
}

func (r *SchemaResources) OpenAPIResource() mcp.Resource {
	return mcp.NewResource(
		openAPIResource,
		"OpenAPI Specification",
		mcp.WithResourceDescription("The OpenAPI 3.1 document describing the HTTP API"),
		mcp.WithMIMEType("application/json"),
	)
}

func (r *SchemaResources) OpenAPIReadHandler() func(context.Context, mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		document, err := api.OpenAPIDocument()
		if err != nil {
			return nil, fmt.Errorf("load openapi document: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      openAPIResource,
				MIMEType: "application/json",
				Text:     string(document),
			},
		}, nil
	}
}

// ServerInfo describes the running server for MCP clients.
type ServerInfo struct {
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	BaseURL      string   `json:"base_url"`
	Transport    string   `json:"transport"`
	Capabilities []string `json:"capabilities"`
}

func (r *SchemaResources) ServerInfoResource() mcp.Resource {
	return mcp.NewResource(
		serverInfoURI,
		"Server Info",
		mcp.WithResourceDescription("Name, version, and capabilities of this server"),
		mcp.WithMIMEType("application/json"),
	)
}

func (r *SchemaResources) ServerInfoReadHandler() func(context.Context, mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		info := ServerInfo{
			Name:         r.serverName,
			Version:      r.serverVersion,
			BaseURL:      r.baseURL,
			Transport:    r.transport,
			Capabilities: []string{"tools", "resources", "prompts"},
		}

		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal server info: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      serverInfoURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	}
}

func (r *SchemaResources) EndpointsResource() mcp.Resource {
	return mcp.NewResource(
		endpointsResource,
		"API Endpoints",
		mcp.WithResourceDescription("Quick reference for every HTTP endpoint the server exposes"),
		mcp.WithMIMEType("text/markdown"),
	)
}

func (r *SchemaResources) EndpointsReadHandler() func(context.Context, mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      endpointsResource,
				MIMEType: "text/markdown",
				Text:     endpointsReference(r.baseURL),
			},
		}, nil
	}
}

func endpointsReference(baseURL string) string {
	return fmt.Sprintf(`# API Endpoints

Base URL: %s

## Items

- GET    /api/v1/items                              List items (category, available_only, offset, limit)
- GET    /api/v1/items/paginated                    Page-based listing (page, size 1-100)
- POST   /api/v1/items                              Create an item
- POST   /api/v1/items/bulk                         Create several items atomically
- GET    /api/v1/items/search/by-name               Search by name (query parameter q)
- GET    /api/v1/items/search/by-category/{category} Items in one category
- GET    /api/v1/items/stats/summary                Item statistics
- GET    /api/v1/items/{id}                         Fetch one item
- PUT    /api/v1/items/{id}                         Update an item
- DELETE /api/v1/items/{id}                         Delete an item

## Users

- GET    /api/v1/users                              List users (active_only, offset, limit)
- POST   /api/v1/users                              Create a user
- GET    /api/v1/users/search/by-username/{username} Find a user by username
- GET    /api/v1/users/search/by-email/{email}      Find a user by email
- GET    /api/v1/users/stats/summary                User statistics
- GET    /api/v1/users/{id}                         Fetch one user
- PUT    /api/v1/users/{id}                         Update a user
- DELETE /api/v1/users/{id}                         Delete a user
- POST   /api/v1/users/{id}/activate                Mark a user active
- POST   /api/v1/users/{id}/deactivate              Mark a user inactive

## Operational

- GET /health              Full health report
- GET /healthz             Liveness probe
- GET /readyz              Readiness probe
- GET /version             Build information
- GET /metrics             Prometheus metrics
- GET /api/v1/openapi.json OpenAPI document
- GET /docs                Interactive API reference

Identifiers are 26-character ULIDs. Errors use RFC 7807 problem+json.
`, baseURL)
}
