package tools

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stencilproject/stencil/internal/domain/ids"
	"github.com/stencilproject/stencil/internal/domain/users"
)

// UserTools provides MCP tools for querying and managing user accounts.
type UserTools struct {
	usersService *users.Service
}

// NewUserTools creates a new UserTools instance.
func NewUserTools(usersService *users.Service) *UserTools {
	return &UserTools{usersService: usersService}
}

// GetUsersTool returns the MCP tool definition for listing users.
func (t *UserTools) GetUsersTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_users",
		Description: "List user accounts with an optional active-only filter. Returns a JSON array of users plus the total count.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"active_only": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, only return active users",
					"default":     false,
				},
				"offset": map[string]interface{}{
					"type":        "integer",
					"description": "Number of users to skip for pagination",
					"default":     0,
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of users to return (default 100, max 1000)",
					"default":     100,
				},
			},
		},
	}
}

// GetUsersHandler handles the get_users tool call.
func (t *UserTools) GetUsersHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t == nil || t.usersService == nil {
		return mcp.NewToolResultError("users service not configured"), nil
	}

	args := struct {
		ActiveOnly bool `json:"active_only"`
		Offset     int  `json:"offset"`
		Limit      int  `json:"limit"`
	}{
		Limit: users.DefaultLimit,
	}
	if err := parseArgs(request, &args); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid arguments", err), nil
	}

	if args.Offset < 0 {
		return mcp.NewToolResultError("offset must not be negative"), nil
	}
	if args.Limit < 1 || args.Limit > users.MaxLimit {
		return mcp.NewToolResultError("limit must be between 1 and 1000"), nil
	}

	result, err := t.usersService.List(ctx, users.Filters{ActiveOnly: args.ActiveOnly}, users.Pagination{Offset: args.Offset, Limit: args.Limit})
	if err != nil {
		return mcp.NewToolResultErrorFromErr("failed to list users", err), nil
	}

	return toolResultJSON(map[string]any{
		"users": result.Users,
		"total": result.Total,
	})
}

// GetUserTool returns the MCP tool definition for getting a single user.
func (t *UserTools) GetUserTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_user",
		Description: "Get a user account by ULID, username, or email. Exactly one identifier must be provided.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "string",
					"description": "The ULID of the user to retrieve",
				},
				"username": map[string]interface{}{
					"type":        "string",
					"description": "The username to look up",
				},
				"email": map[string]interface{}{
					"type":        "string",
					"description": "The email address to look up",
				},
			},
		},
	}
}

// GetUserHandler handles the get_user tool call.
func (t *UserTools) GetUserHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t == nil || t.usersService == nil {
		return mcp.NewToolResultError("users service not configured"), nil
	}

	args := struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
	}{}
	if err := parseArgs(request, &args); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid arguments", err), nil
	}

	var (
		user users.User
		err  error
	)
	switch {
	case args.ID != "":
		if err := ids.ValidateULID(args.ID); err != nil {
			return mcp.NewToolResultErrorFromErr("invalid ULID format", err), nil
		}
		user, err = t.usersService.Get(ctx, args.ID)
	case args.Username != "":
		user, err = t.usersService.GetByUsername(ctx, args.Username)
	case args.Email != "":
		user, err = t.usersService.GetByEmail(ctx, args.Email)
	default:
		return mcp.NewToolResultError("one of id, username, or email is required"), nil
	}
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return mcp.NewToolResultError("user not found"), nil
		}
		return mcp.NewToolResultErrorFromErr("failed to get user", err), nil
	}

	return toolResultJSON(user)
}

// CreateUserTool returns the MCP tool definition for creating a user.
func (t *UserTools) CreateUserTool() mcp.Tool {
	return mcp.Tool{
		Name:        "create_user",
		Description: "Create a new user account. Username and email must be unique. Returns the created user with its assigned ULID.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"username": map[string]interface{}{
					"type":        "string",
					"description": "Unique username (3-50 characters)",
				},
				"email": map[string]interface{}{
					"type":        "string",
					"description": "Unique email address",
				},
				"full_name": map[string]interface{}{
					"type":        "string",
					"description": "Optional display name",
				},
				"role": map[string]interface{}{
					"type":        "string",
					"description": "Account role (defaults to 'user')",
					"enum":        []string{users.RoleAdmin, users.RoleUser},
				},
				"is_active": map[string]interface{}{
					"type":        "boolean",
					"description": "Whether the account starts active (default true)",
				},
			},
			Required: []string{"username", "email"},
		},
	}
}

// CreateUserHandler handles the create_user tool call.
func (t *UserTools) CreateUserHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t == nil || t.usersService == nil {
		return mcp.NewToolResultError("users service not configured"), nil
	}

	var params users.CreateParams
	if err := parseArgs(request, &params); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid arguments", err), nil
	}

	user, err := t.usersService.Create(ctx, params)
	if err != nil {
		if errors.Is(err, users.ErrConflict) {
			return mcp.NewToolResultErrorFromErr("username or email already taken", err), nil
		}
		var verr users.ValidationError
		if errors.As(err, &verr) {
			return mcp.NewToolResultErrorFromErr("validation failed", err), nil
		}
		return mcp.NewToolResultErrorFromErr("failed to create user", err), nil
	}

	return toolResultJSON(user)
}

// UpdateUserTool returns the MCP tool definition for updating a user.
func (t *UserTools) UpdateUserTool() mcp.Tool {
	return mcp.Tool{
		Name:        "update_user",
		Description: "Update an existing user account. Only the provided fields are changed; omitted fields keep their current values.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "string",
					"description": "The ULID of the user to update",
				},
				"username": map[string]interface{}{
					"type":        "string",
					"description": "New username (must stay unique)",
				},
				"email": map[string]interface{}{
					"type":        "string",
					"description": "New email address (must stay unique)",
				},
				"full_name": map[string]interface{}{
					"type":        "string",
					"description": "New display name",
				},
				"role": map[string]interface{}{
					"type":        "string",
					"description": "New role",
					"enum":        []string{users.RoleAdmin, users.RoleUser},
				},
				"is_active": map[string]interface{}{
					"type":        "boolean",
					"description": "New active state",
				},
			},
			Required: []string{"id"},
		},
	}
}

// UpdateUserHandler handles the update_user tool call.
func (t *UserTools) UpdateUserHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t == nil || t.usersService == nil {
		return mcp.NewToolResultError("users service not configured"), nil
	}

	args := struct {
		ID string `json:"id"`
		users.UpdateParams
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

	user, err := t.usersService.Update(ctx, args.ID, args.UpdateParams)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return mcp.NewToolResultErrorf("user not found: %s", args.ID), nil
		}
		if errors.Is(err, users.ErrConflict) {
			return mcp.NewToolResultErrorFromErr("username or email already taken", err), nil
		}
		return mcp.NewToolResultErrorFromErr("failed to update user", err), nil
	}

	return toolResultJSON(user)
}

// DeleteUserTool returns the MCP tool definition for deleting a user.
func (t *UserTools) DeleteUserTool() mcp.Tool {
	return mcp.Tool{
		Name:        "delete_user",
		Description: "Delete a user account by its ULID. Returns a confirmation with the deleted user.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "string",
					"description": "The ULID of the user to delete",
				},
			},
			Required: []string{"id"},
		},
	}
}

// DeleteUserHandler handles the delete_user tool call.
func (t *UserTools) DeleteUserHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t == nil || t.usersService == nil {
		return mcp.NewToolResultError("users service not configured"), nil
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

	user, err := t.usersService.Get(ctx, args.ID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return mcp.NewToolResultErrorf("user not found: %s", args.ID), nil
		}
		return mcp.NewToolResultErrorFromErr("failed to get user", err), nil
	}

	if err := t.usersService.Delete(ctx, args.ID); err != nil {
		return mcp.NewToolResultErrorFromErr("failed to delete user", err), nil
	}

	return toolResultJSON(map[string]any{
		"success":      true,
		"message":      "User '" + user.Username + "' deleted successfully",
		"deleted_user": user,
	})
}
