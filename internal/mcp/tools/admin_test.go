package tools

import (
	"context"
	"testing"

	"github.com/stencilproject/stencil/internal/domain/items"
	"github.com/stencilproject/stencil/internal/domain/users"
	"github.com/stencilproject/stencil/internal/storage/memory"
)

func newAdminTools(t *testing.T) (*AdminTools, *items.Service, *users.Service) {
	t.Helper()
	store := memory.NewRepository()
	itemsService := items.NewService(store.Items())
	usersService := users.NewService(store.Users())
	return NewAdminTools(itemsService, usersService, store), itemsService, usersService
}

func TestGetDatabaseStatsHandler(t *testing.T) {
	tools, itemsService, usersService := newAdminTools(t)
	seedItem(t, itemsService, "Laptop", "electronics", 999.99, true)
	seedItem(t, itemsService, "Mouse", "electronics", 19.99, false)
	seedUser(t, usersService, "alice", "alice@example.com", true)

	result, err := tools.GetDatabaseStatsHandler(context.Background(), callRequest("get_database_stats", nil))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	payload := decodeToolJSON(t, result)

	itemStats, ok := payload["items"].(map[string]any)
	if !ok {
		t.Fatalf("expected items stats object, got %T", payload["items"])
	}
	if itemStats["total_items"] != float64(2) {
		t.Errorf("expected 2 total items, got %v", itemStats["total_items"])
	}
	if itemStats["available_items"] != float64(1) {
		t.Errorf("expected 1 available item, got %v", itemStats["available_items"])
	}

	userStats, ok := payload["users"].(map[string]any)
	if !ok {
		t.Fatalf("expected users stats object, got %T", payload["users"])
	}
	if userStats["total_users"] != float64(1) {
		t.Errorf("expected 1 total user, got %v", userStats["total_users"])
	}
}

func TestExportDatabaseHandler(t *testing.T) {
	tools, itemsService, usersService := newAdminTools(t)
	seedItem(t, itemsService, "Laptop", "electronics", 999.99, true)
	seedUser(t, usersService, "alice", "alice@example.com", true)

	result, err := tools.ExportDatabaseHandler(context.Background(), callRequest("export_database", nil))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	payload := decodeToolJSON(t, result)

	exportedItems, ok := payload["items"].([]any)
	if !ok {
		t.Fatalf("expected items array, got %T", payload["items"])
	}
	if len(exportedItems) != 1 {
		t.Errorf("expected 1 exported item, got %d", len(exportedItems))
	}

	exportedUsers, ok := payload["users"].([]any)
	if !ok {
		t.Fatalf("expected users array, got %T", payload["users"])
	}
	if len(exportedUsers) != 1 {
		t.Errorf("expected 1 exported user, got %d", len(exportedUsers))
	}

	if payload["exported_at"] == nil {
		t.Error("expected exported_at timestamp")
	}
}

func TestAdminToolsNilGuards(t *testing.T) {
	var tools *AdminTools

	result, err := tools.GetDatabaseStatsHandler(context.Background(), callRequest("get_database_stats", nil))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !result.IsError {
		t.Error("expected tool error result for nil tools")
	}

	result, err = tools.ExportDatabaseHandler(context.Background(), callRequest("export_database", nil))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !result.IsError {
		t.Error("expected tool error result for nil tools")
	}
}
