package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stencilproject/stencil/internal/domain/items"
	"github.com/stencilproject/stencil/internal/storage/memory"
	"github.com/stretchr/testify/require"
)

func newItemsHandler(t *testing.T) (*ItemsHandler, *items.Service) {
	t.Helper()
	store := memory.NewRepository()
	service := items.NewService(store.Items())
	return NewItemsHandler(service, "test"), service
}

func createTestItem(t *testing.T, service *items.Service, name, category string, price float64) items.Item {
	t.Helper()
	item, err := service.Create(context.Background(), items.CreateParams{
		Name:     name,
		Price:    price,
		Category: category,
	})
	require.NoError(t, err)
	return item
}

func TestItemsHandlerList(t *testing.T) {
	handler, service := newItemsHandler(t)
	createTestItem(t, service, "Laptop", "electronics", 999.99)
	createTestItem(t, service, "Notebook", "stationery", 4.99)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/items", nil)
	rec := httptest.NewRecorder()
	handler.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got []items.Item
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
}

func TestItemsHandlerListCategoryFilter(t *testing.T) {
	handler, service := newItemsHandler(t)
	createTestItem(t, service, "Laptop", "electronics", 999.99)
	createTestItem(t, service, "Notebook", "stationery", 4.99)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/items?category=electronics", nil)
	rec := httptest.NewRecorder()
	handler.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got []items.Item
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	require.Equal(t, "Laptop", got[0].Name)
}

func TestItemsHandlerListInvalidLimit(t *testing.T) {
	handler, _ := newItemsHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/items?limit=5000", nil)
	rec := httptest.NewRecorder()
	handler.List(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}

func TestItemsHandlerGet(t *testing.T) {
	handler, service := newItemsHandler(t)
	created := createTestItem(t, service, "Laptop", "electronics", 999.99)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/items/"+created.ID, nil)
	req.SetPathValue("id", created.ID)
	rec := httptest.NewRecorder()
	handler.Get(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got items.Item
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, created.ID, got.ID)
	require.Equal(t, "Laptop", got.Name)
}

func TestItemsHandlerGetNotFound(t *testing.T) {
	handler, _ := newItemsHandler(t)

	missing := "01HZZZZZZZZZZZZZZZZZZZZZZZ"
	req := httptest.NewRequest(http.MethodGet, "/api/v1/items/"+missing, nil)
	req.SetPathValue("id", missing)
	rec := httptest.NewRecorder()
	handler.Get(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}

func TestItemsHandlerGetInvalidID(t *testing.T) {
	handler, _ := newItemsHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/items/not-a-ulid", nil)
	req.SetPathValue("id", "not-a-ulid")
	rec := httptest.NewRecorder()
	handler.Get(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestItemsHandlerCreate(t *testing.T) {
	handler, _ := newItemsHandler(t)

	body := bytes.NewBufferString(`{"name":"Widget","price":19.99,"category":"tools"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/items", body)
	rec := httptest.NewRecorder()
	handler.Create(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var got items.Item
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.NotEmpty(t, got.ID)
	require.Equal(t, "Widget", got.Name)
	require.True(t, got.IsAvailable)
	require.False(t, got.CreatedAt.IsZero())
}

func TestItemsHandlerCreateValidationErrors(t *testing.T) {
	handler, _ := newItemsHandler(t)

	body := bytes.NewBufferString(`{"name":"","price":0}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/items", body)
	rec := httptest.NewRecorder()
	handler.Create(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	errs, ok := payload["errors"].(map[string]any)
	require.True(t, ok, "expected per-field errors in problem payload")
	require.Contains(t, errs, "name")
	require.Contains(t, errs, "price")
}

func TestItemsHandlerCreateMalformedJSON(t *testing.T) {
	handler, _ := newItemsHandler(t)

	body := bytes.NewBufferString(`{"name": `)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/items", body)
	rec := httptest.NewRecorder()
	handler.Create(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestItemsHandlerUpdate(t *testing.T) {
	handler, service := newItemsHandler(t)
	created := createTestItem(t, service, "Laptop", "electronics", 999.99)

	body := bytes.NewBufferString(`{"price":899.99}`)
	req := httptest.NewRequest(http.MethodPut, "/api/v1/items/"+created.ID, body)
	req.SetPathValue("id", created.ID)
	rec := httptest.NewRecorder()
	handler.Update(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got items.Item
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, 899.99, got.Price)
	require.Equal(t, "Laptop", got.Name)
}

func TestItemsHandlerUpdateEmptyBody(t *testing.T) {
	handler, service := newItemsHandler(t)
	created := createTestItem(t, service, "Laptop", "electronics", 999.99)

	body := bytes.NewBufferString(`{}`)
	req := httptest.NewRequest(http.MethodPut, "/api/v1/items/"+created.ID, body)
	req.SetPathValue("id", created.ID)
	rec := httptest.NewRecorder()
	handler.Update(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestItemsHandlerDelete(t *testing.T) {
	handler, service := newItemsHandler(t)
	created := createTestItem(t, service, "Laptop", "electronics", 999.99)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/items/"+created.ID, nil)
	req.SetPathValue("id", created.ID)
	rec := httptest.NewRecorder()
	handler.Delete(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var payload deleteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.True(t, payload.Success)
	require.Contains(t, payload.Message, "Laptop")

	_, err := service.Get(context.Background(), created.ID)
	require.ErrorIs(t, err, items.ErrNotFound)
}

func TestItemsHandlerSearchByName(t *testing.T) {
	handler, service := newItemsHandler(t)
	createTestItem(t, service, "Gaming Laptop", "electronics", 1499.99)
	createTestItem(t, service, "Desk", "furniture", 249.99)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/items/search/by-name?name=laptop", nil)
	rec := httptest.NewRecorder()
	handler.SearchByName(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got []items.Item
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	require.Equal(t, "Gaming Laptop", got[0].Name)
}

func TestItemsHandlerSearchByNameMissingQuery(t *testing.T) {
	handler, _ := newItemsHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/items/search/by-name", nil)
	rec := httptest.NewRecorder()
	handler.SearchByName(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestItemsHandlerSearchByCategory(t *testing.T) {
	handler, service := newItemsHandler(t)
	createTestItem(t, service, "Laptop", "electronics", 999.99)
	createTestItem(t, service, "Desk", "furniture", 249.99)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/items/search/by-category/electronics", nil)
	req.SetPathValue("category", "electronics")
	rec := httptest.NewRecorder()
	handler.SearchByCategory(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got []items.Item
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	require.Equal(t, "Laptop", got[0].Name)
}

func TestItemsHandlerPaginated(t *testing.T) {
	handler, service := newItemsHandler(t)
	for i := 0; i < 5; i++ {
		createTestItem(t, service, "Item", "bulk", float64(i+1))
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/items/paginated?page=2&size=2", nil)
	rec := httptest.NewRecorder()
	handler.Paginated(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got paginatedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, 5, got.Total)
	require.Equal(t, 2, got.Page)
	require.Equal(t, 2, got.Size)
	require.Equal(t, 3, got.Pages)
	require.Len(t, got.Items, 2)
}

func TestItemsHandlerCreateBulk(t *testing.T) {
	handler, _ := newItemsHandler(t)

	body := bytes.NewBufferString(`[{"name":"A","price":1.00},{"name":"B","price":2.00}]`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/items/bulk", body)
	rec := httptest.NewRecorder()
	handler.CreateBulk(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var got []items.Item
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
}

func TestItemsHandlerCreateBulkEmpty(t *testing.T) {
	handler, _ := newItemsHandler(t)

	body := bytes.NewBufferString(`[]`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/items/bulk", body)
	rec := httptest.NewRecorder()
	handler.CreateBulk(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestItemsHandlerCreateBulkRejectsWholeBatch(t *testing.T) {
	handler, service := newItemsHandler(t)

	body := bytes.NewBufferString(`[{"name":"A","price":1.00},{"name":"","price":0}]`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/items/bulk", body)
	rec := httptest.NewRecorder()
	handler.CreateBulk(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	// No partial writes
	result, err := service.List(context.Background(), items.Filters{}, items.Pagination{Limit: 10})
	require.NoError(t, err)
	require.Empty(t, result.Items)
}

func TestItemsHandlerStats(t *testing.T) {
	handler, service := newItemsHandler(t)
	createTestItem(t, service, "A", "electronics", 10.00)
	createTestItem(t, service, "B", "electronics", 30.00)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/items/stats/summary", nil)
	rec := httptest.NewRecorder()
	handler.Stats(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got items.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, 2, got.Total)
	require.Equal(t, 2, got.Categories["electronics"])
	require.Equal(t, 40.00, got.Pricing.TotalValue)
	require.Equal(t, 20.00, got.Pricing.AveragePrice)
}
