package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/stencilproject/stencil/internal/api/problem"
	"github.com/stencilproject/stencil/internal/domain/items"
)

type ItemsHandler struct {
	Service *items.Service
	Env     string
}

func NewItemsHandler(service *items.Service, env string) *ItemsHandler {
	return &ItemsHandler{Service: service, Env: env}
}

type paginatedResponse struct {
	Items []items.Item `json:"items"`
	Total int          `json:"total"`
	Page  int          `json:"page"`
	Size  int          `json:"size"`
	Pages int          `json:"pages"`
}

type deleteResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", nil, h.Env)
		return
	}

	filters, pagination, err := items.ParseFilters(r.URL.Query())
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}

	result, err := h.Service.List(r.Context(), filters, pagination)
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, result.Items)
}

// Paginated serves page/size style pagination on top of the same filters as List.
func (h *ItemsHandler) Paginated(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", nil, h.Env)
		return
	}

	query := r.URL.Query()
	page, err := positiveIntParam(query.Get("page"), "page", 1)
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}
	size, err := positiveIntParam(query.Get("size"), "size", 10)
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}
	if size > 100 {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", items.FilterError{Field: "size", Message: "must be between 1 and 100"}, h.Env)
		return
	}

	filters := items.Filters{Category: strings.TrimSpace(query.Get("category"))}
	if raw := strings.TrimSpace(query.Get("available_only")); raw != "" {
		parsed, parseErr := strconv.ParseBool(raw)
		if parseErr != nil {
			problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", items.FilterError{Field: "available_only", Message: "must be a boolean"}, h.Env)
			return
		}
		filters.AvailableOnly = parsed
	}

	result, err := h.Service.List(r.Context(), filters, items.Pagination{Offset: (page - 1) * size, Limit: size})
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}

	pages := (result.Total + size - 1) / size
	writeJSON(w, http.StatusOK, paginatedResponse{
		Items: result.Items,
		Total: result.Total,
		Page:  page,
		Size:  size,
		Pages: pages,
	})
}

func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", nil, h.Env)
		return
	}

	id, ok := ValidateAndExtractULID(w, r, "id", h.Env)
	if !ok {
		return
	}

	item, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, item)
}

func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", nil, h.Env)
		return
	}

	var params items.CreateParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}

	item, err := h.Service.Create(r.Context(), params)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, item)
}

func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", nil, h.Env)
		return
	}

	id, ok := ValidateAndExtractULID(w, r, "id", h.Env)
	if !ok {
		return
	}

	var params items.UpdateParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}

	item, err := h.Service.Update(r.Context(), id, params)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, item)
}

func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", nil, h.Env)
		return
	}

	id, ok := ValidateAndExtractULID(w, r, "id", h.Env)
	if !ok {
		return
	}

	item, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, deleteResponse{
		Success: true,
		Message: "Item '" + item.Name + "' deleted successfully",
		Data:    map[string]any{"deleted_item_id": id},
	})
}

func (h *ItemsHandler) SearchByName(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", nil, h.Env)
		return
	}

	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", items.FilterError{Field: "name", Message: "missing"}, h.Env)
		return
	}

	matches, err := h.Service.Search(r.Context(), name, items.SearchByName)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, matches)
}

func (h *ItemsHandler) SearchByCategory(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", nil, h.Env)
		return
	}

	category := strings.TrimSpace(pathParam(r, "category"))
	if category == "" {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", items.FilterError{Field: "category", Message: "missing"}, h.Env)
		return
	}

	matches, err := h.Service.FindByCategory(r.Context(), category)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, matches)
}

func (h *ItemsHandler) CreateBulk(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", nil, h.Env)
		return
	}

	var batch []items.CreateParams
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}
	if len(batch) == 0 {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", items.FilterError{Field: "body", Message: "batch must not be empty"}, h.Env)
		return
	}

	created, err := h.Service.CreateBulk(r.Context(), batch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *ItemsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", nil, h.Env)
		return
	}

	stats, err := h.Service.Stats(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func (h *ItemsHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr items.ValidationError
		ferr items.FilterError
	)
	switch {
	case errors.Is(err, items.ErrNotFound):
		problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Not found", err, h.Env)
	case errors.Is(err, items.ErrConflict):
		problem.Write(w, r, http.StatusConflict, problem.TypeConflict, "Conflict", err, h.Env)
	case errors.As(err, &verr):
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env, problem.WithErrors(fieldErrors(verr.Fields)))
	case errors.As(err, &ferr):
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
	default:
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
	}
}

func fieldErrors(fields map[string]string) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for field, msg := range fields {
		out[field] = msg
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func pathParam(r *http.Request, key string) string {
	if r == nil {
		return ""
	}
	return r.PathValue(key)
}

func positiveIntParam(raw, field string, fallback int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 1 {
		return 0, items.FilterError{Field: field, Message: "must be a positive number"}
	}
	return parsed, nil
}
