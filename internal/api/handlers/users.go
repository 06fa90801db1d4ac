package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/stencilproject/stencil/internal/api/problem"
	"github.com/stencilproject/stencil/internal/domain/users"
)

type UsersHandler struct {
	Service *users.Service
	Env     string
}

func NewUsersHandler(service *users.Service, env string) *UsersHandler {
	return &UsersHandler{Service: service, Env: env}
}

func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", nil, h.Env)
		return
	}

	query := r.URL.Query()
	pagination, err := users.ParsePagination(query)
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}

	activeOnly := false
	if raw := strings.TrimSpace(query.Get("active_only")); raw != "" {
		parsed, parseErr := strconv.ParseBool(raw)
		if parseErr != nil {
			problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", users.FilterError{Field: "active_only", Message: "must be a boolean"}, h.Env)
			return
		}
		activeOnly = parsed
	}

	result, err := h.Service.List(r.Context(), users.Filters{ActiveOnly: activeOnly}, pagination)
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, result.Users)
}

func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", nil, h.Env)
		return
	}

	id, ok := ValidateAndExtractULID(w, r, "id", h.Env)
	if !ok {
		return
	}

	user, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *UsersHandler) GetByUsername(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", nil, h.Env)
		return
	}

	username := strings.TrimSpace(pathParam(r, "username"))
	if username == "" {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", users.FilterError{Field: "username", Message: "missing"}, h.Env)
		return
	}

	user, err := h.Service.GetByUsername(r.Context(), username)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *UsersHandler) GetByEmail(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", nil, h.Env)
		return
	}

	email := strings.TrimSpace(pathParam(r, "email"))
	if email == "" {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", users.FilterError{Field: "email", Message: "missing"}, h.Env)
		return
	}

	user, err := h.Service.GetByEmail(r.Context(), email)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", nil, h.Env)
		return
	}

	var params users.CreateParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}

	user, err := h.Service.Create(r.Context(), params)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", nil, h.Env)
		return
	}

	id, ok := ValidateAndExtractULID(w, r, "id", h.Env)
	if !ok {
		return
	}

	var params users.UpdateParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}

	user, err := h.Service.Update(r.Context(), id, params)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", nil, h.Env)
		return
	}

	id, ok := ValidateAndExtractULID(w, r, "id", h.Env)
	if !ok {
		return
	}

	user, err := h.Service.Get(r.Context(), id)
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
		Message: "User '" + user.Username + "' deleted successfully",
		Data:    map[string]any{"deleted_user_id": id},
	})
}

// Activate marks a user active again after a soft delete.
func (h *UsersHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

// Deactivate soft-deletes a user without removing the record.
func (h *UsersHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

func (h *UsersHandler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", nil, h.Env)
		return
	}

	id, ok := ValidateAndExtractULID(w, r, "id", h.Env)
	if !ok {
		return
	}

	user, err := h.Service.SetActive(r.Context(), id, active)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *UsersHandler) Stats(w http.ResponseWriter, r *http.Request) {
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

func (h *UsersHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr users.ValidationError
		ferr users.FilterError
	)
	switch {
	case errors.Is(err, users.ErrNotFound):
		problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Not found", err, h.Env)
	case errors.Is(err, users.ErrConflict):
		problem.Write(w, r, http.StatusConflict, problem.TypeConflict, "Conflict", err, h.Env)
	case errors.As(err, &verr):
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env, problem.WithErrors(fieldErrors(verr.Fields)))
	case errors.As(err, &ferr):
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
	default:
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
	}
}
