package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/msomdec/user-roster/internal/domain"
	"github.com/msomdec/user-roster/internal/service"
)

// UserAPIHandler serves the JSON users resource consumed by the remote client.
type UserAPIHandler struct {
	users *service.UserService
}

// NewUserAPIHandler creates a new UserAPIHandler.
func NewUserAPIHandler(users *service.UserService) *UserAPIHandler {
	return &UserAPIHandler{users: users}
}

// HandleList returns every user.
// GET /api/users
// Response: {"users": [...]}
func (h *UserAPIHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		slog.Error("list users", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred. Please try again.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"users": toUserDTOs(users),
	})
}

// HandleGet returns one user.
// GET /api/users/{id}
// Response: {"user": {...}}
func (h *UserAPIHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeUserError(w, "get user", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user": toUserDTO(user),
	})
}

// HandleCreate creates a user with a server-assigned id.
// POST /api/users
// Request:  {"firstName":"...","lastName":"...","phoneNumber":5551234567,"age":30}
// Response: 201 {"user": {...}}
func (h *UserAPIHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req userInputRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	user, err := h.users.Create(r.Context(), req.toInput())
	if err != nil {
		writeUserError(w, "create user", err)
		return
	}

	slog.Info("user created", "id", user.ID, "client", ClientFromContext(r.Context()))
	writeJSON(w, http.StatusCreated, map[string]any{
		"user": toUserDTO(user),
	})
}

// HandleUpdate replaces the editable fields of a user.
// PATCH /api/users/{id}
// Request:  {"firstName":"...","lastName":"...","phoneNumber":5551234567,"age":30}
// Response: {"user": {...}}
func (h *UserAPIHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req userInputRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	user, err := h.users.Update(r.Context(), r.PathValue("id"), req.toInput())
	if err != nil {
		writeUserError(w, "update user", err)
		return
	}

	slog.Info("user updated", "id", user.ID, "client", ClientFromContext(r.Context()))
	writeJSON(w, http.StatusOK, map[string]any{
		"user": toUserDTO(user),
	})
}

// HandleDelete removes a user.
// DELETE /api/users/{id}
// Response: 204 No Content
func (h *UserAPIHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.users.Delete(r.Context(), id); err != nil {
		writeUserError(w, "delete user", err)
		return
	}

	slog.Info("user deleted", "id", id, "client", ClientFromContext(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}

func writeUserError(w http.ResponseWriter, op string, err error) {
	var vErr *domain.ValidationError
	switch {
	case errors.As(err, &vErr):
		writeFieldError(w, vErr.Field, vErr.Message)
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "User not found.")
	default:
		slog.Error(op, "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred. Please try again.")
	}
}
