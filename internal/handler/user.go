package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ambufleet/ambufleet/internal/handler/dto"
	"github.com/ambufleet/ambufleet/internal/model"
	"github.com/ambufleet/ambufleet/internal/repository"
)

// UserHandler handles HTTP requests for staff accounts.
type UserHandler struct {
	users     UserStore
	revoker   SessionRevoker
	revokeTTL time.Duration
	logger    *slog.Logger
}

// NewUserHandler creates a new UserHandler. revoker may be nil when no
// revocation store is configured; revokeTTL should match the token
// lifetime so revocation entries outlive every affected token.
func NewUserHandler(users UserStore, revoker SessionRevoker, revokeTTL time.Duration, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		users:     users,
		revoker:   revoker,
		revokeTTL: revokeTTL,
		logger:    logger,
	}
}

// List handles GET /api/users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("list_users_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Error al obtener usuarios")
		return
	}

	writeJSON(w, http.StatusOK, dto.ToUserListResponse(users))
}

// Get handles GET /api/users/{id}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	user, err := h.users.GetUserByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "Usuario no encontrado")
			return
		}
		h.logger.Error("get_user_failed", "error", err, "user_id", id)
		writeError(w, http.StatusInternalServerError, "Error al obtener usuario")
		return
	}

	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// Update handles PUT /api/users/{id}. Omitted fields keep their stored
// values.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Datos inválidos")
		return
	}

	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.users.UpdateUser(r.Context(), id, repository.UserUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
		Status:    req.Status,
	})
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "Usuario no encontrado")
			return
		}
		h.logger.Error("update_user_failed", "error", err, "user_id", id)
		writeError(w, http.StatusInternalServerError, "Error al actualizar usuario")
		return
	}

	// A role change or deactivation must not ride out on tokens minted
	// under the old identity.
	if req.Role != nil || (req.Status != nil && *req.Status == model.UserStatusInactivo) {
		h.revokeSessions(r, user.ID)
	}

	h.logger.Info("user_updated", "user_id", user.ID)

	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// Delete handles DELETE /api/users/{id}. Deletion is logical: the
// status flips to inactive and the row stays.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	user, err := h.users.DeactivateUser(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "Usuario no encontrado")
			return
		}
		h.logger.Error("delete_user_failed", "error", err, "user_id", id)
		writeError(w, http.StatusInternalServerError, "Error al eliminar usuario")
		return
	}

	h.revokeSessions(r, user.ID)

	h.logger.Info("user_deactivated", "user_id", user.ID)

	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Usuario eliminado exitosamente"})
}

// revokeSessions invalidates outstanding tokens for the user. Failures
// are logged and swallowed: the account change already happened, and
// short token TTLs bound the exposure.
func (h *UserHandler) revokeSessions(r *http.Request, userID string) {
	if h.revoker == nil {
		return
	}
	if err := h.revoker.RevokeUser(r.Context(), userID, h.revokeTTL); err != nil {
		h.logger.Error("session_revocation_failed", "error", err, "user_id", userID)
	}
}
