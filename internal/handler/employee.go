package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"

	"github.com/ambufleet/ambufleet/internal/auth"
	"github.com/ambufleet/ambufleet/internal/handler/dto"
	"github.com/ambufleet/ambufleet/internal/model"
	"github.com/ambufleet/ambufleet/internal/repository"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// EmployeeHandler handles the staff-management view over accounts:
// filtered, paginated listings and managed creation.
type EmployeeHandler struct {
	users     UserStore
	revoker   SessionRevoker
	revokeTTL time.Duration
	logger    *slog.Logger
}

// NewEmployeeHandler creates a new EmployeeHandler.
func NewEmployeeHandler(users UserStore, revoker SessionRevoker, revokeTTL time.Duration, logger *slog.Logger) *EmployeeHandler {
	return &EmployeeHandler{
		users:     users,
		revoker:   revoker,
		revokeTTL: revokeTTL,
		logger:    logger,
	}
}

// List handles GET /api/employees with page, limit, search, role and
// status query parameters. The response carries a pagination envelope.
func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page := 1
	if p := query.Get("page"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil && parsed > 0 {
			page = parsed
		}
	}

	limit := defaultPageLimit
	if l := query.Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= maxPageLimit {
			limit = parsed
		}
	}

	filter := repository.UserFilter{
		Search: query.Get("search"),
		Role:   query.Get("role"),
		Status: query.Get("status"),
	}

	users, total, err := h.users.SearchUsers(r.Context(), filter, repository.Page{Number: page, Limit: limit})
	if err != nil {
		h.logger.Error("list_employees_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Error al obtener empleados")
		return
	}

	writeJSON(w, http.StatusOK, dto.ToEmployeeListResponse(users, page, limit, total))
}

// Create handles POST /api/employees. Managed accounts require an
// explicit role and start active.
func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Datos inválidos")
		return
	}

	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("password_hash_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Error al crear empleado")
		return
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           ulid.Make().String(),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Role:         req.Role,
		Status:       model.UserStatusActivo,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.users.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			writeError(w, http.StatusBadRequest, "El email ya existe")
			return
		}
		h.logger.Error("create_employee_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Error al crear empleado")
		return
	}

	h.logger.Info("employee_created", "user_id", user.ID, "role", user.Role)

	writeJSON(w, http.StatusCreated, dto.CreateEmployeeResponse{
		Message: "Empleado creado",
		User:    *dto.ToUserResponse(user),
	})
}

// Update handles PUT /api/employees/{id}.
func (h *EmployeeHandler) Update(w http.ResponseWriter, r *http.Request) {
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
		h.logger.Error("update_employee_failed", "error", err, "user_id", id)
		writeError(w, http.StatusInternalServerError, "Error al actualizar")
		return
	}

	if req.Role != nil || (req.Status != nil && *req.Status == model.UserStatusInactivo) {
		h.revokeSessions(r, user.ID)
	}

	h.logger.Info("employee_updated", "user_id", user.ID)

	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// Delete handles DELETE /api/employees/{id}. Deletion is logical.
func (h *EmployeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	user, err := h.users.DeactivateUser(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "Usuario no encontrado")
			return
		}
		h.logger.Error("delete_employee_failed", "error", err, "user_id", id)
		writeError(w, http.StatusInternalServerError, "Error al eliminar empleado")
		return
	}

	h.revokeSessions(r, user.ID)

	h.logger.Info("employee_deactivated", "user_id", user.ID)

	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Empleado eliminado exitosamente"})
}

func (h *EmployeeHandler) revokeSessions(r *http.Request, userID string) {
	if h.revoker == nil {
		return
	}
	if err := h.revoker.RevokeUser(r.Context(), userID, h.revokeTTL); err != nil {
		h.logger.Error("session_revocation_failed", "error", err, "user_id", userID)
	}
}
