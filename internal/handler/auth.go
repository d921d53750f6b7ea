package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/ambufleet/ambufleet/internal/auth"
	"github.com/ambufleet/ambufleet/internal/handler/dto"
	"github.com/ambufleet/ambufleet/internal/model"
	"github.com/ambufleet/ambufleet/internal/repository"
)

// invalidCredentials is the single body returned for every login
// failure: unknown email, wrong password and deactivated account are
// indistinguishable to the caller.
const invalidCredentials = "Credenciales inválidas"

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	users  UserStore
	issuer TokenIssuer
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users UserStore, issuer TokenIssuer, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		users:  users,
		issuer: issuer,
		logger: logger,
	}
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Datos inválidos")
		return
	}

	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.users.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			h.logger.Info("login_rejected", "reason", "unknown_email")
			writeError(w, http.StatusUnauthorized, invalidCredentials)
			return
		}
		h.logger.Error("login_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Error en el servidor")
		return
	}

	if !user.IsActive() {
		h.logger.Info("login_rejected", "reason", "inactive_account", "user_id", user.ID)
		writeError(w, http.StatusUnauthorized, invalidCredentials)
		return
	}

	ok, err := auth.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil || !ok {
		h.logger.Info("login_rejected", "reason", "bad_password", "user_id", user.ID)
		writeError(w, http.StatusUnauthorized, invalidCredentials)
		return
	}

	token, err := h.issuer.Issue(user)
	if err != nil {
		h.logger.Error("token_issue_failed", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "Error en el servidor")
		return
	}

	h.logger.Info("login_succeeded", "user_id", user.ID, "role", user.Role)

	writeJSON(w, http.StatusOK, dto.ToLoginResponse(token, user))
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Datos inválidos")
		return
	}

	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	role := req.Role
	if role == "" {
		role = model.RoleTecnico
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("password_hash_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Error en el servidor")
		return
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           ulid.Make().String(),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Role:         role,
		Status:       model.UserStatusActivo,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.users.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			writeError(w, http.StatusBadRequest, "El email ya existe")
			return
		}
		h.logger.Error("register_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Error en el servidor")
		return
	}

	h.logger.Info("user_registered", "user_id", user.ID, "role", user.Role)

	writeJSON(w, http.StatusCreated, dto.RegisterResponse{
		Message: "Usuario creado exitosamente",
		User: dto.RegisteredUser{
			ID:    user.ID,
			Email: user.Email,
			Role:  user.Role,
		},
	})
}
