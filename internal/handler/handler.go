// Package handler provides HTTP request handlers.
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ambufleet/ambufleet/internal/handler/dto"
	"github.com/ambufleet/ambufleet/internal/model"
	"github.com/ambufleet/ambufleet/internal/repository"
)

// UserStore is the persistence surface the account handlers need.
// *repository.Repository satisfies it; tests substitute fakes.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
	SearchUsers(ctx context.Context, filter repository.UserFilter, page repository.Page) ([]*model.User, int, error)
	UpdateUser(ctx context.Context, id string, update repository.UserUpdate) (*model.User, error)
	DeactivateUser(ctx context.Context, id string) (*model.User, error)
}

// VehicleStore is the persistence surface the vehicle handlers need.
type VehicleStore interface {
	CreateVehicle(ctx context.Context, vehicle *model.Vehicle) error
	GetVehicleByID(ctx context.Context, id string) (*model.Vehicle, error)
	ListVehicles(ctx context.Context, filter repository.VehicleFilter) ([]*model.Vehicle, error)
	UpdateVehicle(ctx context.Context, id string, update repository.VehicleUpdate) (*model.Vehicle, error)
	HideVehicle(ctx context.Context, id string) (*model.Vehicle, error)
}

// TokenIssuer mints session tokens for verified accounts.
type TokenIssuer interface {
	Issue(user *model.User) (string, error)
}

// SessionRevoker invalidates outstanding tokens for a user before they
// expire on their own.
type SessionRevoker interface {
	RevokeUser(ctx context.Context, userID string, ttl time.Duration) error
}

// NotFound handles 404 responses.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "Recurso no encontrado")
}

// MethodNotAllowed handles 405 responses.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "Método no permitido")
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already sent; nothing useful left to do.
		_ = err
	}
}

// writeError writes a flat error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, dto.ErrorResponse{Error: message})
}
