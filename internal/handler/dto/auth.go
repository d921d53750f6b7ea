// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"errors"
	"regexp"
	"strings"

	"github.com/ambufleet/ambufleet/internal/model"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ErrorResponse represents an API error. The body is a single flat
// message; no internal detail ever crosses this boundary.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse wraps a confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}

// LoginRequest represents the request body for authentication.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks the request shape. Shape errors are reported before
// any credential lookup so they never reveal account existence.
func (r *LoginRequest) Validate() error {
	if !emailPattern.MatchString(strings.TrimSpace(r.Email)) {
		return errors.New("Email inválido")
	}
	if len(r.Password) < 6 {
		return errors.New("La contraseña debe tener al menos 6 caracteres")
	}
	return nil
}

// LoginResponse represents a successful authentication.
type LoginResponse struct {
	Token string       `json:"token"`
	User  ProfileBrief `json:"user"`
}

// ProfileBrief is the public identity returned on login, without status
// or timestamps.
type ProfileBrief struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

// RegisterRequest represents the request body for self-registration.
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

// Validate checks the request shape. An empty role is allowed; the
// handler defaults it.
func (r *RegisterRequest) Validate() error {
	if !emailPattern.MatchString(strings.TrimSpace(r.Email)) {
		return errors.New("Email inválido")
	}
	if len(r.Password) < 8 {
		return errors.New("La contraseña debe tener al menos 8 caracteres")
	}
	if strings.TrimSpace(r.FirstName) == "" {
		return errors.New("El nombre es obligatorio")
	}
	if strings.TrimSpace(r.LastName) == "" {
		return errors.New("El apellido es obligatorio")
	}
	if r.Role != "" && !model.IsValidRole(r.Role) {
		return errors.New("Rol inválido")
	}
	return nil
}

// RegisterResponse confirms account creation.
type RegisterResponse struct {
	Message string         `json:"message"`
	User    RegisteredUser `json:"user"`
}

// RegisteredUser is the subset of the new account echoed back.
type RegisteredUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// ToLoginResponse builds the login payload from a verified account.
func ToLoginResponse(token string, user *model.User) *LoginResponse {
	return &LoginResponse{
		Token: token,
		User: ProfileBrief{
			ID:        user.ID,
			Email:     user.Email,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Role:      user.Role,
		},
	}
}
