// Package model defines domain entities for the application.
package model

import (
	"slices"
	"time"
)

// Role constants for staff accounts. Values are exact strings as stored;
// there is no hierarchy between them.
const (
	RoleAdministrador = "administrador"
	RoleGestor        = "gestor"
	RoleTecnico       = "tecnico"
	RoleMedico        = "medico"
)

// ValidRoles contains all valid role values.
var ValidRoles = []string{RoleAdministrador, RoleGestor, RoleTecnico, RoleMedico}

// User status constants. Deleting a user flips the status to inactive;
// rows are never removed so the id stays a stable foreign-key target.
const (
	UserStatusActivo   = "activo"
	UserStatusInactivo = "inactivo"
)

// ValidUserStatuses contains all valid user status values.
var ValidUserStatuses = []string{UserStatusActivo, UserStatusInactivo}

// IsValidRole checks if the given role is one of the known roles.
func IsValidRole(role string) bool {
	return slices.Contains(ValidRoles, role)
}

// IsValidUserStatus checks if the given status is a known user status.
func IsValidUserStatus(status string) bool {
	return slices.Contains(ValidUserStatuses, status)
}

// User represents a staff account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Role         string    `json:"role"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// IsActive returns true if the account has not been logically deleted.
func (u *User) IsActive() bool {
	return u.Status == UserStatusActivo
}

// Claims are the identity attributes carried by a session token.
// They are trusted as-is after signature verification; the store is
// not consulted again during the token's lifetime.
type Claims struct {
	UserID string
	Email  string
	Role   string
}
