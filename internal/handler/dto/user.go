package dto

import (
	"errors"
	"strings"
	"time"

	"github.com/ambufleet/ambufleet/internal/model"
)

// UserResponse represents a staff account in API responses. The
// password hash never appears here.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UpdateUserRequest represents a partial account update. Nil fields are
// left untouched.
type UpdateUserRequest struct {
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Role      *string `json:"role,omitempty"`
	Status    *string `json:"status,omitempty"`
}

// Validate checks the provided fields. Absent fields are not validated.
func (r *UpdateUserRequest) Validate() error {
	if r.FirstName != nil && strings.TrimSpace(*r.FirstName) == "" {
		return errors.New("El nombre es obligatorio")
	}
	if r.LastName != nil && strings.TrimSpace(*r.LastName) == "" {
		return errors.New("El apellido es obligatorio")
	}
	if r.Role != nil && !model.IsValidRole(*r.Role) {
		return errors.New("Rol inválido")
	}
	if r.Status != nil && !model.IsValidUserStatus(*r.Status) {
		return errors.New("Estado inválido")
	}
	return nil
}

// CreateEmployeeRequest represents the request body for creating an
// employee account. Unlike self-registration the role is mandatory.
type CreateEmployeeRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

// Validate checks the request shape.
func (r *CreateEmployeeRequest) Validate() error {
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
	if !model.IsValidRole(r.Role) {
		return errors.New("Rol inválido")
	}
	return nil
}

// CreateEmployeeResponse confirms account creation with the public
// profile of the new employee.
type CreateEmployeeResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

// EmployeeListResponse is the pagination envelope for employee listings.
type EmployeeListResponse struct {
	Data       []UserResponse `json:"data"`
	Pagination Pagination     `json:"pagination"`
}

// Pagination describes the window a listing covers.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// NewPagination computes the page count for a total row count.
func NewPagination(page, limit, total int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

// ToUserResponse converts a User model to its public representation.
func ToUserResponse(user *model.User) *UserResponse {
	return &UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      user.Role,
		Status:    user.Status,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// ToUserListResponse converts a slice of users to public representations.
func ToUserListResponse(users []*model.User) []UserResponse {
	responses := make([]UserResponse, len(users))
	for i, user := range users {
		responses[i] = *ToUserResponse(user)
	}
	return responses
}

// ToEmployeeListResponse wraps a page of users in the pagination envelope.
func ToEmployeeListResponse(users []*model.User, page, limit, total int) *EmployeeListResponse {
	return &EmployeeListResponse{
		Data:       ToUserListResponse(users),
		Pagination: NewPagination(page, limit, total),
	}
}
