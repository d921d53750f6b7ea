package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/ambufleet/ambufleet/internal/model"
)

// Common errors for user repository operations.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailExists  = errors.New("email already exists")
)

// UserFilter defines filters for searching users.
// Search is a case-insensitive substring match over first name, last
// name and email. Role and Status are exact-match filters.
type UserFilter struct {
	Search string
	Role   string
	Status string
}

// UserUpdate carries a partial update. Nil fields keep their stored value.
type UserUpdate struct {
	FirstName *string
	LastName  *string
	Role      *string
	Status    *string
}

// Page describes offset/limit pagination.
type Page struct {
	Number int
	Limit  int
}

// Offset returns the row offset for the page.
func (p Page) Offset() int {
	if p.Number < 1 {
		return 0
	}
	return (p.Number - 1) * p.Limit
}

const userColumns = "id, email, password_hash, first_name, last_name, role, status, created_at, updated_at"

// CreateUser inserts a new user into the database.
func (r *Repository) CreateUser(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, first_name, last_name, role, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		user.ID,
		strings.ToLower(user.Email),
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.Role,
		user.Status,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByID retrieves a user by their ID. Inactive users are still
// returned: deletion is logical and the row remains addressable.
func (r *Repository) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return user, nil
}

// GetUserByEmail retrieves a user by their email address.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// ListUsers retrieves all users, newest first.
func (r *Repository) ListUsers(ctx context.Context) ([]*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	return collectUsers(rows)
}

// SearchUsers retrieves a page of users matching the filter, plus the
// total match count for the pagination envelope.
func (r *Repository) SearchUsers(ctx context.Context, filter UserFilter, page Page) ([]*model.User, int, error) {
	qb := &queryBuilder{}

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		qb.where(fmt.Sprintf(
			"(first_name ILIKE %[1]s OR last_name ILIKE %[1]s OR email ILIKE %[1]s)",
			qb.bind(pattern),
		))
	}
	if filter.Role != "" {
		qb.where("role = " + qb.bind(filter.Role))
	}
	if filter.Status != "" {
		qb.where("status = " + qb.bind(filter.Status))
	}

	countQuery := `SELECT COUNT(*) FROM users` + qb.clause()

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, qb.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	query := `SELECT ` + userColumns + ` FROM users` + qb.clause() +
		` ORDER BY created_at DESC LIMIT ` + qb.bind(page.Limit) +
		` OFFSET ` + qb.bind(page.Offset())

	rows, err := r.pool.Query(ctx, query, qb.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search users: %w", err)
	}
	defer rows.Close()

	users, err := collectUsers(rows)
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// UpdateUser applies a partial update and returns the updated row.
// Fields left nil keep their prior stored value; updated_at always refreshes.
func (r *Repository) UpdateUser(ctx context.Context, id string, update UserUpdate) (*model.User, error) {
	query := `
		UPDATE users
		SET first_name = COALESCE($1, first_name),
		    last_name = COALESCE($2, last_name),
		    role = COALESCE($3, role),
		    status = COALESCE($4, status),
		    updated_at = now()
		WHERE id = $5
		RETURNING ` + userColumns

	user, err := scanUser(r.pool.QueryRow(ctx, query,
		update.FirstName,
		update.LastName,
		update.Role,
		update.Status,
		id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// DeactivateUser performs a logical delete: the status flips to
// inactive and the row is kept.
func (r *Repository) DeactivateUser(ctx context.Context, id string) (*model.User, error) {
	query := `
		UPDATE users
		SET status = $1, updated_at = now()
		WHERE id = $2
		RETURNING ` + userColumns

	user, err := scanUser(r.pool.QueryRow(ctx, query, model.UserStatusInactivo, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to deactivate user: %w", err)
	}

	return user, nil
}

// scanUser scans a single user row.
func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.Role,
		&user.Status,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// collectUsers drains rows into a slice.
func collectUsers(rows pgx.Rows) ([]*model.User, error) {
	users := make([]*model.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read users: %w", err)
	}
	return users, nil
}
