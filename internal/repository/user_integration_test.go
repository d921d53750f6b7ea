//go:build integration

package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/ambufleet/ambufleet/internal/model"
	"github.com/ambufleet/ambufleet/internal/testutil"
)

// ============================================================================
// User Repository Integration Tests
// ============================================================================

func TestIntegrationUserRepository_CreateUser(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	email := testutil.UniqueEmail("create")
	user := testutil.NewTestUser(t, email)

	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	retrieved, err := repo.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}

	if retrieved.Email != email {
		t.Errorf("Email mismatch: got %q, want %q", retrieved.Email, email)
	}
	if retrieved.Role != model.RoleTecnico {
		t.Errorf("Role mismatch: got %q", retrieved.Role)
	}
	if retrieved.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
}

func TestIntegrationUserRepository_CreateUser_LowercasesEmail(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	user := testutil.NewTestUser(t, "Mixed.Case@Example.COM")

	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	retrieved, err := repo.GetUserByEmail(ctx, "MIXED.CASE@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if retrieved.Email != "mixed.case@example.com" {
		t.Errorf("stored email = %q, want lowercased", retrieved.Email)
	}
}

func TestIntegrationUserRepository_CreateUser_DuplicateEmail(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	email := testutil.UniqueEmail("dup")
	first := testutil.NewTestUser(t, email)
	second := testutil.NewTestUser(t, email)

	if err := repo.CreateUser(ctx, first); err != nil {
		t.Fatalf("CreateUser (first) failed: %v", err)
	}

	err := repo.CreateUser(ctx, second)
	if !errors.Is(err, ErrEmailExists) {
		t.Errorf("Expected ErrEmailExists, got: %v", err)
	}
}

func TestIntegrationUserRepository_GetByID_NotFound(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	_, err := repo.GetUserByID(ctx, "nonexistent-id")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got: %v", err)
	}
}

func TestIntegrationUserRepository_UpdateUser_Partial(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	user := testutil.NewTestUser(t, testutil.UniqueEmail("update"))
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	role := model.RoleGestor
	updated, err := repo.UpdateUser(ctx, user.ID, UserUpdate{Role: &role})
	if err != nil {
		t.Fatalf("UpdateUser failed: %v", err)
	}

	if updated.Role != model.RoleGestor {
		t.Errorf("Role = %q, want %q", updated.Role, model.RoleGestor)
	}
	// Omitted fields keep their stored values.
	if updated.FirstName != user.FirstName || updated.LastName != user.LastName {
		t.Errorf("name changed on partial update: %q %q", updated.FirstName, updated.LastName)
	}
	if !updated.UpdatedAt.After(user.UpdatedAt) {
		t.Error("UpdatedAt should refresh")
	}
}

func TestIntegrationUserRepository_UpdateUser_NotFound(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	name := "Luis"
	_, err := repo.UpdateUser(ctx, "nonexistent-id", UserUpdate{FirstName: &name})
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got: %v", err)
	}
}

func TestIntegrationUserRepository_DeactivateUser_KeepsRow(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	user := testutil.NewTestUser(t, testutil.UniqueEmail("deactivate"))
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	deactivated, err := repo.DeactivateUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("DeactivateUser failed: %v", err)
	}
	if deactivated.Status != model.UserStatusInactivo {
		t.Errorf("Status = %q, want %q", deactivated.Status, model.UserStatusInactivo)
	}

	// The row stays addressable after the logical delete.
	retrieved, err := repo.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID after deactivate failed: %v", err)
	}
	if retrieved.Status != model.UserStatusInactivo {
		t.Errorf("retrieved status = %q", retrieved.Status)
	}
}

func TestIntegrationUserRepository_ListUsers_NewestFirst(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	for i := 0; i < 3; i++ {
		user := testutil.NewTestUser(t, testutil.UniqueEmail(fmt.Sprintf("list%d", i)))
		if err := repo.CreateUser(ctx, user); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
	}

	users, err := repo.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(users) != 3 {
		t.Fatalf("len = %d, want 3", len(users))
	}
	for i := 1; i < len(users); i++ {
		if users[i].CreatedAt.After(users[i-1].CreatedAt) {
			t.Error("users not ordered newest first")
		}
	}
}

func TestIntegrationUserRepository_SearchUsers(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	garcia := testutil.NewTestUser(t, testutil.UniqueEmail("garcia"))
	garcia.LastName = "García"
	moreno := testutil.NewTestUserWithRole(t, testutil.UniqueEmail("moreno"), model.RoleMedico)
	moreno.LastName = "Moreno"

	for _, u := range []*model.User{garcia, moreno} {
		if err := repo.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
	}

	tests := []struct {
		name      string
		filter    UserFilter
		wantTotal int
	}{
		{"substring over last name", UserFilter{Search: "garcí"}, 1},
		{"substring over email", UserFilter{Search: "moreno"}, 1},
		{"role filter", UserFilter{Role: model.RoleMedico}, 1},
		{"status filter", UserFilter{Status: model.UserStatusActivo}, 2},
		{"no match", UserFilter{Search: "zzzz"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users, total, err := repo.SearchUsers(ctx, tt.filter, Page{Number: 1, Limit: 10})
			if err != nil {
				t.Fatalf("SearchUsers failed: %v", err)
			}
			if total != tt.wantTotal {
				t.Errorf("total = %d, want %d", total, tt.wantTotal)
			}
			if len(users) != tt.wantTotal {
				t.Errorf("len = %d, want %d", len(users), tt.wantTotal)
			}
		})
	}
}

func TestIntegrationUserRepository_SearchUsers_Pagination(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	for i := 0; i < 25; i++ {
		user := testutil.NewTestUser(t, testutil.UniqueEmail(fmt.Sprintf("page%02d", i)))
		if err := repo.CreateUser(ctx, user); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
	}

	users, total, err := repo.SearchUsers(ctx, UserFilter{}, Page{Number: 2, Limit: 10})
	if err != nil {
		t.Fatalf("SearchUsers failed: %v", err)
	}
	if total != 25 {
		t.Errorf("total = %d, want 25", total)
	}
	if len(users) != 10 {
		t.Errorf("window len = %d, want 10", len(users))
	}

	// The last page holds the remainder.
	users, _, err = repo.SearchUsers(ctx, UserFilter{}, Page{Number: 3, Limit: 10})
	if err != nil {
		t.Fatalf("SearchUsers (page 3) failed: %v", err)
	}
	if len(users) != 5 {
		t.Errorf("last page len = %d, want 5", len(users))
	}
}

func TestIntegrationUserRepository_SearchUsers_ILIKEIsCaseInsensitive(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	user := testutil.NewTestUser(t, testutil.UniqueEmail("ilike"))
	user.FirstName = "Alejandra"
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	_, total, err := repo.SearchUsers(ctx, UserFilter{Search: strings.ToUpper("alejan")}, Page{Number: 1, Limit: 10})
	if err != nil {
		t.Fatalf("SearchUsers failed: %v", err)
	}
	if total != 1 {
		t.Errorf("total = %d, want 1", total)
	}
}

func newUserTestEnv(t *testing.T) (context.Context, *Repository) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	repo, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := testutil.ResetUsersSchema(ctx, repo.Pool()); err != nil {
		t.Fatalf("reset users schema: %v", err)
	}

	return ctx, repo
}
