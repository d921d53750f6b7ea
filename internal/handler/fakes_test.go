package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"

	"github.com/ambufleet/ambufleet/internal/auth"
	"github.com/ambufleet/ambufleet/internal/model"
	"github.com/ambufleet/ambufleet/internal/repository"
)

// fakeUserStore is an in-memory UserStore keyed by id.
type fakeUserStore struct {
	users []*model.User
	err   error

	// lastUpdate records the most recent partial update for assertions.
	lastUpdate   repository.UserUpdate
	lastUpdateID string

	// searchTotal overrides the total count returned by SearchUsers.
	searchTotal int
	lastFilter  repository.UserFilter
	lastPage    repository.Page
}

func (f *fakeUserStore) CreateUser(_ context.Context, user *model.User) error {
	if f.err != nil {
		return f.err
	}
	for _, u := range f.users {
		if u.Email == user.Email {
			return repository.ErrEmailExists
		}
	}
	f.users = append(f.users, user)
	return nil
}

func (f *fakeUserStore) GetUserByID(_ context.Context, id string) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeUserStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeUserStore) ListUsers(_ context.Context) ([]*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.users, nil
}

func (f *fakeUserStore) SearchUsers(_ context.Context, filter repository.UserFilter, page repository.Page) ([]*model.User, int, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	f.lastFilter = filter
	f.lastPage = page
	total := f.searchTotal
	if total == 0 {
		total = len(f.users)
	}
	return f.users, total, nil
}

func (f *fakeUserStore) UpdateUser(_ context.Context, id string, update repository.UserUpdate) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastUpdate = update
	f.lastUpdateID = id
	for _, u := range f.users {
		if u.ID == id {
			if update.FirstName != nil {
				u.FirstName = *update.FirstName
			}
			if update.LastName != nil {
				u.LastName = *update.LastName
			}
			if update.Role != nil {
				u.Role = *update.Role
			}
			if update.Status != nil {
				u.Status = *update.Status
			}
			u.UpdatedAt = time.Now().UTC()
			return u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeUserStore) DeactivateUser(_ context.Context, id string) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if u.ID == id {
			u.Status = model.UserStatusInactivo
			u.UpdatedAt = time.Now().UTC()
			return u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

// fakeVehicleStore is an in-memory VehicleStore keyed by id.
type fakeVehicleStore struct {
	vehicles []*model.Vehicle
	err      error

	lastUpdate   repository.VehicleUpdate
	lastUpdateID string
	lastFilter   repository.VehicleFilter
}

func (f *fakeVehicleStore) CreateVehicle(_ context.Context, vehicle *model.Vehicle) error {
	if f.err != nil {
		return f.err
	}
	f.vehicles = append(f.vehicles, vehicle)
	return nil
}

func (f *fakeVehicleStore) GetVehicleByID(_ context.Context, id string) (*model.Vehicle, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, v := range f.vehicles {
		if v.ID == id {
			return v, nil
		}
	}
	return nil, repository.ErrVehicleNotFound
}

func (f *fakeVehicleStore) ListVehicles(_ context.Context, filter repository.VehicleFilter) ([]*model.Vehicle, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastFilter = filter
	visible := make([]*model.Vehicle, 0)
	for _, v := range f.vehicles {
		if v.Visible {
			visible = append(visible, v)
		}
	}
	return visible, nil
}

func (f *fakeVehicleStore) UpdateVehicle(_ context.Context, id string, update repository.VehicleUpdate) (*model.Vehicle, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastUpdate = update
	f.lastUpdateID = id
	for _, v := range f.vehicles {
		if v.ID == id {
			if update.Plate != nil {
				v.Plate = *update.Plate
			}
			if update.Brand != nil {
				v.Brand = *update.Brand
			}
			if update.Model != nil {
				v.Model = *update.Model
			}
			if update.Year != nil {
				v.Year = *update.Year
			}
			if update.Status != nil {
				v.Status = *update.Status
			}
			if update.Equipment != nil {
				v.Equipment = *update.Equipment
			}
			if update.Visible != nil {
				v.Visible = *update.Visible
			}
			v.UpdatedAt = time.Now().UTC()
			return v, nil
		}
	}
	return nil, repository.ErrVehicleNotFound
}

func (f *fakeVehicleStore) HideVehicle(_ context.Context, id string) (*model.Vehicle, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, v := range f.vehicles {
		if v.ID == id {
			v.Visible = false
			v.UpdatedAt = time.Now().UTC()
			return v, nil
		}
	}
	return nil, repository.ErrVehicleNotFound
}

// fakeRevoker records revocation calls.
type fakeRevoker struct {
	revoked []string
	ttl     time.Duration
	err     error
}

func (f *fakeRevoker) RevokeUser(_ context.Context, userID string, ttl time.Duration) error {
	if f.err != nil {
		return f.err
	}
	f.revoked = append(f.revoked, userID)
	f.ttl = ttl
	return nil
}

// staticIssuer returns a fixed token for any user.
type staticIssuer struct {
	token string
	err   error
}

func (s *staticIssuer) Issue(_ *model.User) (string, error) {
	return s.token, s.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestUser(t *testing.T, email, password, role string) *model.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	now := time.Now().UTC()
	return &model.User{
		ID:           ulid.Make().String(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    "Ana",
		LastName:     "García",
		Role:         role,
		Status:       model.UserStatusActivo,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func newTestVehicle(plate string) *model.Vehicle {
	now := time.Now().UTC()
	return &model.Vehicle{
		ID:        ulid.Make().String(),
		Plate:     plate,
		Brand:     "Mercedes-Benz",
		Model:     "Sprinter",
		Year:      2021,
		Status:    model.VehicleStatusDisponible,
		Equipment: []string{"desfibrilador", "camilla"},
		Visible:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// withURLParam attaches a chi route parameter to the request context.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// errStore wraps a sentinel so fakes can simulate backend failures.
var errStore = errors.New("store unavailable")

func doJSON(t *testing.T, handlerFunc http.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	handlerFunc(rec, req)
	return rec
}
