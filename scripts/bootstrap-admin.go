package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/ambufleet/ambufleet/internal/auth"
	"github.com/ambufleet/ambufleet/internal/model"
	"github.com/ambufleet/ambufleet/internal/repository"
)

type output struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
	Role     string `json:"role"`
}

// Seeds the first administrador account so the API is usable before
// any other user exists. Idempotent: an existing account with the same
// email is left alone.
func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		email       = flag.String("email", "admin@ambufleet.local", "Administrator email")
		password    = flag.String("password", "", "Administrator password (random if empty)")
		firstName   = flag.String("first-name", "Admin", "First name")
		lastName    = flag.String("last-name", "Sistema", "Last name")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	normalized := strings.ToLower(strings.TrimSpace(*email))

	if existing, err := repo.GetUserByEmail(ctx, normalized); err == nil {
		if existing.Role != model.RoleAdministrador {
			fmt.Fprintf(os.Stderr, "user %s exists with role %s\n", normalized, existing.Role)
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "administrator already exists; nothing to do")
		return
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		fmt.Fprintln(os.Stderr, "look up user:", err)
		os.Exit(1)
	}

	plaintext := *password
	generated := false
	if plaintext == "" {
		plaintext, err = randomPassword()
		if err != nil {
			fmt.Fprintln(os.Stderr, "generate password:", err)
			os.Exit(1)
		}
		generated = true
	}

	hash, err := auth.HashPassword(plaintext)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hash password:", err)
		os.Exit(1)
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           ulid.Make().String(),
		Email:        normalized,
		PasswordHash: hash,
		FirstName:    *firstName,
		LastName:     *lastName,
		Role:         model.RoleAdministrador,
		Status:       model.UserStatusActivo,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := repo.CreateUser(ctx, user); err != nil {
		fmt.Fprintln(os.Stderr, "create user:", err)
		os.Exit(1)
	}

	out := output{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	}
	if generated {
		out.Password = plaintext
	}

	switch strings.ToLower(*format) {
	case "plain":
		if generated {
			fmt.Println(plaintext)
		} else {
			fmt.Println(user.ID)
		}
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}

func randomPassword() (string, error) {
	buf := make([]byte, 18)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
