package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ambufleet/ambufleet/internal/auth"
	"github.com/ambufleet/ambufleet/internal/model"
)

// TokenVerifier validates a session token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (*model.Claims, error)
}

// RevocationChecker reports whether a user id is on the revocation list.
type RevocationChecker interface {
	IsUserRevoked(ctx context.Context, userID string) (bool, error)
}

// AuthConfig holds configuration for the authentication middleware.
type AuthConfig struct {
	Logger   *slog.Logger
	Verifier TokenVerifier
	// Revocations is optional; when nil, no revocation check is made.
	Revocations RevocationChecker
}

// Authenticate returns a middleware that authenticates requests.
// It extracts the bearer token from the Authorization header, verifies
// signature and expiry, consults the revocation list, and injects the
// claims into the request context. All failures produce the same 401
// body so callers cannot tell a missing token from a bad one.
func Authenticate(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", "missing_token"),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			claims, err := cfg.Verifier.Verify(token)
			if err != nil {
				reason := "invalid_token"
				if errors.Is(err, auth.ErrExpiredToken) {
					reason = "expired_token"
				}
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", reason),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			if cfg.Revocations != nil {
				revoked, err := cfg.Revocations.IsUserRevoked(r.Context(), claims.UserID)
				if err != nil {
					// Fail open: availability over strict revocation.
					cfg.Logger.Error("revocation check failed",
						slog.String("error", err.Error()),
						slog.String("request_id", GetRequestID(r.Context())),
					)
				} else if revoked {
					cfg.Logger.Warn("authentication failed",
						slog.String("reason", "revoked"),
						slog.String("user_id", claims.UserID),
						slog.String("request_id", GetRequestID(r.Context())),
					)
					writeAuthError(w)
					return
				}
			}

			ctx := auth.ContextWithClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearerToken extracts the token from the Authorization header.
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

// writeAuthError writes a 401 Unauthorized response.
// Uses the same message for all auth failures to prevent probing.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"No autorizado"}`))
}
