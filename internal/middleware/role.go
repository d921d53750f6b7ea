package middleware

import (
	"net/http"
	"slices"

	"github.com/ambufleet/ambufleet/internal/auth"
)

// RequireRole returns middleware that enforces a fixed role allow-list.
// Must be applied after Authenticate. Membership is an exact string
// match: no role implies another, so administrador passes only where
// it is listed.
func RequireRole(allowed ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := auth.ClaimsFromContext(r.Context())
			if claims == nil {
				writeAuthError(w)
				return
			}

			if !slices.Contains(allowed, claims.Role) {
				writeForbiddenError(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// writeForbiddenError writes a 403 Forbidden response.
func writeForbiddenError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_, _ = w.Write([]byte(`{"error":"Acceso denegado"}`))
}
