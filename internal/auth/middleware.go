// internal/auth/middleware.go
// Identity is supplied by the upstream chat transport as a stable numeric
// user id. There is no credential verification here; the only privileged
// surface is the admin API, gated by a configured allow-list.

package auth

import (
	"context"
	"net/http"
	"strconv"

	"github.com/mkotelnikov/coffeematch-backend/internal/common/utils"
	"github.com/mkotelnikov/coffeematch-backend/internal/config"
)

// UserIDHeader carries the caller's externally assigned identifier
const UserIDHeader = "X-User-ID"

// Middleware resolves caller identity and admin privileges
type Middleware struct {
	cfg *config.Config
}

// NewMiddleware creates a new auth middleware
func NewMiddleware(cfg *config.Config) *Middleware {
	return &Middleware{cfg: cfg}
}

// Identify requires a valid user id header and adds it to the request context
func (m *Middleware) Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := m.extractUserID(r)
		if !ok {
			utils.RespondWithError(w, http.StatusUnauthorized, "Missing or invalid "+UserIDHeader+" header")
			return
		}

		ctx := context.WithValue(r.Context(), "userID", userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin additionally checks the caller against the admin allow-list
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := m.extractUserID(r)
		if !ok {
			utils.RespondWithError(w, http.StatusUnauthorized, "Missing or invalid "+UserIDHeader+" header")
			return
		}

		if !m.cfg.IsAdmin(userID) {
			utils.RespondWithError(w, http.StatusForbidden, "Admin access required")
			return
		}

		ctx := context.WithValue(r.Context(), "userID", userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Middleware) extractUserID(r *http.Request) (int64, bool) {
	raw := r.Header.Get(UserIDHeader)
	if raw == "" {
		return 0, false
	}

	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || userID <= 0 {
		return 0, false
	}

	return userID, true
}
