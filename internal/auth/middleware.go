// internal/auth/middleware.go
// Bearer-token middleware protecting the matching routes.
// Verifies the JWT and adds user identity to the request context.

package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/hjarta-app/hjarta-backend/internal/common/utils"
)

type contextKey string

const (
	ctxUserID contextKey = "userID"
	ctxRole   contextKey = "role"
)

// Middleware provides authentication middleware
type Middleware struct {
	service Service
}

// NewMiddleware creates a new auth middleware
func NewMiddleware(service Service) *Middleware {
	return &Middleware{service: service}
}

// Authenticate verifies the bearer token and stores the caller's
// identity in the request context.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := m.extractToken(r)
		if token == "" {
			utils.RespondWithError(w, http.StatusUnauthorized, "Missing or invalid authorization header")
			return
		}

		claims, err := m.service.ValidateToken(token)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		if claims.Type != "access" {
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid token type")
			return
		}

		ctx := context.WithValue(r.Context(), ctxUserID, claims.UserID)
		ctx = context.WithValue(ctx, ctxRole, claims.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractToken pulls the token from a "Bearer <token>" Authorization header
func (m *Middleware) extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// GetUserIDFromContext extracts the authenticated user ID from the request context
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(ctxUserID).(string)
	return userID, ok
}

// GetRoleFromContext extracts the caller role from the request context
func GetRoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(ctxRole).(string)
	return role, ok
}

// ResolveSubject decides which user a request may act on. The caller is the
// subject unless it holds the service role, in which case an explicit
// requested ID is honored. A non-service caller asking for another user is
// rejected.
func ResolveSubject(ctx context.Context, requested string) (string, bool) {
	callerID, ok := GetUserIDFromContext(ctx)
	if !ok {
		return "", false
	}
	role, _ := GetRoleFromContext(ctx)

	if requested == "" || requested == callerID {
		return callerID, true
	}
	if role == RoleService {
		return requested, true
	}
	return "", false
}
