package middleware

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/userhub/user-service/internal/apperror"
	"github.com/userhub/user-service/internal/models"
	"github.com/userhub/user-service/internal/security"
)

type contextKey string

const userKey contextKey = "user"

// UserResolver is the interface that wraps the user lookup needed to attach
// the acting user to a request
type UserResolver interface {
	// Method GetByID retrieves a user by ID. It fails with a not-found
	// error when no such user exists.
	GetByID(ctx context.Context, userID int) (*models.User, error)
}

// AuthenticateRequest verifies a bearer Authorization header and resolves
// the acting user from the store. Every failure mode (missing or malformed
// header, bad signature, expired token, deleted user) yields the same
// unauthenticated error, so callers cannot distinguish them. Re-resolving
// the user here is what makes deleting an account invalidate its
// outstanding tokens on the next request.
func AuthenticateRequest(ctx context.Context, tokens *security.TokenGenerator, users UserResolver, authorizationHeader string) (*models.User, error) {
	var token string
	parts := strings.Split(authorizationHeader, " ")
	if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
		token = parts[1]
	}
	if token == "" {
		return nil, apperror.New(apperror.Unauthenticated, "authentication required")
	}

	userID, err := tokens.Verify(token)
	if err != nil {
		return nil, apperror.Wrap(apperror.Unauthenticated, "invalid or expired token", err)
	}

	user, err := users.GetByID(ctx, userID)
	if err != nil {
		// A deleted backing user is indistinguishable from a bad token
		return nil, apperror.Wrap(apperror.Unauthenticated, "invalid or expired token", err)
	}

	return user, nil
}

// AuthorizeRoles checks that the user's role is in the allowed set
func AuthorizeRoles(user *models.User, allowedRoles ...models.Role) error {
	if !slices.Contains(allowedRoles, user.Role) {
		return apperror.New(apperror.Forbidden, "insufficient permissions")
	}
	return nil
}

// Authenticate validates the session token, resolves the acting user and
// attaches it to the request context
func Authenticate(tokens *security.TokenGenerator, users UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := AuthenticateRequest(r.Context(), tokens, users, r.Header.Get("Authorization"))
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"authentication required"}`))
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects requests whose attached user is not in the allowed
// set. It must run after Authenticate.
func RequireRole(allowedRoles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := GetUser(r.Context())
			if !ok {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"authentication required"}`))
				return
			}

			if err := AuthorizeRoles(user, allowedRoles...); err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte(`{"error":"insufficient permissions"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetUser retrieves the acting user from context
func GetUser(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userKey).(*models.User)
	return user, ok
}

// WithUser attaches a user to the context, for tests and handlers
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}
