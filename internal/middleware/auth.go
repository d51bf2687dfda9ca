package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"talkk-backend/internal/models"
	"talkk-backend/internal/services"
)

type contextKey string

const (
	userIDKey contextKey = "user_id"
	userKey   contextKey = "user"
)

// TokenValidator validates a bearer token and returns the subject user id
type TokenValidator interface {
	ValidateJWT(token string) (string, error)
}

// UserResolver loads the user a token resolves to
type UserResolver interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// Auth creates the authorization gate. It rejects requests before any
// handler runs: missing header, malformed token, expired signature and
// unresolvable users all stop here. Expired tokens get a distinct body so
// clients can tell re-authentication from a bad credential.
func Auth(tokens TokenValidator, users UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondError(w, "Authorization header required", http.StatusUnauthorized)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				respondError(w, "Invalid authorization header format", http.StatusUnauthorized)
				return
			}

			userID, err := tokens.ValidateJWT(parts[1])
			if err != nil {
				if errors.Is(err, services.ErrTokenExpired) {
					respondError(w, "Token expired", http.StatusUnauthorized)
					return
				}
				respondError(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			user, err := users.GetByID(r.Context(), userID)
			if err != nil {
				respondError(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			if user.Status == models.UserStatusBanned {
				respondError(w, "Account banned", http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			ctx = context.WithValue(ctx, userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserID extracts the authenticated user id from context
func GetUserID(ctx context.Context) string {
	userID, ok := ctx.Value(userIDKey).(string)
	if !ok {
		return ""
	}
	return userID
}

// GetUser extracts the authenticated user from context
func GetUser(ctx context.Context) *models.User {
	user, ok := ctx.Value(userKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
