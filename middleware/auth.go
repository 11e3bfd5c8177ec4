package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"habitTrackerAPI/internal/identity"
	"habitTrackerAPI/internal/logger"
)

type contextKey string

const UserIDKey contextKey = "userID"
const IdentityKey contextKey = "identity"

type Authenticator struct {
	verifier identity.Verifier
}

func NewAuthenticator(verifier identity.Verifier) *Authenticator {
	return &Authenticator{verifier: verifier}
}

// Authenticate verifies token and returns ctx carrying the caller's identity.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (context.Context, error) {
	id, err := a.verifier.Verify(ctx, token)
	if err != nil {
		return ctx, err
	}
	return WithIdentity(ctx, id), nil
}

// Middleware validates the bearer token and stores the caller's identity in the
// request context.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			respondWithError(w, http.StatusUnauthorized, "Authorization header required")
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader || token == "" {
			respondWithError(w, http.StatusUnauthorized, "Invalid authorization format. Use 'Bearer <token>'")
			return
		}

		ctx, err := a.Authenticate(r.Context(), token)
		if err != nil {
			logger.Debug("token verification failed", "error", err)
			respondWithError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func WithIdentity(ctx context.Context, id *identity.Identity) context.Context {
	ctx = context.WithValue(ctx, IdentityKey, id)
	return context.WithValue(ctx, UserIDKey, id.UID)
}

// GetUserID extracts the authenticated user id from context
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok && userID != ""
}

func GetIdentity(ctx context.Context) (*identity.Identity, bool) {
	id, ok := ctx.Value(IdentityKey).(*identity.Identity)
	return id, ok
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	body, _ := json.Marshal(map[string]string{"error": message})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(body)
}
