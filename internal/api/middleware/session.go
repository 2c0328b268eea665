package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/Rrens/tutor-chat/internal/api/response"
	"github.com/Rrens/tutor-chat/internal/security"
	"github.com/Rrens/tutor-chat/internal/service"
	"github.com/Rrens/tutor-chat/internal/tutor"
)

type contextKey string

const sessionIDKey contextKey = "sessionID"

// SessionAuth authenticates requests carrying a session token
type SessionAuth struct {
	tokens   *security.TokenManager
	registry *service.SessionRegistry
}

// NewSessionAuth creates a new session auth middleware
func NewSessionAuth(tokens *security.TokenManager, registry *service.SessionRegistry) *SessionAuth {
	return &SessionAuth{tokens: tokens, registry: registry}
}

// Authenticate validates the bearer token and makes sure its session is live.
// A valid token whose session was evicted gets a fresh empty session.
func (m *SessionAuth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Error(w, http.StatusUnauthorized, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			response.Error(w, http.StatusUnauthorized, "invalid authorization header format")
			return
		}

		grant, err := m.tokens.Verify(parts[1])
		if err != nil {
			response.Unauthorized(w, "invalid or expired session token")
			return
		}

		m.registry.Restore(grant.SessionID, tutor.LLMSettings{
			Provider: grant.Provider,
			Model:    grant.Model,
			APIKey:   grant.APIKey,
		})

		ctx := context.WithValue(r.Context(), sessionIDKey, grant.SessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithSessionID returns ctx carrying a session id
func WithSessionID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, sessionIDKey, id)
}

// GetSessionID gets the session ID from context
func GetSessionID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(sessionIDKey).(uuid.UUID)
	return id, ok
}
