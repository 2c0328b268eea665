package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "tutor-chat"

var ErrInvalidToken = errors.New("invalid session token")

// SessionClaims are carried by the session token handed to UI clients
type SessionClaims struct {
	SessionID uuid.UUID `json:"sid"`
	Provider  string    `json:"prv,omitempty"`
	Model     string    `json:"mdl,omitempty"`
	SealedKey string    `json:"key,omitempty"`
	jwt.RegisteredClaims
}

// SessionGrant is what a session token authorizes: one session bound to one
// provider, optionally with the user's own API key
type SessionGrant struct {
	SessionID uuid.UUID
	Provider  string
	Model     string
	APIKey    string
	ExpiresAt time.Time
}

// TokenManager issues and verifies session tokens
type TokenManager struct {
	secret    []byte
	encryptor *Encryptor
	ttl       time.Duration
	now       func() time.Time
}

// NewTokenManager creates a token manager from a session secret
func NewTokenManager(secret string, ttl time.Duration) (*TokenManager, error) {
	keys, err := DeriveKeys(secret)
	if err != nil {
		return nil, err
	}
	encryptor, err := NewEncryptor(keys.Sealing)
	if err != nil {
		return nil, err
	}
	return &TokenManager{
		secret:    keys.Signing,
		encryptor: encryptor,
		ttl:       ttl,
		now:       time.Now,
	}, nil
}

// TTL returns the session token lifetime
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a token for grant; the API key is sealed, never stored in clear
func (m *TokenManager) Issue(grant SessionGrant) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.ttl)

	claims := SessionClaims{
		SessionID: grant.SessionID,
		Provider:  grant.Provider,
		Model:     grant.Model,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   grant.SessionID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	if grant.APIKey != "" {
		sealed, err := m.encryptor.Seal(grant.APIKey, grant.SessionID.String())
		if err != nil {
			return "", time.Time{}, fmt.Errorf("failed to seal api key: %w", err)
		}
		claims.SealedKey = sealed
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify validates a token and unseals its grant
func (m *TokenManager) Verify(tokenString string) (*SessionGrant, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.SessionID == uuid.Nil {
		return nil, ErrInvalidToken
	}

	grant := &SessionGrant{
		SessionID: claims.SessionID,
		Provider:  claims.Provider,
		Model:     claims.Model,
	}
	if claims.ExpiresAt != nil {
		grant.ExpiresAt = claims.ExpiresAt.Time
	}
	if claims.SealedKey != "" {
		grant.APIKey, err = m.encryptor.Open(claims.SealedKey, claims.SessionID.String())
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
		}
	}
	return grant, nil
}
