package persistence

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTTokenSource mints short-lived HS256 bearer tokens for the gateway,
// refreshing ahead of expiry with a buffer so a call in flight never races a
// rotation. Grounded on Toolkit/Commons/auth.AuthManager's
// check-then-lock-then-recheck refresh pattern from the retrieval pack.
type JWTTokenSource struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
	buffer     time.Duration

	mu        sync.RWMutex
	token     string
	expiresAt time.Time

	now func() time.Time
}

// NewJWTTokenSource constructs a token source that signs tokens for issuer,
// valid for ttl, renewed buffer before expiry.
func NewJWTTokenSource(signingKey []byte, issuer string, ttl, buffer time.Duration) *JWTTokenSource {
	return &JWTTokenSource{
		signingKey: signingKey,
		issuer:     issuer,
		ttl:        ttl,
		buffer:     buffer,
		now:        time.Now,
	}
}

func (s *JWTTokenSource) Token(ctx context.Context) (string, error) {
	s.mu.RLock()
	token, expiresAt := s.token, s.expiresAt
	s.mu.RUnlock()

	if token != "" && s.now().Add(s.buffer).Before(expiresAt) {
		return token, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Re-check after acquiring the write lock: another goroutine may have
	// already refreshed while we waited.
	if s.token != "" && s.now().Add(s.buffer).Before(s.expiresAt) {
		return s.token, nil
	}

	expiresAt = s.now().Add(s.ttl)
	claims := jwt.RegisteredClaims{
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(s.now()),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("persistence: sign token: %w", err)
	}

	s.token = signed
	s.expiresAt = expiresAt
	return s.token, nil
}

// StaticTokenSource is a fixed-token implementation for tests and for
// deployments where the embedder already manages rotation upstream.
type StaticTokenSource string

func (s StaticTokenSource) Token(context.Context) (string, error) {
	return string(s), nil
}
