package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTTokenSource_MintsValidToken(t *testing.T) {
	key := []byte("test-signing-key")
	src := NewJWTTokenSource(key, "agentspec", time.Hour, 5*time.Minute)

	token, err := src.Token(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return key, nil
	})
	require.NoError(t, err)
	assert.True(t, parsed.Valid)
	assert.Equal(t, "agentspec", claims.Issuer)
}

func TestJWTTokenSource_ReusesTokenUntilNearExpiry(t *testing.T) {
	key := []byte("test-signing-key")
	now := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	src := NewJWTTokenSource(key, "agentspec", time.Hour, 5*time.Minute)
	src.now = func() time.Time { return now }

	first, err := src.Token(context.Background())
	require.NoError(t, err)

	second, err := src.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestJWTTokenSource_RefreshesWithinBuffer(t *testing.T) {
	key := []byte("test-signing-key")
	now := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	src := NewJWTTokenSource(key, "agentspec", time.Hour, 5*time.Minute)
	src.now = func() time.Time { return now }

	first, err := src.Token(context.Background())
	require.NoError(t, err)

	now = now.Add(56 * time.Minute) // inside the 5-minute pre-expiry buffer
	src.now = func() time.Time { return now }

	second, err := src.Token(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestStaticTokenSource(t *testing.T) {
	src := StaticTokenSource("fixed-token")
	token, err := src.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fixed-token", token)
}
