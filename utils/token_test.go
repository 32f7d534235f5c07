package authUtils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	manager, err := NewJWTManager("test-secret", time.Hour)
	require.NoError(t, err)

	token, err := manager.Generate("user@example.com")
	require.NoError(t, err)

	email, err := manager.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", email)

	ttl := manager.RemainingTTL(token)
	assert.Greater(t, ttl, 50*time.Minute)
	assert.LessOrEqual(t, ttl, time.Hour)
}

func TestJWTExpiredToken(t *testing.T) {
	manager, err := NewJWTManager("test-secret", -time.Minute)
	require.NoError(t, err)

	token, err := manager.Generate("user@example.com")
	require.NoError(t, err)

	_, err = manager.Verify(token)
	assert.Error(t, err)
	assert.Equal(t, time.Duration(0), manager.RemainingTTL(token))
}

func TestJWTWrongSecret(t *testing.T) {
	issuer, err := NewJWTManager("secret-a", time.Hour)
	require.NoError(t, err)
	verifier, err := NewJWTManager("secret-b", time.Hour)
	require.NoError(t, err)

	token, err := issuer.Generate("user@example.com")
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.Error(t, err)
}

func TestJWTEmptySecretRejected(t *testing.T) {
	_, err := NewJWTManager("", time.Hour)
	assert.Error(t, err)
}
