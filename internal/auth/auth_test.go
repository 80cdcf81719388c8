package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostwatch/hostwatch/internal/auth"
)

func TestService_GenerateAndValidate(t *testing.T) {
	svc := auth.NewService("test-secret", time.Hour)

	token, err := svc.GenerateToken("admin")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
}

func TestService_InvalidToken(t *testing.T) {
	svc := auth.NewService("test-secret", time.Hour)

	_, err := svc.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestService_WrongSecret(t *testing.T) {
	svc := auth.NewService("test-secret", time.Hour)
	other := auth.NewService("other-secret", time.Hour)

	token, err := svc.GenerateToken("admin")
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestService_ExpiredToken(t *testing.T) {
	svc := auth.NewService("test-secret", time.Hour)

	// A service configured with a negative lifetime issues already-expired tokens
	past := auth.NewService("test-secret", -time.Hour)
	token, err := past.GenerateToken("admin")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, auth.ErrExpiredToken)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := auth.HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)

	assert.True(t, auth.CheckPassword("s3cret", hash))
	assert.False(t, auth.CheckPassword("wrong", hash))
}
