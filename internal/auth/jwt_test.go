package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthenticator() *JWTAuthenticator {
	return NewJWTAuthenticator("access-secret", "refresh-secret", "Campus", "Campus", time.Hour, 24*time.Hour)
}

func TestGenerateAndValidateTokens(t *testing.T) {
	a := newTestAuthenticator()

	access, refresh, err := a.GenerateTokens(42, "student")
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	token, err := a.ValidateAccessToken(access)
	require.NoError(t, err)
	assert.True(t, token.Valid)

	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, float64(42), claims["sub"])
	assert.Equal(t, "student", claims["role"])
}

func TestAccessTokenRejectedByRefreshValidator(t *testing.T) {
	a := newTestAuthenticator()

	access, _, err := a.GenerateTokens(1, "student")
	require.NoError(t, err)

	// signed with a different secret, must not validate
	_, err = a.ValidateRefreshToken(access)
	assert.Error(t, err)
}

func TestExpiredAccessToken(t *testing.T) {
	a := NewJWTAuthenticator("s", "r", "Campus", "Campus", -time.Minute, time.Hour)

	access, _, err := a.GenerateTokens(1, "student")
	require.NoError(t, err)

	_, err = a.ValidateAccessToken(access)
	assert.Error(t, err)
}

func TestValidateRejectsGarbage(t *testing.T) {
	a := newTestAuthenticator()

	_, err := a.ValidateAccessToken("not.a.token")
	assert.Error(t, err)
}
