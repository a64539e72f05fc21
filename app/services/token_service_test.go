package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHMACTokenService(t *testing.T, accessTTL, refreshTTL time.Duration) TokenService {
	t.Helper()
	svc, err := NewTokenService(accessTTL, refreshTTL, "scriptbin", "scriptbin-admin", false, "", "", "unit-test-secret")
	require.NoError(t, err)
	return svc
}

func TestNewTokenService(t *testing.T) {
	t.Run("SecretRequired", func(t *testing.T) {
		svc, err := NewTokenService(time.Hour, 24*time.Hour, "scriptbin", "scriptbin-admin", false, "", "", "")
		assert.Nil(t, svc)
		assert.Error(t, err)
	})

	t.Run("RSAKeysRequired", func(t *testing.T) {
		svc, err := NewTokenService(time.Hour, 24*time.Hour, "scriptbin", "scriptbin-admin", true, "", "", "")
		assert.Nil(t, svc)
		assert.Error(t, err)
	})
}

func TestGenerateAndValidateAdminTokens(t *testing.T) {
	svc := newHMACTokenService(t, time.Hour, 24*time.Hour)

	accessToken, refreshToken, err := svc.GenerateAdminTokens(42)
	require.NoError(t, err)
	require.NotEmpty(t, accessToken)
	require.NotEmpty(t, refreshToken)
	assert.NotEqual(t, accessToken, refreshToken)

	access, err := svc.ValidateAdminToken(accessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(42), access.AdminID)
	assert.Equal(t, "access", access.TokenType)
	assert.NotEmpty(t, access.TokenID)
	assert.True(t, access.ExpiresAt.After(access.IssuedAt))

	refresh, err := svc.ValidateAdminToken(refreshToken)
	require.NoError(t, err)
	assert.Equal(t, uint(42), refresh.AdminID)
	assert.Equal(t, "refresh", refresh.TokenType)
	assert.NotEqual(t, access.TokenID, refresh.TokenID)
}

func TestValidateAdminTokenFailures(t *testing.T) {
	svc := newHMACTokenService(t, time.Hour, 24*time.Hour)

	t.Run("Garbage", func(t *testing.T) {
		claims, err := svc.ValidateAdminToken("not-a-jwt")
		assert.Nil(t, claims)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		other, err := NewTokenService(time.Hour, 24*time.Hour, "scriptbin", "scriptbin-admin", false, "", "", "another-secret")
		require.NoError(t, err)

		token, _, err := other.GenerateAdminTokens(1)
		require.NoError(t, err)

		claims, err := svc.ValidateAdminToken(token)
		assert.Nil(t, claims)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("Expired", func(t *testing.T) {
		expired := newHMACTokenService(t, -time.Minute, -time.Minute)
		token, _, err := expired.GenerateAdminTokens(1)
		require.NoError(t, err)

		claims, err := svc.ValidateAdminToken(token)
		assert.Nil(t, claims)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})
}

func TestRefreshAdminToken(t *testing.T) {
	svc := newHMACTokenService(t, time.Hour, 24*time.Hour)

	accessToken, refreshToken, err := svc.GenerateAdminTokens(7)
	require.NoError(t, err)

	t.Run("WithRefreshToken", func(t *testing.T) {
		newAccess, newRefresh, err := svc.RefreshAdminToken(refreshToken)
		require.NoError(t, err)
		assert.NotEmpty(t, newAccess)
		assert.NotEmpty(t, newRefresh)

		claims, err := svc.ValidateAdminToken(newAccess)
		require.NoError(t, err)
		assert.Equal(t, uint(7), claims.AdminID)
		assert.Equal(t, "access", claims.TokenType)
	})

	t.Run("AccessTokenRejected", func(t *testing.T) {
		newAccess, newRefresh, err := svc.RefreshAdminToken(accessToken)
		assert.Empty(t, newAccess)
		assert.Empty(t, newRefresh)
		assert.Error(t, err)
	})
}
