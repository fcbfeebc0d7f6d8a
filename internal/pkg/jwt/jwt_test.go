package jwt_test

import (
	"testing"

	"loyalwallet/internal/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "access-secret"

func TestAccessTokenRoundTrip(t *testing.T) {
	token, err := jwt.GenerateAccessToken(7, 3, "owner@coffee.test", "User", secret, 15)
	require.NoError(t, err)

	claims, err := jwt.ValidateAccessToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.AccountID)
	assert.Equal(t, uint(3), claims.CompanyID)
	assert.Equal(t, "owner@coffee.test", claims.Email)
	assert.Equal(t, "User", claims.Role)
}

func TestAccessTokenExpired(t *testing.T) {
	token, err := jwt.GenerateAccessToken(7, 3, "owner@coffee.test", "User", secret, -1)
	require.NoError(t, err)

	_, err = jwt.ValidateAccessToken(token, secret)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestAccessTokenWrongSecret(t *testing.T) {
	token, err := jwt.GenerateAccessToken(7, 3, "owner@coffee.test", "User", secret, 15)
	require.NoError(t, err)

	_, err = jwt.ValidateAccessToken(token, "other")
	assert.ErrorIs(t, err, jwt.ErrTokenInvalid)

	_, err = jwt.ValidateAccessToken("garbage", secret)
	assert.ErrorIs(t, err, jwt.ErrTokenInvalid)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	token, err := jwt.GenerateRefreshToken(9, "token-id", "refresh-secret", 7)
	require.NoError(t, err)

	claims, err := jwt.ValidateRefreshToken(token, "refresh-secret")
	require.NoError(t, err)
	assert.Equal(t, uint(9), claims.AccountID)
	assert.Equal(t, "token-id", claims.TokenID)
}
