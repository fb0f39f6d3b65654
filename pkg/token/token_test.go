package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Pantiss/config"
)

func setup(t *testing.T) {
	t.Helper()
	config.Cfg.JWTSecret = "test-secret"
	config.Cfg.JWTExpireMinutes = 30
	config.Cfg.JWTRefreshDays = 7
	require.NoError(t, Init())
}

func TestGenerateAndRefresh(t *testing.T) {
	setup(t)

	pair, err := GenerateTokenPair("1234", "seeker")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.Equal(t, 30*60, pair.ExpiresIn)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	claims, err := ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, Claims{AccountID: "1234", Kind: "seeker"}, claims)
}

func TestAccessTokenIsNotRefresh(t *testing.T) {
	setup(t)

	pair, err := GenerateTokenPair("1234", "business")
	require.NoError(t, err)

	_, err = ValidateRefreshToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrNotRefresh)
}

func TestRejectsForeignSignature(t *testing.T) {
	setup(t)

	pair, err := GenerateTokenPair("1234", "seeker")
	require.NoError(t, err)

	config.Cfg.JWTSecret = "another-secret"
	_, err = ValidateRefreshToken(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
