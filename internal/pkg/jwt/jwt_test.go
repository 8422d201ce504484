package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

func TestGenerateAndValidate(t *testing.T) {
	signed, err := Generate(42, "user@example.com", "abc123", "user", testSecret, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	claims, err := Validate(signed, testSecret)
	require.NoError(t, err)

	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, "abc123", claims.SessionToken)
	assert.Equal(t, "user", claims.Role)
	assert.Equal(t, "expensio", claims.Issuer)
}

func TestValidateWrongSecret(t *testing.T) {
	signed, err := Generate(1, "user@example.com", "abc123", "user", testSecret, time.Hour)
	require.NoError(t, err)

	claims, err := Validate(signed, "another-secret")
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidateExpired(t *testing.T) {
	signed, err := Generate(1, "user@example.com", "abc123", "user", testSecret, -time.Minute)
	require.NoError(t, err)

	claims, err := Validate(signed, testSecret)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidateGarbage(t *testing.T) {
	claims, err := Validate("not.a.token", testSecret)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
