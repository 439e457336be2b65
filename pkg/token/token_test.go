package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func TestGenerateAndValidate(t *testing.T) {
	signed, err := GenerateJWT(7, RoleAdmin, secret, time.Minute)
	require.NoError(t, err)

	claims, err := ValidateJWT(signed, secret)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.ManagerID)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.Equal(t, "fantasy", claims.Issuer)
}

func TestValidateDefaultsRole(t *testing.T) {
	signed, err := GenerateJWT(3, "", secret, time.Minute)
	require.NoError(t, err)

	claims, err := ValidateJWT(signed, secret)
	require.NoError(t, err)
	assert.Equal(t, RoleManager, claims.Role)
}

func TestValidateRejects(t *testing.T) {
	expired, err := GenerateJWT(1, RoleManager, secret, -time.Minute)
	require.NoError(t, err)
	_, err = ValidateJWT(expired, secret)
	assert.EqualError(t, err, "token has expired")

	signed, err := GenerateJWT(1, RoleManager, secret, time.Minute)
	require.NoError(t, err)
	_, err = ValidateJWT(signed, "other-secret")
	assert.EqualError(t, err, "token signature is invalid")

	anonymous, err := GenerateJWT(0, RoleManager, secret, time.Minute)
	require.NoError(t, err)
	_, err = ValidateJWT(anonymous, secret)
	assert.Error(t, err)

	_, err = ValidateJWT("", secret)
	assert.Error(t, err)
}
