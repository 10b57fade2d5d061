package authUtils

import (
	"testing"

	"civicpulse-be/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := GenerateToken("64f1b2c3d4e5f60718293a4b", models.RoleStaff)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, role, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "64f1b2c3d4e5f60718293a4b", userID)
	assert.Equal(t, models.RoleStaff, role)
}

func TestGenerateTokenRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := GenerateToken("user", models.RoleCitizen)
	assert.Error(t, err)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "first-secret")
	token, err := GenerateToken("user", models.RoleCitizen)
	require.NoError(t, err)

	t.Setenv("JWT_SECRET", "second-secret")
	_, _, err = ParseToken(token)
	assert.Error(t, err)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	_, _, err := ParseToken("not.a.token")
	assert.Error(t, err)
}
