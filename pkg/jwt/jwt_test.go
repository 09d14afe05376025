package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerRoundTrip(t *testing.T) {
	m := NewManager("secret", "magazine-catalog", time.Hour)

	token, err := m.GenerateAccessToken("seed", RoleEditor)
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "seed", claims.Subject)
	assert.Equal(t, RoleEditor, claims.Role)
	assert.Equal(t, "magazine-catalog", claims.Issuer)
}

func TestManagerRejectsForeignSecret(t *testing.T) {
	token, err := NewManager("one", "", time.Hour).GenerateAccessToken("seed", RoleEditor)
	require.NoError(t, err)

	_, err = NewManager("two", "", time.Hour).ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestManagerRejectsWrongIssuer(t *testing.T) {
	token, err := NewManager("secret", "other", time.Hour).GenerateAccessToken("seed", RoleEditor)
	require.NoError(t, err)

	_, err = NewManager("secret", "magazine-catalog", time.Hour).ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestManagerRejectsExpired(t *testing.T) {
	m := NewManager("secret", "", time.Nanosecond)
	token, err := m.GenerateAccessToken("seed", RoleEditor)
	require.NoError(t, err)

	time.Sleep(1100 * time.Millisecond)
	_, err = m.ValidateAccessToken(token)
	assert.Error(t, err)
}
