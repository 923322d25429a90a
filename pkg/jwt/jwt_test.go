package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_AccessAndRefresh(t *testing.T) {
	m := NewManager("secret", time.Minute, time.Hour)

	access, err := m.GenerateAccessToken("admin", "superuser")
	require.NoError(t, err)
	claims, err := m.ValidateAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, "superuser", claims.Scope)
	assert.NotEmpty(t, claims.ID)

	_, err = m.ValidateRefreshToken(access)
	assert.Error(t, err)

	again, err := m.GenerateAccessToken("admin", "superuser")
	require.NoError(t, err)
	assert.NotEqual(t, access, again, "every token carries its own id")

	_, err = NewManager("other", time.Minute, time.Hour).ValidateAccessToken(access)
	assert.Error(t, err)
}

func TestManager_Expired(t *testing.T) {
	m := NewManager("secret", time.Minute, time.Hour)
	issued := time.Now().Add(-2 * time.Minute)
	m.now = func() time.Time { return issued }
	token, err := m.GenerateAccessToken("admin", "")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.ValidateAccessToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestExpiresAtUnverified(t *testing.T) {
	m := NewManager("secret", 15*time.Minute, time.Hour)
	token, err := m.GenerateAccessToken("admin", "")
	require.NoError(t, err)

	exp, err := ExpiresAtUnverified(token)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), exp, 5*time.Second)

	bare, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "x"}).SignedString([]byte("k"))
	require.NoError(t, err)
	_, err = ExpiresAtUnverified(bare)
	assert.ErrorIs(t, err, ErrNoExpiry)

	_, err = ExpiresAtUnverified("not a token")
	assert.Error(t, err)
}
