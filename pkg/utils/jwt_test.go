package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)

	token, err := m.GenerateAccessToken("sana", "reception")
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "sana", claims.Username)
	assert.Equal(t, "reception", claims.Role)
	assert.NotEmpty(t, claims.ID)
}

func TestAccessTokenRejectsOtherSecret(t *testing.T) {
	token, err := NewJWTManager("one", time.Hour).GenerateAccessToken("sana", "owner")
	require.NoError(t, err)

	_, err = NewJWTManager("two", time.Hour).ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestAccessTokenExpires(t *testing.T) {
	m := NewJWTManager("s", time.Minute)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := m.GenerateAccessToken("sana", "owner")
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(token)
	assert.Error(t, err)
}
