package util

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gbif/occurrence-annotation/dao/model"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", 1, 168)

	access, refresh, err := tm.CreateTokens(&JWTMessage{Username: "alice", Role: model.RoleUser})
	require.NoError(t, err)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)
	assert.NotEqual(t, access, refresh)

	msg, err := tm.CheckToken(access)
	require.NoError(t, err)
	assert.Equal(t, "alice", msg.Username)
	assert.Equal(t, model.RoleUser, msg.Role)
}

func TestCheckTokenRejectsWrongSecret(t *testing.T) {
	tm := NewTokenManager("test-secret", 1, 168)
	access, _, err := tm.CreateTokens(&JWTMessage{Username: "alice", Role: model.RoleUser})
	require.NoError(t, err)

	other := NewTokenManager("other-secret", 1, 168)
	_, err = other.CheckToken(access)
	assert.Error(t, err)
}

func TestCheckTokenRejectsExpired(t *testing.T) {
	tm := NewTokenManager("test-secret", 1, 168)
	claims := &JWTClaims{
		Username: "alice",
		Role:     model.RoleUser,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = tm.CheckToken(signed)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}
