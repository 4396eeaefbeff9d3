package jwthelper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUserAgent = "Mozilla/5.0 (test)"

var testSigningKey = []byte("test-signing-key")

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken(testSigningKey, 42, testUserAgent)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseToken(testSigningKey, token, testUserAgent)

	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, testUserAgent, claims.UserAgent)
}

func TestParseToken_WrongKey(t *testing.T) {
	token, err := GenerateToken(testSigningKey, 42, testUserAgent)
	require.NoError(t, err)

	_, err = ParseToken([]byte("different-key"), token, testUserAgent)

	assert.Error(t, err)
}

func TestParseToken_WrongUserAgent(t *testing.T) {
	token, err := GenerateToken(testSigningKey, 42, testUserAgent)
	require.NoError(t, err)

	_, err = ParseToken(testSigningKey, token, "curl/8.0")

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_Garbage(t *testing.T) {
	_, err := ParseToken(testSigningKey, "not.a.token", testUserAgent)

	assert.Error(t, err)
}
