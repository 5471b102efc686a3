package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var testCfg = Config{Secret: "test-secret", Issuer: "liftlog-accounts"}

func TestParse_RoundTrip(t *testing.T) {
	token, err := Issue(Identity{Login: "alice@example.com", DisplayName: "Alice"}, testCfg, time.Hour)
	require.NoError(t, err)

	id, err := Parse(token, testCfg)
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", id.Login)
	require.Equal(t, "Alice", id.DisplayName)
}

func TestParse_SubjectFallback(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-42",
		"exp": time.Now().Add(time.Minute).Unix(),
	}).SignedString([]byte(testCfg.Secret))
	require.NoError(t, err)

	id, err := Parse(token, Config{Secret: testCfg.Secret})
	require.NoError(t, err)
	require.Equal(t, "user-42", id.Login)
}

func TestParse_Rejects(t *testing.T) {
	expired, err := Issue(Identity{Login: "a"}, testCfg, -time.Minute)
	require.NoError(t, err)
	wrongKey, err := Issue(Identity{Login: "a"}, Config{Secret: "other", Issuer: testCfg.Issuer}, time.Hour)
	require.NoError(t, err)
	wrongIssuer, err := Issue(Identity{Login: "a"}, Config{Secret: testCfg.Secret, Issuer: "someone"}, time.Hour)
	require.NoError(t, err)
	noLogin, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()}).
		SignedString([]byte(testCfg.Secret))
	require.NoError(t, err)

	for name, token := range map[string]string{
		"expired":      expired,
		"wrong key":    wrongKey,
		"wrong issuer": wrongIssuer,
		"no login":     noLogin,
		"garbage":      "not.a.token",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(token, Config{Secret: testCfg.Secret, Issuer: testCfg.Issuer})
			require.True(t, errors.Is(err, ErrInvalidToken), "err = %v", err)
		})
	}

	_, err = Parse("  ", testCfg)
	require.ErrorIs(t, err, ErrMissingToken)
}

func TestBearerToken(t *testing.T) {
	tok, err := BearerToken("Bearer abc.def")
	require.NoError(t, err)
	require.Equal(t, "abc.def", tok)

	tok, err = BearerToken("bearer   xyz ")
	require.NoError(t, err)
	require.Equal(t, "xyz", tok)

	for _, h := range []string{"", "Bearer", "Basic abc", "Bearer  "} {
		_, err := BearerToken(h)
		require.ErrorIs(t, err, ErrMissingToken, "header %q", h)
	}
}
