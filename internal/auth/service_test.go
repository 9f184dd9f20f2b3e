package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testService() *Service {
	return NewService(nil, newMemoryTokenStore(), NewLogMailer(zap.NewNop()),
		"test-secret", time.Hour, "http://localhost:8080", zap.NewNop())
}

func signTestToken(t *testing.T, s *Service, claims jwt.StandardClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	require.NoError(t, err)
	return token
}

func TestParseToken_RoundTrip(t *testing.T) {
	s := testService()
	now := time.Now()
	token := signTestToken(t, s, jwt.StandardClaims{
		Id:        "jti-1",
		Subject:   "user-1",
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(time.Hour).Unix(),
	})

	claims, err := s.ParseToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "jti-1", claims.Id)
}

func TestParseToken_Expired(t *testing.T) {
	s := testService()
	now := time.Now()
	token := signTestToken(t, s, jwt.StandardClaims{
		Id:        "jti-2",
		Subject:   "user-1",
		IssuedAt:  now.Add(-2 * time.Hour).Unix(),
		ExpiresAt: now.Add(-time.Hour).Unix(),
	})

	_, err := s.ParseToken(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_WrongSecret(t *testing.T) {
	s := testService()
	now := time.Now()
	other := jwt.StandardClaims{
		Id:        "jti-3",
		Subject:   "user-1",
		ExpiresAt: now.Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, other).SignedString([]byte("other-secret"))
	require.NoError(t, err)

	_, err = s.ParseToken(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_Garbage(t *testing.T) {
	s := testService()
	_, err := s.ParseToken(context.Background(), "not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogout_RevokesToken(t *testing.T) {
	s := testService()
	ctx := context.Background()
	now := time.Now()
	claims := jwt.StandardClaims{
		Id:        "jti-4",
		Subject:   "user-1",
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(time.Hour).Unix(),
	}
	token := signTestToken(t, s, claims)

	parsed, err := s.ParseToken(ctx, token)
	require.NoError(t, err)

	require.NoError(t, s.Logout(ctx, parsed))

	_, err = s.ParseToken(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken, "revoked token must be rejected")
}

func TestMemoryTokenStore_TTL(t *testing.T) {
	store := newMemoryTokenStore()
	ctx := context.Background()

	require.NoError(t, store.Revoke(ctx, "a", 50*time.Millisecond))
	revoked, err := store.Revoked(ctx, "a")
	require.NoError(t, err)
	assert.True(t, revoked)

	time.Sleep(60 * time.Millisecond)
	revoked, err = store.Revoked(ctx, "a")
	require.NoError(t, err)
	assert.False(t, revoked, "revocation lapses with the token's own expiry")

	// Already-expired tokens need no revocation entry at all.
	require.NoError(t, store.Revoke(ctx, "b", -time.Minute))
	revoked, err = store.Revoked(ctx, "b")
	require.NoError(t, err)
	assert.False(t, revoked)
}
