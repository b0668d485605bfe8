package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/letsconnect/connect-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestVerifyToken(t *testing.T) {
	ctx := context.Background()
	v := NewTokenVerifier(secret)

	t.Run("round trip", func(t *testing.T) {
		tok, exp, err := v.IssueToken("did:privy:alice", time.Hour)
		require.NoError(t, err)
		assert.True(t, exp.After(time.Now()))

		userID, err := v.VerifyToken(ctx, tok)
		require.NoError(t, err)
		assert.Equal(t, "did:privy:alice", userID)
	})

	t.Run("expired", func(t *testing.T) {
		past := NewTokenVerifier(secret)
		past.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		tok, _, err := past.IssueToken("alice", time.Hour)
		require.NoError(t, err)

		_, err = v.VerifyToken(ctx, tok)
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		tok, _, err := NewTokenVerifier("another-secret-another-secret-xx").IssueToken("alice", time.Hour)
		require.NoError(t, err)
		_, err = v.VerifyToken(ctx, tok)
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})

	t.Run("missing expiry", func(t *testing.T) {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "alice"}).SignedString([]byte(secret))
		require.NoError(t, err)
		_, err = v.VerifyToken(ctx, tok)
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})

	t.Run("other algorithm", func(t *testing.T) {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
			"sub": "alice",
			"exp": time.Now().Add(time.Hour).Unix(),
		}).SignedString([]byte(secret))
		require.NoError(t, err)
		_, err = v.VerifyToken(ctx, tok)
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})

	t.Run("synthetic subject", func(t *testing.T) {
		tok, _, err := v.IssueToken("sample-1", time.Hour)
		require.NoError(t, err)
		_, err = v.VerifyToken(ctx, tok)
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := v.VerifyToken(ctx, "not-a-jwt")
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})
}
