package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/letsconnect/connect-backend/internal/domain"
)

// TokenVerifier checks bearer tokens minted by the identity provider with a
// shared HS256 secret. The subject claim carries the user id.
type TokenVerifier struct {
	secret []byte
	now    func() time.Time
}

func NewTokenVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret), now: time.Now}
}

// VerifyToken verifies JWT token and returns user ID
func (v *TokenVerifier) VerifyToken(_ context.Context, tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrInvalidToken
		}
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil || !token.Valid {
		return "", domain.ErrInvalidToken
	}

	userID, err := token.Claims.GetSubject()
	if err != nil || userID == "" || domain.IsSyntheticUserID(userID) {
		return "", domain.ErrInvalidToken
	}
	return userID, nil
}

// IssueToken signs a token for userID. Production tokens come from the
// identity provider; this is used by the CLI and tests.
func (v *TokenVerifier) IssueToken(userID string, ttl time.Duration) (string, time.Time, error) {
	now := v.now()
	expiresAt := now.Add(ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})
	signed, err := token.SignedString(v.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}
