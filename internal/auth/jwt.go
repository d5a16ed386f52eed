package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Principal is the authenticated dashboard user carried by an access
// token.
type Principal struct {
	UserID string
	Email  string
}

type accessClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies short-lived access tokens. Refresh
// tokens are not JWTs; they are opaque Redis session ids.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

func (i *TokenIssuer) Sign(userID, email string) (string, error) {
	if len(i.secret) == 0 {
		return "", errors.New("jwt secret is empty")
	}

	now := time.Now()
	claims := accessClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Verify validates the token signature and expiry and returns the
// principal it carries.
func (i *TokenIssuer) Verify(tokenStr string) (*Principal, error) {
	tok, err := jwt.ParseWithClaims(tokenStr, &accessClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return i.secret, nil
	})
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}

	c, ok := tok.Claims.(*accessClaims)
	if !ok || c.Subject == "" {
		return nil, ErrInvalidToken
	}
	return &Principal{UserID: c.Subject, Email: c.Email}, nil
}
