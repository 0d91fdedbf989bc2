// Package auth issues and verifies the stateless bearer tokens that guard
// every expense and insights operation.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for missing, malformed, expired or badly
// signed tokens. The message is intentionally generic.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the identity a verified token resolves to.
type Claims struct {
	UserID string
	Email  string
}

// TokenManager issues and verifies self-contained session tokens. Verification
// requires no store lookup, so there is no revocation.
type TokenManager interface {
	Issue(claims Claims) (string, error)
	Verify(token string) (Claims, error)
}

type jwtClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type jwtManager struct {
	secret []byte
	ttl    time.Duration
}

// NewJWTManager returns a TokenManager backed by HS256-signed JWTs valid for
// the given duration.
func NewJWTManager(secret string, ttl time.Duration) TokenManager {
	return &jwtManager{secret: []byte(secret), ttl: ttl}
}

func (m *jwtManager) Issue(claims Claims) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtClaims{
		Email: claims.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	})
	return token.SignedString(m.secret)
}

func (m *jwtManager) Verify(tokenStr string) (Claims, error) {
	var parsed jwtClaims
	token, err := jwt.ParseWithClaims(tokenStr, &parsed, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid || parsed.Subject == "" {
		return Claims{}, ErrInvalidToken
	}
	return Claims{UserID: parsed.Subject, Email: parsed.Email}, nil
}
