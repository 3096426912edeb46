package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidAccessToken indicates the presented access token is malformed,
// mis-signed, or expired.
var ErrInvalidAccessToken = errors.New("invalid access token")

const tokenIssuer = "vidtube"

// TokenManager signs and verifies short-lived access tokens.
type TokenManager struct {
	secret  []byte
	ttl     time.Duration
	nowFunc func() time.Time
}

// NewTokenManager constructs a TokenManager signing HS256 tokens with the
// provided secret and lifetime.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if secret == "" {
		panic("auth: token secret must not be empty")
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, nowFunc: func() time.Time { return time.Now().UTC() }}
}

// Issue creates a signed access token for the provided user identifier.
func (m *TokenManager) Issue(userID string) (string, time.Time, error) {
	if userID == "" {
		return "", time.Time{}, errors.New("user id must be provided")
	}

	now := m.nowFunc()
	expiresAt := now.Add(m.ttl)

	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign access token: %w", err)
	}

	return signed, expiresAt, nil
}

// Verify parses the token and returns the user identifier it was issued to.
func (m *TokenManager) Verify(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return m.secret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithExpirationRequired(), jwt.WithTimeFunc(m.nowFunc))
	if err != nil || !parsed.Valid {
		return "", ErrInvalidAccessToken
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrInvalidAccessToken
	}

	return claims.Subject, nil
}
