// Package auth issues and validates the gateway's bearer tokens.
//
// Tokens are HS256 JWTs signed with a process-wide secret. They are
// self-contained: a token is valid if and only if its signature verifies
// against the current secret and its expiry is still in the future. No
// server-side session state takes part in the decision.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the token payload: the registered time claims plus the username.
type Claims struct {
	jwt.RegisteredClaims
	UserName string `json:"username"`
}

// TokenManager signs and verifies access tokens. It is immutable after
// construction and safe for concurrent use.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager fails on an empty secret or a non-positive ttl, so a
// misconfigured process cannot issue unsigned or non-expiring tokens.
func NewTokenManager(secret []byte, ttl time.Duration) (*TokenManager, error) {
	if len(secret) == 0 {
		return nil, errors.New("token signing secret is empty")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token validity must be positive, got %s", ttl)
	}
	return &TokenManager{secret: secret, ttl: ttl, now: time.Now}, nil
}

// TTL reports the configured token lifetime.
func (m *TokenManager) TTL() time.Duration { return m.ttl }

// Issue returns a signed token for userName and its expiry time. JWT time
// claims have whole-second precision, so the returned expiry is truncated to
// match the one the token carries.
func (m *TokenManager) Issue(userName string) (string, time.Time, error) {
	now := m.now().Truncate(time.Second)
	expiresAt := now.Add(m.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserName: userName,
	})

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// Validate checks the signature and expiry of tokenString.
// It returns common.ErrTokenExpired for an expired token and
// common.ErrInvalidToken for everything else that fails.
func (m *TokenManager) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) {
			return m.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.UserName == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
