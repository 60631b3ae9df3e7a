// Package auth issues and checks the HS256 session tokens of the Auth API.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/didkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenType marks session tokens so other HS256 tokens signed with the same
// secret are not accepted as sessions.
const TokenType = "access_token"

// Claims carries the authenticated DID alongside the registered claims.
// Subject and DID hold the same value.
type Claims struct {
	jwt.RegisteredClaims
	DID  string `json:"did"`
	Type string `json:"type"`
}

// GenerateToken signs a session token for did valid from now for validity.
// It returns the token and its expiry.
func GenerateToken(did string, secretKey []byte, validity time.Duration, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(validity)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   did,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
		DID:  did,
		Type: TokenType,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseToken validates tokenString and returns its claims. Expired, forged or
// non-session tokens yield common.ErrInvalidToken. Expiry is checked against
// now, or the wall clock if now is nil.
func ParseToken(tokenString string, secretKey []byte, now func() time.Time) (*Claims, error) {
	claims := &Claims{}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if now != nil {
		opts = append(opts, jwt.WithTimeFunc(now))
	}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidToken, err)
	}

	return ValidateClaims(token)
}

// ValidateClaims checks the session-specific claims of an already verified token.
func ValidateClaims(token *jwt.Token) (*Claims, error) {
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, common.ErrInvalidToken
	}
	if claims.Type != TokenType {
		return nil, fmt.Errorf("%w: token type %q", common.ErrInvalidToken, claims.Type)
	}
	if claims.DID == "" {
		return nil, errors.Join(common.ErrInvalidToken, errors.New("token carries no did"))
	}
	return claims, nil
}
