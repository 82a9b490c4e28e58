// Package auth issues and validates the JWT tokens listener devices
// use against the management API. The WebSocket audio path uses the
// shared header secret instead; these tokens only guard the REST
// surface.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ListenerClaims are the claims embedded in a listener token.
type ListenerClaims struct {
	Host string `json:"host"`
	Room string `json:"room,omitempty"`
	jwt.RegisteredClaims
}

// listener tokens are long-lived; devices re-enroll monthly.
const tokenTTL = 30 * 24 * time.Hour

var ErrInvalidToken = errors.New("invalid token")

// Signer signs and validates listener tokens with a single HMAC key.
type Signer struct {
	secret []byte
}

func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

// IssueListenerToken generates a token for an enrolled listener host.
func (s *Signer) IssueListenerToken(host, room string) (string, error) {
	now := time.Now()
	claims := &ListenerClaims{
		Host: host,
		Room: room,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   host,
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken parses a token string and returns its claims.
func (s *Signer) ValidateToken(tokenString string) (*ListenerClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ListenerClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*ListenerClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
