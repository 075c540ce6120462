// Package identity decodes display identity from bearer tokens. Signatures are
// not verified: the backend is the only authority on token validity.
package identity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"advisorbot/internal/model"
)

const fallbackEmail = "User"

var ErrMalformedToken = errors.New("malformed token")

// Claims is the subset of the backend's token payload the front ends display.
type Claims struct {
	Email  string `json:"email"`
	Role   string `json:"role"`
	UserID any    `json:"user_id,omitempty"`
	jwt.RegisteredClaims
}

// Decode reads the payload of token without checking its signature or expiry.
func Decode(token string) (*Claims, error) {
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	if token == "" {
		return nil, ErrMalformedToken
	}

	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	return claims, nil
}

// Read returns the display identity for token. An empty token yields an empty
// identity; an undecodable one yields the generic "User" label.
func Read(token string) model.Identity {
	if strings.TrimSpace(token) == "" {
		return model.Identity{}
	}
	claims, err := Decode(token)
	if err != nil {
		return model.Identity{Email: fallbackEmail}
	}

	email := strings.TrimSpace(claims.Email)
	if email == "" {
		email = strings.TrimSpace(claims.Subject)
	}
	if email == "" {
		email = fallbackEmail
	}
	return model.Identity{Email: email, Role: claims.Role}
}
