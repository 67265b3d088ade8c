// Package auth issues and verifies the signed viewer tokens the HTTP API
// authenticates with.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/allmytab/startpage/internal/apperror"
)

// Claims carries the viewer identity plus the profile facts the API needs
// on every request.
type Claims struct {
	Profession string `json:"profession,omitempty"`
	Country    string `json:"country,omitempty"`
	jwt.RegisteredClaims
}

type TokenService struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl}
}

// Issue mints an HS256 token with the viewer id as subject.
func (s *TokenService) Issue(viewerID, profession, country string) (string, error) {
	now := time.Now()
	claims := Claims{
		Profession: profession,
		Country:    country,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   viewerID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify parses and validates a token and returns its claims.
func (s *TokenService) Verify(raw string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, apperror.Permission("token verify")
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, apperror.Permission("token verify")
	}
	return claims, nil
}
