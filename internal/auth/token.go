// Package auth issues and verifies the bearer tokens guarding the dashboard
// API. A single operator account is configured through the environment.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	env "manifesthub/internal/secret"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

type TokenService struct {
	secret     []byte
	ttl        time.Duration
	adminEmail string
	adminPw    string
}

func NewTokenService(envManager *env.Manager) *TokenService {
	ttl := time.Duration(*envManager.JwtTTLHours) * time.Hour
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &TokenService{
		secret:     []byte(*envManager.JwtSecret),
		ttl:        ttl,
		adminEmail: *envManager.AdminEmail,
		adminPw:    *envManager.AdminPw,
	}
}

// Login checks the operator credentials and returns a signed token.
func (s *TokenService) Login(email, password string) (string, error) {
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(s.adminEmail)) == 1
	pwOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.adminPw)) == 1
	if !emailOK || !pwOK {
		return "", ErrInvalidCredentials
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": email,
		"iat": now.Unix(),
		"exp": now.Add(s.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses a bearer token and returns the subject email.
func (s *TokenService) Verify(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}
