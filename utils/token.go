package authUtils

import (
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
)

// Verifier resolves a bearer credential to a verified email address. The
// rest of the service only depends on this capability, not on how tokens
// are minted.
type Verifier interface {
	Verify(token string) (string, error)
}

// JWTManager issues and verifies HS256 tokens carrying the account email.
type JWTManager struct {
	secret []byte
	ttl    time.Duration
}

// NewJWTManager builds a token manager. Tokens expire after ttl.
func NewJWTManager(secret string, ttl time.Duration) (*JWTManager, error) {
	if secret == "" {
		return nil, fmt.Errorf("JWT secret is empty")
	}
	return &JWTManager{secret: []byte(secret), ttl: ttl}, nil
}

// Generate mints a token for the given email.
func (m *JWTManager) Generate(email string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": email,
		"exp":   time.Now().Add(m.ttl).Unix(),
	})

	return token.SignedString(m.secret)
}

// Verify validates a token and returns the email it carries.
func (m *JWTManager) Verify(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}
	email, ok := claims["email"].(string)
	if !ok || email == "" {
		return "", fmt.Errorf("token carries no email")
	}

	return email, nil
}

// RemainingTTL reports how long a token stays valid, for denylisting it on
// logout. Zero means expired or unreadable.
func (m *JWTManager) RemainingTTL(tokenString string) time.Duration {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil || token == nil {
		return 0
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0
	}
	exp, ok := claims["exp"].(float64)
	if !ok {
		return 0
	}
	remaining := time.Until(time.Unix(int64(exp), 0))
	if remaining < 0 {
		return 0
	}
	return remaining
}
