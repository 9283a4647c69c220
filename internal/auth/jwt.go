package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/daffodeal/marketplace/pkg/middleware"
)

const issuer = "daffodeal"

// ErrInvalidToken is returned for tokens that parse but carry no usable
// identity.
var ErrInvalidToken = errors.New("invalid token claims")

// tokenClaims is the signed payload of a session token.
type tokenClaims struct {
	UserID string `json:"id"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// JWTManager issues and validates HS256 session tokens.
type JWTManager struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

// NewJWTManager creates a manager signing with secret. Issued tokens expire
// after expiry.
func NewJWTManager(secret string, expiry time.Duration) *JWTManager {
	return &JWTManager{secret: []byte(secret), expiry: expiry, now: time.Now}
}

// GenerateToken signs a token for the given principal.
func (m *JWTManager) GenerateToken(userID, email, role string) (string, error) {
	now := m.now().UTC()
	claims := &tokenClaims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate parses token and returns its principal. It has the shape of
// middleware.TokenValidator. Tokens without a role are treated as plain
// users.
func (m *JWTManager) Validate(token string) (*middleware.Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &tokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok || !parsed.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	role := claims.Role
	if role == "" {
		role = middleware.RoleUser
	}
	return &middleware.Claims{UserID: claims.UserID, Email: claims.Email, Role: role}, nil
}
