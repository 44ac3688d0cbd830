// Package auth issues and verifies identity tokens and hashes passwords
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bookstore/backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// TokenLifetime is the fixed validity window of every issued token
const TokenLifetime = time.Hour

// Verification failures. Callers must not reveal which one occurred.
var (
	ErrMalformedToken   = errors.New("malformed token")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrTokenExpired     = errors.New("token expired")
)

// Identity is the set of user attributes embedded in a token
type Identity struct {
	ID       int
	Email    string
	Username string
	Role     models.Role
}

// IdentityOf extracts the token identity from a public user projection
func IdentityOf(u models.PublicUser) Identity {
	return Identity{ID: u.ID, Email: u.Email, Username: u.Username, Role: u.Role.OrDefault()}
}

// Claims is the signed payload of an access token
type Claims struct {
	UserID   int         `json:"id"`
	Email    string      `json:"email"`
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
	jwt.RegisteredClaims
}

// IsAdmin reports whether the claims carry the admin role
func (c *Claims) IsAdmin() bool {
	return c.Role == models.RoleAdmin
}

// TokenService signs and verifies HS256 tokens with a process-wide secret
type TokenService struct {
	secret []byte
	now    func() time.Time
}

// NewTokenService creates a token service; an empty secret is a configuration error
func NewTokenService(secret string) (*TokenService, error) {
	if secret == "" {
		return nil, fmt.Errorf("token signing secret is empty")
	}
	return &TokenService{
		secret: []byte(secret),
		now:    time.Now,
	}, nil
}

// Issue signs a token for the identity that expires TokenLifetime from now
func (s *TokenService) Issue(id Identity) (string, error) {
	now := s.now()
	claims := Claims{
		UserID:   id.ID,
		Email:    id.Email,
		Username: id.Username,
		Role:     id.Role.OrDefault(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenLifetime)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify validates signature and expiry and returns the embedded claims
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, ErrMalformedToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrMalformedToken
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		default:
			return nil, ErrInvalidSignature
		}
	}
	if !token.Valid {
		return nil, ErrInvalidSignature
	}

	return claims, nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header value
func BearerToken(header string) (string, error) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", ErrMalformedToken
	}
	return parts[1], nil
}
