package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role is the authorization role carried in access tokens.
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// TokenTypeAccess marks tokens that may call the API. Tokens of any other
// type (refresh tokens from the auth service share the secret) are rejected.
const TokenTypeAccess = "access"

// Claims are the custom JWT claims. Subject holds the LINE user ID.
type Claims struct {
	DisplayName string `json:"name"`
	Role        Role   `json:"role"`
	TokenType   string `json:"typ"`
	jwt.RegisteredClaims
}

// UserID returns the subject of the token.
func (c *Claims) UserID() string { return c.Subject }

// JWTManager issues and verifies HS256 access tokens.
type JWTManager struct {
	secret         []byte
	issuer         string
	accessTokenTTL time.Duration
	now            func() time.Time
}

// NewJWTManager creates a JWTManager.
func NewJWTManager(secret, issuer string, accessTokenTTL time.Duration) *JWTManager {
	return &JWTManager{
		secret:         []byte(secret),
		issuer:         issuer,
		accessTokenTTL: accessTokenTTL,
		now:            time.Now,
	}
}

// GenerateAccessToken signs a short-lived token for userID.
func (m *JWTManager) GenerateAccessToken(userID, displayName string, role Role) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("user ID is required")
	}
	now := m.now()
	claims := Claims{
		DisplayName: displayName,
		Role:        role,
		TokenType:   TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken verifies the signature, algorithm, issuer, expiry and token
// type of tokenString.
func (m *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != TokenTypeAccess {
		return nil, fmt.Errorf("%w: not an access token", ErrInvalidToken)
	}
	return claims, nil
}
