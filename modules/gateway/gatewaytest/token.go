package gatewaytest

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when a presented token fails validation.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when a presented token has expired.
	ErrExpiredToken = errors.New("token has expired")
)

// Claims carries the identity fields the fake API embeds in its tokens.
type Claims struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenMinter issues and validates the HS256 bearer tokens the fake API
// hands out on login.
type TokenMinter struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenMinter creates a minter with a fixed test secret.
func NewTokenMinter() *TokenMinter {
	return &TokenMinter{
		secret: []byte("gatewaytest-secret"),
		issuer: "gatewaytest",
		ttl:    time.Hour,
	}
}

// Mint issues a token for the given identity fields.
func (m *TokenMinter) Mint(userID int64, name, email, role string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Name:   name,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Parse validates a token and returns its claims.
func (m *TokenMinter) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
