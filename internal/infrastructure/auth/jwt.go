package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iho/tokengate/internal/domain"
)

// Claims represents the JWT claims minted by the external credential
// service. This service only verifies them.
type Claims struct {
	UserID string      `json:"user_id"`
	Email  string      `json:"email"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// JWTVerifier validates bearer credentials and resolves them to a caller.
type JWTVerifier struct {
	secretKey []byte
}

// NewJWTVerifier creates a new JWTVerifier.
func NewJWTVerifier(secretKey string) *JWTVerifier {
	return &JWTVerifier{secretKey: []byte(secretKey)}
}

// Verify verifies a JWT token and returns the caller it identifies.
func (v *JWTVerifier) Verify(tokenString string) (*domain.Caller, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return v.secretKey, nil
		},
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrExpiredToken
		}
		return nil, domain.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, domain.ErrInvalidToken
	}

	if !claims.Role.IsValid() {
		return nil, domain.ErrInvalidToken
	}

	return &domain.Caller{
		ID:    claims.UserID,
		Email: claims.Email,
		Role:  claims.Role,
	}, nil
}

// Sign mints a token for the given caller. Kept for test fixtures and
// local development; production tokens come from the credential service.
func (v *JWTVerifier) Sign(caller domain.Caller, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID: caller.ID,
		Email:  caller.Email,
		Role:   caller.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(v.secretKey)
}
