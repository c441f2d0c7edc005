package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims defines the structure of the JWT payload.
type Claims struct {
	Ext      map[string]string `json:"ext"`
	UserID   string            `json:"userId"`
	Username string            `json:"username"`
	jwt.RegisteredClaims
}

type GenerateJwtOpts struct {
	Audience string
	Ext      map[string]string
	Id       string
	Issuer   string
	Secret   string
	Subject  string
	Ttl      time.Duration
	UserId   string
	Username string
}

// GenerateJwt creates a signed JWT for a user session.
func GenerateJwt(opts GenerateJwtOpts) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   opts.UserId,
		Username: opts.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{opts.Audience},
			ID:        opts.Id,
			Issuer:    opts.Issuer,
			Subject:   opts.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(opts.Ttl)),
		},
	}
	if len(opts.Ext) > 0 {
		claims.Ext = map[string]string{}
		for key, value := range opts.Ext {
			claims.Ext[key] = value
		}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(opts.Secret))
}

// ValidateJWT parses and verifies a session token, returning the
// parsed claims when the signature and validity window check out.
func ValidateJWT(secret, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return claims, fmt.Errorf("%w: %w", ErrorExpiredToken, err)
		}
		return claims, fmt.Errorf("%w: %w", ErrorInvalidToken, err)
	}
	if !token.Valid {
		return claims, ErrorInvalidToken
	}
	return claims, nil
}
