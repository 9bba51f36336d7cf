package handlers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type tokenClaims struct {
	UserID uint `json:"uid"`
	jwt.RegisteredClaims
}

// signAuthToken issues an HS256 token bound to a user and a jti. The jti
// is also stored in auth_tokens, which is what makes revocation work.
func signAuthToken(userID uint, tokenID string) (string, error) {
	if len(options.TokenSecret) == 0 {
		return "", errors.New("token secret is not configured")
	}
	now := time.Now()
	claims := &tokenClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(options.TokenLifetime)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(options.TokenSecret)
}

func parseAuthToken(raw string) (*tokenClaims, error) {
	token, err := jwt.ParseWithClaims(raw, &tokenClaims{}, func(t *jwt.Token) (any, error) {
		return options.TokenSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
