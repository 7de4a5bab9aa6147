// Package auth mints and verifies the HS256 API tokens that protect the
// HTTP endpoints when a secret key is configured.
package auth

import (
	"time"

	"github.com/Renkon/StoreAPI/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims includes the registered claims plus the holder's name, recorded
// for request logs.
type Claims struct {
	jwt.RegisteredClaims
	Name string
}

func GenerateToken(name string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		Name: name,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func GetNameFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		return "", err
	}

	if !token.Valid {
		return "", common.ErrInvalidToken
	}

	return claims.Name, nil
}
