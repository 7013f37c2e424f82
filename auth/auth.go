package auth

import (
	"playmateserver/models"

	jwt "github.com/dgrijalva/jwt-go"
)

// JwtKey signs every session token. Overridden from config at startup.
var JwtKey = []byte("playmate_dev_secret")

// SetKey installs the signing key from configuration.
func SetKey(key string) {
	if key != "" {
		JwtKey = []byte(key)
	}
}

// ParseToken validates the signature and expiry and returns the claims.
func ParseToken(tokenString string) (*models.MyClaims, error) {
	claims := &models.MyClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return JwtKey, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.NewValidationError("token is not valid", jwt.ValidationErrorClaimsInvalid)
	}
	return claims, nil
}
