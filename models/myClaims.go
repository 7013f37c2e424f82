package models

import (
	jwt "github.com/dgrijalva/jwt-go"
)

// MyClaims is the JWT claims payload. The auth middleware trusts this
// identity verbatim; handlers never re-verify it against the user store.
type MyClaims struct {
	UserID   int    `json:"userid"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
	jwt.StandardClaims
}

// Identity is the caller identity the auth middleware places into the
// request context.
type Identity struct {
	UserID   int
	Email    string
	Nickname string
}
