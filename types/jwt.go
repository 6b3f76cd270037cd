package types

import "github.com/golang-jwt/jwt/v5"

// Claims is the JWT payload shared by the auth utilities and middleware.
type Claims struct {
	UserID uint   `json:"sub"`
	Role   string `json:"role"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
