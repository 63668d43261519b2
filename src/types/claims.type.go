package types

import "github.com/golang-jwt/jwt/v5"

// Claims is the token payload. Email is informational; requests are
// authorized by the user id in `sub` alone.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}
