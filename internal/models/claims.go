package models

import "github.com/golang-jwt/jwt/v5"

// Claims carried by tokens issued to catalog administrators.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}
