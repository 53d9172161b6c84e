package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// JWT claims structure
type Claims struct {
	UserID   int64  `json:"user_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}
