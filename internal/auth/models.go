package auth

import "github.com/golang-jwt/jwt/v4"

// Roles carried in access tokens.
const (
	RoleUser    = "user"
	RoleService = "service"
)

// Claims is the JWT payload for access tokens
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	Type   string `json:"type"` // "access" or "refresh"
	jwt.RegisteredClaims
}
