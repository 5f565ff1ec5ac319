package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AdminRole is the fixed role claim embedded in issued tokens.
const AdminRole = "Admin"

// Admin represents an administrator account stored in the admins table.
// Accounts are created once via registration and never updated or deleted.
type Admin struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// LoginRequest carries admin credentials.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the issued bearer token.
type LoginResponse struct {
	Token string `json:"token"`
}

// JWTClaims are the claims embedded in issued access tokens.
type JWTClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}
