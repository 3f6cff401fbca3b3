package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type SessionClaims struct {
	SessionID uuid.UUID `json:"session_id"`
	UserID    string    `json:"user_id"`
	jwt.RegisteredClaims
}

type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
