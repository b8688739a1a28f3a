package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/luestilo/estilo-backend/pkg/enums"
)

// Claims represents the typed JWT issued to clients. Type discriminates
// access tokens from refresh tokens so one can never stand in for the other.
type Claims struct {
	UserID uuid.UUID       `json:"user_id"`
	Type   enums.TokenType `json:"type"`
	jwt.RegisteredClaims
}
