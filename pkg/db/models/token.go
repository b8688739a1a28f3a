package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/luestilo/estilo-backend/pkg/enums"
)

// Token is the server-side record of an issued JWT. A signed token only grants
// access while its row is active and unexpired, which gives logout real teeth.
type Token struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Token     string          `gorm:"column:token;type:text;not null;uniqueIndex"`
	UserID    uuid.UUID       `gorm:"column:user_id;type:uuid;not null;index"`
	TokenType enums.TokenType `gorm:"column:token_type;type:text;not null;default:'access'"`
	ExpiresAt time.Time       `gorm:"column:expires_at;not null"`
	IsActive  bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}
