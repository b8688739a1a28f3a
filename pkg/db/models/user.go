package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a back-office operator account.
type User struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string    `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	FullName     string    `gorm:"column:full_name;not null"`
	IsActive     bool      `gorm:"column:is_active;not null;default:true"`
	IsSuperuser  bool      `gorm:"column:is_superuser;not null;default:false"`
	Tokens       []Token   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Orders       []Order   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
