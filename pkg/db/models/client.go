package models

import (
	"time"

	"github.com/google/uuid"
)

// Client represents a store customer.
type Client struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	Email     string    `gorm:"column:email;type:text;not null;uniqueIndex"`
	Phone     string    `gorm:"column:phone;not null"`
	CPF       string    `gorm:"column:cpf;type:varchar(11);not null;uniqueIndex"`
	Address   string    `gorm:"column:address;not null"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
