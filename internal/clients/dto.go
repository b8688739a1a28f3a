package clients

import (
	"time"

	"github.com/google/uuid"

	"github.com/luestilo/estilo-backend/pkg/db/models"
)

// ClientDTO is the transport shape for a store customer.
type ClientDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CPF       string    `json:"cpf"`
	Address   string    `json:"address"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateClientRequest carries the payload for registering a customer.
type CreateClientRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"required"`
	CPF     string `json:"cpf" validate:"required"`
	Address string `json:"address" validate:"required"`
}

// UpdateClientRequest carries a partial update; only non-nil fields are applied.
type UpdateClientRequest struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone    *string `json:"phone,omitempty"`
	CPF      *string `json:"cpf,omitempty"`
	Address  *string `json:"address,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// ListFilters narrows client listings.
type ListFilters struct {
	Name  string
	Email string
}

func FromModel(c *models.Client) *ClientDTO {
	if c == nil {
		return nil
	}

	return &ClientDTO{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		CPF:       c.CPF,
		Address:   c.Address,
		IsActive:  c.IsActive,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func FromModels(rows []models.Client) []ClientDTO {
	out := make([]ClientDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
