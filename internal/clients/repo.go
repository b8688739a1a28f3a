package clients

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/luestilo/estilo-backend/pkg/db/models"
	"github.com/luestilo/estilo-backend/pkg/pagination"
)

// Repository exposes client persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new client row.
func (r *Repository) Create(ctx context.Context, client *models.Client) (*models.Client, error) {
	if client.ID == uuid.Nil {
		client.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(client).Error; err != nil {
		return nil, err
	}
	return client, nil
}

// FindByID loads a client by ID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	var client models.Client
	if err := r.db.WithContext(ctx).First(&client, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

// FindByEmail loads a client by email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.Client, error) {
	var client models.Client
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

// FindByCPF loads a client by its normalized CPF.
func (r *Repository) FindByCPF(ctx context.Context, cpf string) (*models.Client, error) {
	var client models.Client
	if err := r.db.WithContext(ctx).Where("cpf = ?", cpf).First(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

// List returns a page of clients plus the total count of matching rows.
func (r *Repository) List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Client, int64, error) {
	qb := r.db.WithContext(ctx).Model(&models.Client{})

	if name := strings.TrimSpace(filters.Name); name != "" {
		qb = qb.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}
	if email := strings.TrimSpace(filters.Email); email != "" {
		qb = qb.Where("LOWER(email) LIKE ?", "%"+strings.ToLower(email)+"%")
	}

	var total int64
	if err := qb.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Client
	err := qb.
		Order("created_at DESC").
		Offset(params.Offset()).
		Limit(params.Size).
		Find(&rows).
		Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Update persists the full client row.
func (r *Repository) Update(ctx context.Context, client *models.Client) (*models.Client, error) {
	if err := r.db.WithContext(ctx).Save(client).Error; err != nil {
		return nil, err
	}
	return client, nil
}

// Delete removes a client row by ID.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Client{}).Error
}
