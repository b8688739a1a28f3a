package clients

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/luestilo/estilo-backend/pkg/db/models"
	"github.com/luestilo/estilo-backend/pkg/pagination"
)

func setupClientsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	clients := `
CREATE TABLE IF NOT EXISTS clients (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  phone TEXT NOT NULL,
  cpf TEXT NOT NULL UNIQUE,
  address TEXT NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, conn.Exec(clients).Error)
	return conn
}

func seedClient(t *testing.T, repo *Repository, name, email, cpf string) *models.Client {
	t.Helper()

	client, err := repo.Create(context.Background(), &models.Client{
		Name:     name,
		Email:    email,
		Phone:    "11988887777",
		CPF:      cpf,
		Address:  "Rua das Flores 123",
		IsActive: true,
	})
	require.NoError(t, err)
	return client
}

func TestRepositoryCreateAndFind(t *testing.T) {
	repo := NewRepository(setupClientsTestDB(t))
	ctx := context.Background()

	created := seedClient(t, repo, "Maria Silva", "maria@example.com", "12345678901")
	require.NotEqual(t, uuid.Nil, created.ID)

	byID, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Maria Silva", byID.Name)

	byEmail, err := repo.FindByEmail(ctx, "maria@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	byCPF, err := repo.FindByCPF(ctx, "12345678901")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byCPF.ID)
}

func TestRepositoryUniqueConstraints(t *testing.T) {
	repo := NewRepository(setupClientsTestDB(t))
	ctx := context.Background()

	seedClient(t, repo, "Maria Silva", "maria@example.com", "12345678901")

	_, err := repo.Create(ctx, &models.Client{
		Name:    "Outra Maria",
		Email:   "maria@example.com",
		Phone:   "11977776666",
		CPF:     "99999999999",
		Address: "Outra Rua",
	})
	assert.Error(t, err)
}

func TestRepositoryListFiltersByNameAndEmail(t *testing.T) {
	repo := NewRepository(setupClientsTestDB(t))
	ctx := context.Background()

	seedClient(t, repo, "Maria Silva", "maria@example.com", "11111111111")
	seedClient(t, repo, "Joana Souza", "joana@example.com", "22222222222")
	seedClient(t, repo, "Mariana Costa", "mariana@shop.com", "33333333333")

	params := pagination.Params{Page: 1, Size: 10}

	rows, total, err := repo.List(ctx, params, ListFilters{Name: "mari"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, rows, 2)

	rows, total, err = repo.List(ctx, params, ListFilters{Email: "example.com"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, rows, 2)

	rows, total, err = repo.List(ctx, params, ListFilters{Name: "mari", Email: "shop"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rows, 1)
	assert.Equal(t, "Mariana Costa", rows[0].Name)
}

func TestRepositoryListPagination(t *testing.T) {
	repo := NewRepository(setupClientsTestDB(t))
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		seedClient(t, repo, "Cliente", fmt.Sprintf("cliente%d@example.com", i), fmt.Sprintf("%011d", i))
	}

	rows, total, err := repo.List(ctx, pagination.Params{Page: 2, Size: 5}, ListFilters{})
	require.NoError(t, err)
	assert.Equal(t, int64(12), total)
	assert.Len(t, rows, 5)

	rows, _, err = repo.List(ctx, pagination.Params{Page: 3, Size: 5}, ListFilters{})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestRepositoryDelete(t *testing.T) {
	repo := NewRepository(setupClientsTestDB(t))
	ctx := context.Background()

	created := seedClient(t, repo, "Maria Silva", "maria@example.com", "12345678901")
	require.NoError(t, repo.Delete(ctx, created.ID))

	_, err := repo.FindByID(ctx, created.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
