package clients

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/luestilo/estilo-backend/pkg/db/models"
	pkgerrors "github.com/luestilo/estilo-backend/pkg/errors"
	"github.com/luestilo/estilo-backend/pkg/pagination"
)

type stubClientsRepo struct {
	byID      map[uuid.UUID]*models.Client
	created   []*models.Client
	deleted   []uuid.UUID
	createErr error
	updateErr error
}

func newStubClientsRepo() *stubClientsRepo {
	return &stubClientsRepo{byID: make(map[uuid.UUID]*models.Client)}
}

func (s *stubClientsRepo) add(client *models.Client) *models.Client {
	if client.ID == uuid.Nil {
		client.ID = uuid.New()
	}
	s.byID[client.ID] = client
	return client
}

func (s *stubClientsRepo) Create(ctx context.Context, client *models.Client) (*models.Client, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created = append(s.created, client)
	return s.add(client), nil
}

func (s *stubClientsRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	if client, ok := s.byID[id]; ok {
		return client, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubClientsRepo) FindByEmail(ctx context.Context, email string) (*models.Client, error) {
	for _, client := range s.byID {
		if client.Email == email {
			return client, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubClientsRepo) FindByCPF(ctx context.Context, cpf string) (*models.Client, error) {
	for _, client := range s.byID {
		if client.CPF == cpf {
			return client, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubClientsRepo) List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Client, int64, error) {
	var matched []models.Client
	for _, client := range s.byID {
		if filters.Name != "" && !strings.Contains(strings.ToLower(client.Name), strings.ToLower(filters.Name)) {
			continue
		}
		if filters.Email != "" && !strings.Contains(strings.ToLower(client.Email), strings.ToLower(filters.Email)) {
			continue
		}
		matched = append(matched, *client)
	}

	total := int64(len(matched))
	start := params.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + params.Size
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (s *stubClientsRepo) Update(ctx context.Context, client *models.Client) (*models.Client, error) {
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	s.byID[client.ID] = client
	return client, nil
}

func (s *stubClientsRepo) Delete(ctx context.Context, id uuid.UUID) error {
	s.deleted = append(s.deleted, id)
	delete(s.byID, id)
	return nil
}

func newTestService(t *testing.T, repo *stubClientsRepo) *Service {
	t.Helper()

	svc, err := NewService(repo)
	require.NoError(t, err)
	return svc
}

func validCreateRequest() CreateClientRequest {
	return CreateClientRequest{
		Name:    "Maria Silva",
		Email:   "maria@example.com",
		Phone:   "11988887777",
		CPF:     "123.456.789-01",
		Address: "Rua das Flores 123",
	}
}

func TestCreateNormalizesCPF(t *testing.T) {
	repo := newStubClientsRepo()
	svc := newTestService(t, repo)

	dto, err := svc.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)
	assert.Equal(t, "12345678901", dto.CPF)
	assert.Equal(t, "maria@example.com", dto.Email)
	assert.True(t, dto.IsActive)
	require.Len(t, repo.created, 1)
}

func TestCreateRejectsShortCPF(t *testing.T) {
	svc := newTestService(t, newStubClientsRepo())

	req := validCreateRequest()
	req.CPF = "1234567890"

	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestCreateDuplicateEmail(t *testing.T) {
	repo := newStubClientsRepo()
	repo.add(&models.Client{Name: "Maria", Email: "maria@example.com", CPF: "99999999999"})
	svc := newTestService(t, repo)

	_, err := svc.Create(context.Background(), validCreateRequest())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
	assert.Equal(t, "email already registered", pkgerrors.As(err).Message())
	assert.Empty(t, repo.created)
}

func TestCreateDuplicateCPF(t *testing.T) {
	repo := newStubClientsRepo()
	repo.add(&models.Client{Name: "Maria", Email: "other@example.com", CPF: "12345678901"})
	svc := newTestService(t, repo)

	_, err := svc.Create(context.Background(), validCreateRequest())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
	assert.Equal(t, "cpf already registered", pkgerrors.As(err).Message())
}

func TestCreateConflictOnBothReportsEmailFirst(t *testing.T) {
	repo := newStubClientsRepo()
	repo.add(&models.Client{Name: "Maria", Email: "maria@example.com", CPF: "12345678901"})
	svc := newTestService(t, repo)

	_, err := svc.Create(context.Background(), validCreateRequest())
	require.Error(t, err)
	assert.Equal(t, "email already registered", pkgerrors.As(err).Message())
}

func TestCreateUniqueViolationMapsToConflict(t *testing.T) {
	repo := newStubClientsRepo()
	repo.createErr = errors.New(`duplicate key value violates unique constraint "clients_email_key"`)
	svc := newTestService(t, repo)

	_, err := svc.Create(context.Background(), validCreateRequest())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
}

func TestUpdateUniqueViolationMapsToConflict(t *testing.T) {
	repo := newStubClientsRepo()
	client := repo.add(&models.Client{Name: "Maria", Email: "maria@example.com", CPF: "12345678901"})
	repo.updateErr = errors.New(`duplicate key value violates unique constraint "clients_cpf_key"`)
	svc := newTestService(t, repo)

	taken := "999.999.999-99"
	_, err := svc.Update(context.Background(), client.ID, UpdateClientRequest{CPF: &taken})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
}

func TestUpdatePartialFields(t *testing.T) {
	repo := newStubClientsRepo()
	client := repo.add(&models.Client{
		Name:    "Maria Silva",
		Email:   "maria@example.com",
		Phone:   "11988887777",
		CPF:     "12345678901",
		Address: "Rua das Flores 123",
	})
	svc := newTestService(t, repo)

	newPhone := "11977776666"
	dto, err := svc.Update(context.Background(), client.ID, UpdateClientRequest{Phone: &newPhone})
	require.NoError(t, err)
	assert.Equal(t, newPhone, dto.Phone)
	assert.Equal(t, "maria@example.com", dto.Email)
	assert.Equal(t, "12345678901", dto.CPF)
}

func TestUpdateSameEmailSkipsConflictCheck(t *testing.T) {
	repo := newStubClientsRepo()
	client := repo.add(&models.Client{Name: "Maria", Email: "maria@example.com", CPF: "12345678901"})
	svc := newTestService(t, repo)

	sameEmail := "maria@example.com"
	_, err := svc.Update(context.Background(), client.ID, UpdateClientRequest{Email: &sameEmail})
	assert.NoError(t, err)
}

func TestUpdateConflictingCPF(t *testing.T) {
	repo := newStubClientsRepo()
	repo.add(&models.Client{Name: "Other", Email: "other@example.com", CPF: "99999999999"})
	client := repo.add(&models.Client{Name: "Maria", Email: "maria@example.com", CPF: "12345678901"})
	svc := newTestService(t, repo)

	taken := "999.999.999-99"
	_, err := svc.Update(context.Background(), client.ID, UpdateClientRequest{CPF: &taken})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
}

func TestUpdateMissingClient(t *testing.T) {
	svc := newTestService(t, newStubClientsRepo())

	name := "Nobody"
	_, err := svc.Update(context.Background(), uuid.New(), UpdateClientRequest{Name: &name})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestDeleteReturnsRemovedClient(t *testing.T) {
	repo := newStubClientsRepo()
	client := repo.add(&models.Client{Name: "Maria", Email: "maria@example.com", CPF: "12345678901"})
	svc := newTestService(t, repo)

	dto, err := svc.Delete(context.Background(), client.ID)
	require.NoError(t, err)
	assert.Equal(t, client.ID, dto.ID)
	assert.Contains(t, repo.deleted, client.ID)

	_, err = svc.Get(context.Background(), client.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestListEnvelopeMetadata(t *testing.T) {
	repo := newStubClientsRepo()
	for i := 0; i < 25; i++ {
		repo.add(&models.Client{
			Name:  "Cliente",
			Email: uuid.NewString() + "@example.com",
			CPF:   uuid.NewString()[:11],
		})
	}
	svc := newTestService(t, repo)

	envelope, err := svc.List(context.Background(), pagination.Params{Page: 2, Size: 10}, ListFilters{})
	require.NoError(t, err)
	assert.Equal(t, int64(25), envelope.Metadata.Total)
	assert.Equal(t, 3, envelope.Metadata.Pages)
	assert.True(t, envelope.Metadata.HasNext)
	assert.True(t, envelope.Metadata.HasPrev)

	items, ok := envelope.Items.([]ClientDTO)
	require.True(t, ok)
	assert.Len(t, items, 10)
}

func TestNormalizeCPF(t *testing.T) {
	normalized, err := NormalizeCPF("123.456.789-01")
	require.NoError(t, err)
	assert.Equal(t, "12345678901", normalized)

	_, err = NormalizeCPF("123456")
	assert.Error(t, err)

	_, err = NormalizeCPF("123.456.789-012")
	assert.Error(t, err)
}
