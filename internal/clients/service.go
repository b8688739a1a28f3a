package clients

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/luestilo/estilo-backend/pkg/db"
	"github.com/luestilo/estilo-backend/pkg/db/models"
	pkgerrors "github.com/luestilo/estilo-backend/pkg/errors"
	"github.com/luestilo/estilo-backend/pkg/pagination"
)

const cpfLength = 11

type repository interface {
	Create(ctx context.Context, client *models.Client) (*models.Client, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Client, error)
	FindByEmail(ctx context.Context, email string) (*models.Client, error)
	FindByCPF(ctx context.Context, cpf string) (*models.Client, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Client, int64, error)
	Update(ctx context.Context, client *models.Client) (*models.Client, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service owns client business rules: CPF normalization and the uniqueness
// checks on email and CPF.
type Service struct {
	repo repository
}

// NewService constructs a client service over the given repository.
func NewService(repo repository) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("client repository is required")
	}
	return &Service{repo: repo}, nil
}

// Get returns a single client by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*ClientDTO, error) {
	client, err := s.findClient(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(client), nil
}

// GetByEmail returns the client registered under the given email.
func (s *Service) GetByEmail(ctx context.Context, email string) (*ClientDTO, error) {
	client, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup client")
	}
	return FromModel(client), nil
}

// GetByCPF returns the client registered under the given CPF.
func (s *Service) GetByCPF(ctx context.Context, cpf string) (*ClientDTO, error) {
	normalized, err := NormalizeCPF(cpf)
	if err != nil {
		return nil, err
	}
	client, err := s.repo.FindByCPF(ctx, normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup client")
	}
	return FromModel(client), nil
}

// List returns a paginated envelope of clients filtered by name and email.
func (s *Service) List(ctx context.Context, params pagination.Params, filters ListFilters) (*pagination.Envelope, error) {
	params = params.Normalize()
	rows, total, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list clients")
	}
	envelope := pagination.NewEnvelope(FromModels(rows), total, params)
	return &envelope, nil
}

// Create registers a new client after normalizing the CPF and checking that
// neither the email nor the CPF is already taken. Email is checked first, so
// a payload conflicting on both reports the email conflict.
func (s *Service) Create(ctx context.Context, req CreateClientRequest) (*ClientDTO, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	cpf, err := NormalizeCPF(req.CPF)
	if err != nil {
		return nil, err
	}

	if err := s.checkEmailAvailable(ctx, email, uuid.Nil); err != nil {
		return nil, err
	}
	if err := s.checkCPFAvailable(ctx, cpf, uuid.Nil); err != nil {
		return nil, err
	}

	client, err := s.repo.Create(ctx, &models.Client{
		Name:     strings.TrimSpace(req.Name),
		Email:    email,
		Phone:    req.Phone,
		CPF:      cpf,
		Address:  req.Address,
		IsActive: true,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email or cpf already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create client")
	}
	return FromModel(client), nil
}

// Update applies a partial update, re-checking uniqueness only for fields the
// caller is actually changing.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateClientRequest) (*ClientDTO, error) {
	client, err := s.findClient(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email != client.Email {
			if err := s.checkEmailAvailable(ctx, email, client.ID); err != nil {
				return nil, err
			}
			client.Email = email
		}
	}
	if req.CPF != nil {
		cpf, err := NormalizeCPF(*req.CPF)
		if err != nil {
			return nil, err
		}
		if cpf != client.CPF {
			if err := s.checkCPFAvailable(ctx, cpf, client.ID); err != nil {
				return nil, err
			}
			client.CPF = cpf
		}
	}
	if req.Name != nil {
		client.Name = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		client.Phone = *req.Phone
	}
	if req.Address != nil {
		client.Address = *req.Address
	}
	if req.IsActive != nil {
		client.IsActive = *req.IsActive
	}

	updated, err := s.repo.Update(ctx, client)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email or cpf already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update client")
	}
	return FromModel(updated), nil
}

// Delete removes a client and returns its last known state.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) (*ClientDTO, error) {
	client, err := s.findClient(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete client")
	}
	return FromModel(client), nil
}

func (s *Service) findClient(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	client, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup client")
	}
	return client, nil
}

func (s *Service) checkEmailAvailable(ctx context.Context, email string, selfID uuid.UUID) error {
	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check client email")
	}
	if existing.ID != selfID {
		return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	}
	return nil
}

func (s *Service) checkCPFAvailable(ctx context.Context, cpf string, selfID uuid.UUID) error {
	existing, err := s.repo.FindByCPF(ctx, cpf)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check client cpf")
	}
	if existing.ID != selfID {
		return pkgerrors.New(pkgerrors.CodeConflict, "cpf already registered")
	}
	return nil
}

// NormalizeCPF strips formatting characters and requires exactly eleven
// digits.
func NormalizeCPF(raw string) (string, error) {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	normalized := digits.String()
	if len(normalized) != cpfLength {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "cpf must contain exactly 11 digits")
	}
	return normalized, nil
}
