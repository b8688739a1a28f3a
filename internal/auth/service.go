package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/luestilo/estilo-backend/internal/users"
	pkgAuth "github.com/luestilo/estilo-backend/pkg/auth"
	"github.com/luestilo/estilo-backend/pkg/config"
	"github.com/luestilo/estilo-backend/pkg/db"
	"github.com/luestilo/estilo-backend/pkg/db/models"
	"github.com/luestilo/estilo-backend/pkg/enums"
	pkgerrors "github.com/luestilo/estilo-backend/pkg/errors"
	"github.com/luestilo/estilo-backend/pkg/security"
)

const (
	invalidCredentialsMessage = "incorrect email or password"
	invalidTokenMessage       = "invalid or expired token"
	inactiveUserMessage       = "inactive user"
)

// Authentication failure causes. Unknown email and wrong password share the
// same public message, but callers can still tell them apart with errors.Is.
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrBadCredentials = errors.New("password mismatch")
)

// Service defines the behavior needed by the auth controllers and middleware.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*TokenPair, error)
	Register(ctx context.Context, req RegisterRequest) (*users.UserDTO, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, userID uuid.UUID) error
	ResolveAccessToken(ctx context.Context, accessToken string) (*models.User, error)
}

type userRepository interface {
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type tokenRepository interface {
	ReplaceActive(ctx context.Context, userID uuid.UUID, tokens []*models.Token) error
	FindActive(ctx context.Context, token string, now time.Time) (*models.Token, error)
	DeactivateAllForUser(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	users       userRepository
	tokens      tokenRepository
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
	now         func() time.Time
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	UserRepo       userRepository
	TokenRepo      tokenRepository
	JWTConfig      config.JWTConfig
	PasswordConfig config.PasswordConfig
	Now            func() time.Time
}

// NewService constructs an auth service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.TokenRepo == nil {
		return nil, fmt.Errorf("token repository is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		users:       params.UserRepo,
		tokens:      params.TokenRepo,
		jwtCfg:      params.JWTConfig,
		passwordCfg: params.PasswordConfig,
		now:         now,
	}, nil
}

// NewServiceFromDB wires the service against the shared database client.
func NewServiceFromDB(client *db.Client, jwtCfg config.JWTConfig, passwordCfg config.PasswordConfig) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("database client is required")
	}
	return NewService(ServiceParams{
		UserRepo:       users.NewRepository(client.DB()),
		TokenRepo:      NewTokenRepository(client.DB()),
		JWTConfig:      jwtCfg,
		PasswordConfig: passwordCfg,
	})
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*TokenPair, error) {
	user, err := s.authenticate(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}
	return s.issueTokenPair(ctx, user)
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*users.UserDTO, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user, err := s.users.Create(ctx, users.CreateUserDTO{
		Email:        email,
		PasswordHash: passwordHash,
		FullName:     strings.TrimSpace(req.FullName),
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
	}

	return users.FromModel(user), nil
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	user, err := s.resolveToken(ctx, refreshToken, enums.TokenTypeRefresh)
	if err != nil {
		return nil, err
	}
	return s.issueTokenPair(ctx, user)
}

func (s *service) Logout(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, invalidTokenMessage)
	}
	if err := s.tokens.DeactivateAllForUser(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "revoke tokens")
	}
	return nil
}

func (s *service) ResolveAccessToken(ctx context.Context, accessToken string) (*models.User, error) {
	return s.resolveToken(ctx, accessToken, enums.TokenTypeAccess)
}

func (s *service) authenticate(ctx context.Context, email, password string) (*models.User, error) {
	input := strings.ToLower(strings.TrimSpace(email))
	if input == "" {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, ErrUserNotFound, invalidCredentialsMessage)
	}

	user, err := s.users.FindByEmail(ctx, input)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, ErrUserNotFound, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	if !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, inactiveUserMessage)
	}

	valid, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, ErrBadCredentials, invalidCredentialsMessage)
	}
	return user, nil
}

// issueTokenPair mints an access/refresh pair and swaps it in for whatever
// active tokens the user held before.
func (s *service) issueTokenPair(ctx context.Context, user *models.User) (*TokenPair, error) {
	now := s.now()

	access, err := pkgAuth.MintToken(s.jwtCfg, now, user.ID, enums.TokenTypeAccess, s.jwtCfg.AccessTokenTTL())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}
	refresh, err := pkgAuth.MintToken(s.jwtCfg, now, user.ID, enums.TokenTypeRefresh, s.jwtCfg.RefreshTokenTTL())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint refresh token")
	}

	records := []*models.Token{
		{
			Token:     access.Signed,
			UserID:    user.ID,
			TokenType: enums.TokenTypeAccess,
			ExpiresAt: access.ExpiresAt,
			IsActive:  true,
		},
		{
			Token:     refresh.Signed,
			UserID:    user.ID,
			TokenType: enums.TokenTypeRefresh,
			ExpiresAt: refresh.ExpiresAt,
			IsActive:  true,
		},
	}

	if err := s.tokens.ReplaceActive(ctx, user.ID, records); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist tokens")
	}

	return &TokenPair{
		AccessToken:  access.Signed,
		RefreshToken: refresh.Signed,
		TokenType:    "bearer",
	}, nil
}

// resolveToken enforces both halves of the token policy: an active, unexpired
// server-side record and a valid signed payload of the expected type.
func (s *service) resolveToken(ctx context.Context, raw string, wantType enums.TokenType) (*models.User, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidTokenMessage)
	}

	record, err := s.tokens.FindActive(ctx, raw, s.now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidTokenMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup token")
	}

	claims, err := pkgAuth.ParseToken(s.jwtCfg, raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, invalidTokenMessage)
	}
	if claims.Type != wantType || record.TokenType != wantType {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidTokenMessage)
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	if !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, inactiveUserMessage)
	}
	return user, nil
}
