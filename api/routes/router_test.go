package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/luestilo/estilo-backend/internal/auth"
	"github.com/luestilo/estilo-backend/internal/users"
	"github.com/luestilo/estilo-backend/pkg/config"
	"github.com/luestilo/estilo-backend/pkg/db/models"
	pkgerrors "github.com/luestilo/estilo-backend/pkg/errors"
	"github.com/luestilo/estilo-backend/pkg/logger"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

// stubAuthService resolves the fixed tokens "user-token" and "super-token" and
// rejects everything else.
type stubAuthService struct{}

func (stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.TokenPair, error) {
	return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "incorrect email or password")
}

func (stubAuthService) Register(ctx context.Context, req auth.RegisterRequest) (*users.UserDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "not implemented")
}

func (stubAuthService) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid or expired token")
}

func (stubAuthService) Logout(ctx context.Context, userID uuid.UUID) error {
	return nil
}

func (stubAuthService) ResolveAccessToken(ctx context.Context, accessToken string) (*models.User, error) {
	switch accessToken {
	case "user-token":
		return &models.User{ID: uuid.New(), IsActive: true}, nil
	case "super-token":
		return &models.User{ID: uuid.New(), IsActive: true, IsSuperuser: true}, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid or expired token")
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "issuer", AccessTTLMinutes: 60, RefreshTTLMinutes: 120},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		nil, // redis
		stubAuthService{},
		nil, // clients
		nil, // products
		nil, // orders
		nil, // notifications
	)
}

func TestHealthLiveIsPublic(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestHealthReadyPingsDatabase(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestProtectedGroupRejectsMissingToken(t *testing.T) {
	router := newTestRouter(testConfig())

	paths := []string{"/api/v1/clients/", "/api/v1/products/", "/api/v1/orders/"}
	for _, path := range paths {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("%s expected 401 without token got %d", path, resp.Code)
		}
	}
}

func TestProtectedGroupRejectsUnknownToken(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/clients/", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown token got %d", resp.Code)
	}
}

func TestWhatsAppGroupRequiresSuperuser(t *testing.T) {
	router := newTestRouter(testConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/whatsapp/send", nil)
	req.Header.Set("Authorization", "Bearer user-token")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for regular user got %d", resp.Code)
	}
}

func TestWhatsAppGroupReportsMissingIntegration(t *testing.T) {
	router := newTestRouter(testConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/whatsapp/send", nil)
	req.Header.Set("Authorization", "Bearer super-token")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 when whatsapp is not configured, got %d", resp.Code)
	}
}

func TestLogoutRequiresToken(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer user-token")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}
