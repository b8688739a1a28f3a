package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/luestilo/estilo-backend/api/responses"
	"github.com/luestilo/estilo-backend/pkg/db/models"
	pkgerrors "github.com/luestilo/estilo-backend/pkg/errors"
	"github.com/luestilo/estilo-backend/pkg/logger"
)

// AccessTokenResolver resolves a raw access token to its active user. The
// auth service satisfies it.
type AccessTokenResolver interface {
	ResolveAccessToken(ctx context.Context, accessToken string) (*models.User, error)
}

// Auth validates a bearer token and seeds the request context with the
// resolved user.
func Auth(resolver AccessTokenResolver, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			user, err := resolver.ResolveAccessToken(r.Context(), token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := WithUser(r.Context(), user.ID, user.IsSuperuser)
			if logg != nil {
				ctx = logg.WithUserID(ctx, user.ID.String())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
