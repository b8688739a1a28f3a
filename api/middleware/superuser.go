package middleware

import (
	"net/http"

	"github.com/luestilo/estilo-backend/api/responses"
	pkgerrors "github.com/luestilo/estilo-backend/pkg/errors"
	"github.com/luestilo/estilo-backend/pkg/logger"
)

// RequireSuperuser rejects requests whose authenticated user lacks the
// superuser flag. It must run after Auth.
func RequireSuperuser(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IsSuperuserFromContext(r.Context()) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "superuser privilege required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
