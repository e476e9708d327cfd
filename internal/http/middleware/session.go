package middleware

import (
	"fmt"
	"net/http"

	apierrors "github.com/pribylovaa/school-site/internal/errors"
	"github.com/pribylovaa/school-site/internal/models"
	"github.com/pribylovaa/school-site/internal/pkg/log"
	"github.com/pribylovaa/school-site/internal/pkg/redact"
	"github.com/pribylovaa/school-site/internal/service"
	"github.com/pribylovaa/school-site/internal/session"
)

// TokenVerifier реализует *session.Service.
type TokenVerifier interface {
	Verify(token string) (*session.Claims, error)
}

// RequireSession проверяет cookie admin_session и кладёт claims в контекст.
// Без действующей сессии ответ 401, API-клиентов не редиректим.
func RequireSession(v TokenVerifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := session.TokenFromRequest(r)
			if token == "" {
				apierrors.WriteError(w, r, service.ErrInvalidCredentials)
				return
			}

			claims, err := v.Verify(token)
			if err != nil {
				log.From(r.Context()).Info("session rejected", "token", redact.Token(token))
				apierrors.WriteError(w, r, fmt.Errorf("%w: %w", service.ErrInvalidCredentials, err))
				return
			}

			ctx := session.Into(r.Context(), claims)
			ctx = log.With(ctx, "user_id", claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole пропускает сессии с ролью из roles. Должен стоять после RequireSession.
func RequireRole(roles ...models.Role) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := session.FromContext(r.Context())
			if claims == nil {
				apierrors.WriteError(w, r, service.ErrInvalidCredentials)
				return
			}

			for _, role := range roles {
				if models.Role(claims.Role) == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			log.From(r.Context()).Warn("role denied", "role", claims.Role)
			apierrors.WriteError(w, r, service.ErrForbidden)
		})
	}
}
