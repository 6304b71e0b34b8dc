package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-contact-book/auth-service/internal/service"
	apierrors "github.com/pribylovaa/go-contact-book/auth-service/internal/transport/http/errors"
)

// IdentityResolver — контракт resolve-identity для защищённых маршрутов.
// В проде его реализует *service.Service, в тестах — заглушка.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, accessToken string) (uuid.UUID, error)
}

// RequireAuth пускает дальше только запросы с валидным access-токеном:
// берёт "сырой" токен из контекста (его кладёт AuthBearer), резолвит
// пользователя и кладёт его id в контекст для хендлеров.
func RequireAuth(resolver IdentityResolver) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := TokenFromContext(r.Context())
			if !ok {
				apierrors.WriteError(w, r, service.ErrUnauthorized)
				return
			}

			uid, err := resolver.ResolveIdentity(r.Context(), token)
			if err != nil {
				apierrors.WriteError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), ctxUserID, uid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
