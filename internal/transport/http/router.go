// Package http собирает HTTP-границу сервиса: chi-роутер, цепочку
// middleware и REST-маршруты аутентификации.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/go-contact-book/auth-service/internal/config"
	"github.com/pribylovaa/go-contact-book/auth-service/internal/ratelimit"
	"github.com/pribylovaa/go-contact-book/auth-service/internal/service"
	"github.com/pribylovaa/go-contact-book/auth-service/internal/transport/http/handlers"
	"github.com/pribylovaa/go-contact-book/auth-service/internal/transport/http/middleware"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger  *slog.Logger
	Timeout time.Duration
	Limits  config.LimitsConfig
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
//
// limiter может быть nil (лимиты выключены). Бакет "auth" (login/register)
// работает в режиме fail-closed: при недоступности Redis эти маршруты
// отвечают 503, а не пропускают перебор паролей без ограничений.
func NewRouter(svc *service.Service, limiter *ratelimit.Limiter, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),            // безопасно ловим паники
		middleware.RequestID(),          // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger), // кладём request-scoped логгер в контекст и логируем
		middleware.AuthBearer(),         // вынимаем Bearer токен в контекст
	)
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout)) // общий дедлайн запроса
	}

	h := handlers.New(svc)

	authLimit := middleware.RateLimit(limiter, "auth", opts.Limits.Auth, true)
	defLimit := middleware.RateLimit(limiter, "default", opts.Limits.Default, false)

	// auth
	root.With(authLimit).Post("/auth/register", h.Register)
	root.With(authLimit).Post("/auth/login", h.Login)
	root.With(defLimit).Post("/auth/refresh", h.Refresh)
	root.With(defLimit).Post("/auth/logout", h.Logout)
	root.With(defLimit).Get("/auth/verify/{token}", h.VerifyEmail)
	root.With(defLimit, middleware.RequireAuth(svc)).Get("/auth/me", h.Me)

	// health
	root.With(defLimit).Get("/api/healthchecker", h.Healthcheck)

	return root
}
