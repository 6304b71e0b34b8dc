package middleware

import (
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/pribylovaa/go-contact-book/auth-service/internal/config"
	logctx "github.com/pribylovaa/go-contact-book/auth-service/internal/pkg/log"
	"github.com/pribylovaa/go-contact-book/auth-service/internal/ratelimit"
	apierrors "github.com/pribylovaa/go-contact-book/auth-service/internal/transport/http/errors"
)

// RateLimit ограничивает частоту запросов по IP клиента в пределах бакета.
//
// failClosed управляет поведением при недоступности лимитера:
//   - true (login/register): запрос отклоняется с 503 — лучше отказать,
//     чем пропустить перебор паролей без ограничений;
//   - false (остальные маршруты): запрос пропускается, факт деградации
//     логируется.
func RateLimit(l *ratelimit.Limiter, bucket string, lim config.LimitConfig, failClosed bool) Middleware {
	return func(next http.Handler) http.Handler {
		if l == nil || lim.Requests <= 0 || lim.Window <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			err := l.Allow(r.Context(), bucket, clientKey(r), lim.Requests, lim.Window)
			switch {
			case err == nil:
			case errors.Is(err, ratelimit.ErrRateLimited):
				apierrors.WriteError(w, r, err)
				return
			case errors.Is(err, ratelimit.ErrUnavailable):
				if failClosed {
					apierrors.WriteError(w, r, err)
					return
				}

				logctx.From(r.Context()).LogAttrs(r.Context(), slog.LevelWarn,
					"rate_limiter_degraded",
					slog.String("bucket", bucket),
					slog.String("err", err.Error()),
				)
			default:
				apierrors.WriteError(w, r, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientKey — идентификатор клиента для счётчика: IP из X-Real-IP
// (выставляет reverse proxy), иначе host-часть RemoteAddr.
func clientKey(r *http.Request) string {
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}
