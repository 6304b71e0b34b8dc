// errors стандартизирует ответы об ошибках HTTP-слоя auth-service.
// На вход он принимает ошибку сервисного слоя (sentinel-ошибки через
// errors.Is), а на выход даёт:
//   - корректный HTTP-статус;
//   - краткое безопасное message без утечки деталей.
//
// Внутренние причины (текст ошибок БД, паники и т.п.) наружу не отдаются:
// клиент видит только стабильный код и безопасное сообщение.
package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/pribylovaa/go-contact-book/auth-service/internal/ratelimit"
	"github.com/pribylovaa/go-contact-book/auth-service/internal/service"
)

// ErrInvalidArgument — локальная ошибка HTTP-слоя для битого входа
// (невалидный JSON, неизвестные поля). Маппится в 400/invalid_argument.
var ErrInvalidArgument = stderrors.New("invalid argument")

// APIError — единый формат ошибки для фронта.
// Code — короткий стабильный код для машиночитаемой обработки на FE.
// Message — безопасное человекочитаемое описание.
// RequestID — прокидывается из X-Request-Id, если есть (для трассировки).
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse — корневой объект в ответе.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// ToHTTP конвертирует ошибку сервисного слоя в HTTP-статус и
// унифицированный ответ для фронта.
//
// Поведение:
//   - err == nil — это программная ошибка вызова: возвращаем 500/internal,
//     чтобы не послать "200 OK" с телом ошибки и не маскировать баг;
//   - неизвестная ошибка — 500/internal (без утечки деталей).
func ToHTTP(err error) (int, ErrorResponse) {
	status, code, msg := base(err)

	return status, ErrorResponse{
		Error: APIError{
			Code:    code,
			Message: msg,
		},
	}
}

// WriteError — хелпер для HTTP-хендлеров и middleware.
// Пишет корректный статус/тело, добавляет request_id из заголовка, если он есть.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)

	// Прокидываем request_id для фронта, чтобы он мог репортить баги с привязкой.
	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.Error.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// base — базовый маппинг sentinel-ошибок -> HTTP/FE-код/сообщение.
// Таблица учитывает реальные коды сервисного слоя:
//   - битые входные данные (JSON, email, пароль) -> 400
//   - ошибки аутентификации (креды/токены/повторный refresh) -> 401
//   - неподтверждённый email -> 403
//   - конфликт уникальности email -> 409
//   - rate limit -> 429
//   - недоступность хранилища/лимитера -> 503
//   - истёкший дедлайн запроса -> 504
//   - прочее -> 500/internal
func base(err error) (int, string, string) {
	switch {
	case err == nil:
		return http.StatusInternalServerError, "internal", "internal error"
	case stderrors.Is(err, ErrInvalidArgument):
		return http.StatusBadRequest, "invalid_argument", "invalid argument"
	case stderrors.Is(err, service.ErrInvalidEmail):
		return http.StatusBadRequest, "invalid_email", "invalid email"
	case stderrors.Is(err, service.ErrEmptyPassword):
		return http.StatusBadRequest, "empty_password", "password must not be empty"
	case stderrors.Is(err, service.ErrWeakPassword):
		return http.StatusBadRequest, "weak_password", "password does not meet requirements"
	case stderrors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials", "invalid credentials"
	case stderrors.Is(err, service.ErrTokenExpired):
		return http.StatusUnauthorized, "token_expired", "token expired"
	// Повторное использование refresh наружу не детализируем: для клиента
	// это неотличимо от любого другого невалидного токена.
	case stderrors.Is(err, service.ErrInvalidToken),
		stderrors.Is(err, service.ErrTokenTypeMismatch),
		stderrors.Is(err, service.ErrRefreshReuse):
		return http.StatusUnauthorized, "invalid_token", "invalid token"
	case stderrors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthenticated", "unauthenticated"
	case stderrors.Is(err, service.ErrEmailNotVerified):
		return http.StatusForbidden, "email_not_verified", "email not verified"
	case stderrors.Is(err, service.ErrEmailTaken):
		return http.StatusConflict, "email_taken", "email already taken"
	case stderrors.Is(err, ratelimit.ErrRateLimited):
		return http.StatusTooManyRequests, "rate_limited", "too many requests"
	case stderrors.Is(err, service.ErrStoreUnavailable),
		stderrors.Is(err, ratelimit.ErrUnavailable):
		return http.StatusServiceUnavailable, "unavailable", "service unavailable"
	case stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "deadline_exceeded", "deadline exceeded"
	default:
		return http.StatusInternalServerError, "internal", "internal error"
	}
}
