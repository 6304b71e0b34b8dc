package middleware

import (
	"context"

	"github.com/google/uuid"
)

// Ключи контекста HTTP-слоя. Свой неэкспортируемый тип исключает
// коллизии с чужими context.Value.
type ctxKey int

const (
	ctxRequestID ctxKey = iota
	ctxAuthToken
	ctxUserID
)

// RequestIDFromContext возвращает request id текущего запроса.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxRequestID).(string)
	return id, ok && id != ""
}

// TokenFromContext возвращает "сырой" Bearer-токен запроса.
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(ctxAuthToken).(string)
	return token, ok && token != ""
}

// UserIDFromContext возвращает идентификатор пользователя,
// положенный RequireAuth после успешного resolve.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	uid, ok := ctx.Value(ctxUserID).(uuid.UUID)
	return uid, ok && uid != uuid.Nil
}
