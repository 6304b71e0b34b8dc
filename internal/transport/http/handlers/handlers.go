package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-contact-book/auth-service/internal/models"
)

// AuthService — контракт сервисного слоя, нужный HTTP-хендлерам.
// В проде его реализует *service.Service, в тестах — заглушка.
type AuthService interface {
	RegisterUser(ctx context.Context, email, username, password string) (*models.User, error)
	LoginUser(ctx context.Context, email, password string) (*models.TokenPair, uuid.UUID, error)
	RefreshTokens(ctx context.Context, refreshToken string) (*models.TokenPair, uuid.UUID, error)
	Logout(ctx context.Context, accessToken string) error
	VerifyEmail(ctx context.Context, token string) error
	UserByID(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

// Handlers агрегирует зависимости HTTP-хендлеров.
type Handlers struct {
	svc AuthService
}

func New(svc AuthService) *Handlers {
	return &Handlers{svc: svc}
}

// writeJSON — единый ответ JSON с нужным Content-Type.
// Ошибки выводим через apierrors.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(value)
}
