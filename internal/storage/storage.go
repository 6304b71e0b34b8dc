package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-contact-book/auth-service/internal/models"
)

var (
	// ErrNotFound — запись не найдена (пользователь).
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists — нарушение уникальности (email).
	ErrAlreadyExists = errors.New("already exists")
)

// UserStorage выполняет операции над пользователями.
type UserStorage interface {
	// SaveUser создает нового пользователя в БД.
	SaveUser(ctx context.Context, user *models.User) error
	// UserByEmail находит пользователя по email.
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	// UserByID находит пользователя по ID.
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// SessionStorage управляет состоянием refresh-сессии пользователя.
//
// Fingerprint проходит жизненный цикл "" -> выдан -> ротация -> "",
// все переходы — одиночные UPDATE-операции (атомарность обеспечивает БД).
type SessionStorage interface {
	// SetRefreshFingerprint безусловно записывает новый fingerprint
	// (login: прежняя сессия инвалидируется).
	SetRefreshFingerprint(ctx context.Context, id uuid.UUID, fingerprint string) error
	// RotateRefreshFingerprint атомарно меняет expected -> next
	// (compare-and-swap одним UPDATE). Возвращает false, если текущее
	// значение не совпало с expected: из двух конкурентных refresh
	// ровно один получает true.
	RotateRefreshFingerprint(ctx context.Context, id uuid.UUID, expected, next string) (bool, error)
	// ClearRefreshFingerprint сбрасывает fingerprint (logout или реакция
	// на повторное использование refresh-токена). Идемпотентна.
	ClearRefreshFingerprint(ctx context.Context, id uuid.UUID) error
	// SetVerified помечает email подтверждённым. Повторный вызов — no-op.
	SetVerified(ctx context.Context, id uuid.UUID) error
}

// Storage задает контракт работы с БД.
type Storage interface {
	UserStorage
	SessionStorage
	Close()
}
