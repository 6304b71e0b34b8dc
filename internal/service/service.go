// service содержит бизнес-логику auth-подсистемы контакт-сервиса:
// регистрацию и аутентификацию пользователей, выпуск/проверку токенов,
// подтверждение email и работу с хранилищем через интерфейсы из пакета storage.
//
// Основные аспекты:
//   - Пакет не хранит состояние запроса внутри Service; экземпляр Service
//     безопасен для конкурентного использования из разных горутин при условии,
//     что переданное хранилище (storage.Storage) потокобезопасно.
//   - Гонки конкурентных refresh разрешаются на стороне БД: ротация
//     fingerprint — одиночный compare-and-swap UPDATE.
//   - Ошибки возвращаются наружу и маппятся транспортом на HTTP-статусы
//     (см. комментарии к переменным ошибок ниже).
package service

import (
	"errors"
	"time"

	"github.com/pribylovaa/go-contact-book/auth-service/internal/cache"
	"github.com/pribylovaa/go-contact-book/auth-service/internal/config"
	"github.com/pribylovaa/go-contact-book/auth-service/internal/mailer"
	"github.com/pribylovaa/go-contact-book/auth-service/internal/storage"
)

var (
	// ErrInvalidCredentials — пара логин/пароль неверна или пользователь не найден.
	// Сценарии "нет такого email" и "неверный пароль" намеренно неразличимы,
	// чтобы не допускать перечисления пользователей. Транспорт: HTTP 401.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmailTaken — e-mail уже занят другим пользователем. Транспорт: HTTP 409.
	ErrEmailTaken = errors.New("email already taken")

	// ErrEmailNotVerified — вход запрещён до подтверждения email. Транспорт: HTTP 403.
	ErrEmailNotVerified = errors.New("email not verified")

	// ErrInvalidToken — токен некорректен по формату или подписи. Транспорт: HTTP 401.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired — срок действия токена истёк. Транспорт: HTTP 401.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenTypeMismatch — тип токена не соответствует операции
	// (например, refresh предъявлен вместо access). Транспорт: HTTP 401.
	ErrTokenTypeMismatch = errors.New("token type mismatch")

	// ErrRefreshReuse — предъявлен refresh-токен, fingerprint которого не совпал
	// с хранимым: либо токен уже был использован, либо сессия сброшена.
	// Событие безопасности: хранимый fingerprint очищается, требуется повторный вход.
	// Наружу отдаётся как обычный отказ аутентификации. Транспорт: HTTP 401.
	ErrRefreshReuse = errors.New("refresh token reuse detected")

	// ErrUnauthorized — не удалось установить личность по access-токену.
	// Транспорт: HTTP 401.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrStoreUnavailable — сбой хранилища/сети; транспортные детали наружу
	// не утекают. Транспорт: HTTP 503.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrInvalidEmail — e-mail имеет некорректный формат. Транспорт: HTTP 400.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrWeakPassword — пароль не удовлетворяет политике сложности. Транспорт: HTTP 400.
	ErrWeakPassword = errors.New("password is too weak")

	// ErrEmptyPassword — пароль пустой. Транспорт: HTTP 400.
	ErrEmptyPassword = errors.New("password is empty")
)

// Service описывает бизнес-логику auth-подсистемы.
type Service struct {
	storage storage.Storage
	cfg     config.AuthConfig

	idcache     cache.Cache   // может быть nil, если кэш не сконфигурирован
	identityTTL time.Duration // TTL записей кэша идентичности

	mail        mailer.Mailer // может быть nil, если почта не сконфигурирована
	verifyBase  string        // основа ссылки подтверждения email
}

// New создаёт новый экземпляр Service.
func New(storage storage.Storage, cfg config.AuthConfig) *Service {
	return &Service{
		storage: storage,
		cfg:     cfg,
	}
}

// SetIdentityCache устанавливает кэш "access-токен -> пользователь" (опционально).
// TTL записей ограничивается остатком жизни самого токена.
func (s *Service) SetIdentityCache(c cache.Cache, ttl time.Duration) {
	s.idcache = c
	s.identityTTL = ttl
}

// SetMailer устанавливает отправителя писем подтверждения (опционально).
// baseURL — основа ссылки подтверждения, например https://contacts.example.com.
func (s *Service) SetMailer(m mailer.Mailer, baseURL string) {
	s.mail = m
	s.verifyBase = baseURL
}
