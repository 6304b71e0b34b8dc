package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-contact-book/auth-service/internal/models"
	"github.com/pribylovaa/go-contact-book/auth-service/internal/pkg/log"
	"github.com/pribylovaa/go-contact-book/auth-service/internal/pkg/redact"
	"github.com/pribylovaa/go-contact-book/auth-service/internal/storage"
)

// mailTimeout — бюджет фоновой отправки письма подтверждения.
const mailTimeout = 15 * time.Second

// storeFail оборачивает неожиданную ошибку хранилища в ErrStoreUnavailable,
// не теряя исходных деталей для логов.
func storeFail(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrStoreUnavailable, err)
}

// RegisterUser регистрирует нового пользователя.
//
// Пользователь создаётся с verified=false; письмо со ссылкой подтверждения
// отправляется в фоне (fire-and-forget): сбой отправки логируется и не
// отменяет регистрацию. Хэш пароля наружу не возвращается никогда —
// транспорт строит ответ из безопасных полей.
func (s *Service) RegisterUser(ctx context.Context, email, username, password string) (*models.User, error) {
	const op = "service.auth.RegisterUser"

	normEmail, err := validateEmail(email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	if err := validatePassword(password); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	_, err = s.storage.UserByEmail(ctx, normEmail)
	if err == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, storeFail(op, err)
	}

	hashedPassword, err := s.hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.New(),
		Email:        normEmail,
		Username:     username,
		PasswordHash: hashedPassword,
		Verified:     false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.storage.SaveUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}

		return nil, storeFail(op, err)
	}

	s.sendVerificationMail(ctx, user)

	return user, nil
}

// sendVerificationMail выпускает verification-токен и отправляет письмо в фоне.
// Любой сбой здесь не фатален для регистрации: подтверждение можно запросить повторно.
func (s *Service) sendVerificationMail(ctx context.Context, user *models.User) {
	const op = "service.auth.sendVerificationMail"

	if s.mail == nil {
		return
	}

	lg := log.From(ctx)

	token, err := s.issueToken(user.ID, TokenTypeVerification, s.cfg.VerificationTokenTTL, time.Now().UTC())
	if err != nil {
		lg.Error("verification_token_issue_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return
	}

	link := s.verifyBase + "/auth/verify/" + token

	go func() {
		mailCtx, cancel := context.WithTimeout(context.Background(), mailTimeout)
		defer cancel()

		if err := s.mail.SendVerificationEmail(mailCtx, user.Email, link); err != nil {
			lg.Error("verification_mail_failed",
				slog.String("op", op),
				slog.String("email", redact.Email(user.Email)),
				slog.String("err", err.Error()),
			)
		}
	}()
}

// LoginUser выполняет вход по email+пароль.
//
// Сценарии "пользователь не найден" и "пароль не подошёл" возвращают одну
// и ту же ошибку ErrInvalidCredentials. Успешный вход перезаписывает
// fingerprint refresh-сессии: прежний refresh-токен становится недействительным
// (у пользователя одна активная refresh-сессия).
func (s *Service) LoginUser(ctx context.Context, email, password string) (*models.TokenPair, uuid.UUID, error) {
	const op = "service.auth.LoginUser"

	normEmail, err := validateEmail(email)
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	if len(password) == 0 {
		return nil, uuid.Nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	user, err := s.storage.UserByEmail(ctx, normEmail)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, uuid.Nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}

		return nil, uuid.Nil, storeFail(op, err)
	}

	if !checkPassword(user.PasswordHash, password) {
		return nil, uuid.Nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	if !user.Verified {
		return nil, uuid.Nil, fmt.Errorf("%s: %w", op, ErrEmailNotVerified)
	}

	pair, err := s.issueTokenPair(user.ID)
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.storage.SetRefreshFingerprint(ctx, user.ID, fingerprint(pair.RefreshToken)); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, uuid.Nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}

		return nil, uuid.Nil, storeFail(op, err)
	}

	return pair, user.ID, nil
}

// RefreshTokens обновляет пару токенов по refresh-токену.
//
// Ротация fingerprint — одиночный compare-and-swap в хранилище: из двух
// конкурентных refresh одной сессии ровно один выигрывает, второй получает
// ErrRefreshReuse. Несовпадение fingerprint трактуется как повторное
// использование токена: хранимый fingerprint очищается, сессия завершается.
func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (*models.TokenPair, uuid.UUID, error) {
	const op = "service.auth.RefreshTokens"

	userID, err := s.decodeToken(refreshToken, TokenTypeRefresh)
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.storage.UserByID(ctx, userID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, uuid.Nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
		}

		return nil, uuid.Nil, storeFail(op, err)
	}

	pair, err := s.issueTokenPair(userID)
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	rotated, err := s.storage.RotateRefreshFingerprint(ctx, userID, fingerprint(refreshToken), fingerprint(pair.RefreshToken))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, uuid.Nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
		}

		return nil, uuid.Nil, storeFail(op, err)
	}

	if !rotated {
		// Повторное использование refresh-токена: принудительно завершаем
		// сессию, чтобы вытеснить возможного злоумышленника.
		if err := s.storage.ClearRefreshFingerprint(ctx, userID); err != nil && !errors.Is(err, storage.ErrNotFound) {
			log.From(ctx).Error("refresh_reuse_clear_failed",
				slog.String("op", op),
				slog.String("user_id", userID.String()),
				slog.String("err", err.Error()),
			)
		}

		log.From(ctx).Warn("refresh_reuse_detected",
			slog.String("op", op),
			slog.String("user_id", userID.String()),
		)

		return nil, uuid.Nil, fmt.Errorf("%s: %w", op, ErrRefreshReuse)
	}

	return pair, userID, nil
}

// Logout завершает refresh-сессию пользователя по access-токену.
//
// Операция идемпотентна: повторный выход — no-op. Сам access-токен не
// отзывается и доживает до своего exp; из кэша идентичности запись
// вычищается, чтобы не продлевать ему жизнь там.
func (s *Service) Logout(ctx context.Context, accessToken string) error {
	const op = "service.auth.Logout"

	userID, err := s.decodeToken(accessToken, TokenTypeAccess)
	if err != nil {
		return fmt.Errorf("%s: %w", op, ErrUnauthorized)
	}

	if err := s.storage.ClearRefreshFingerprint(ctx, userID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrUnauthorized)
		}

		return storeFail(op, err)
	}

	if s.idcache != nil {
		if err := s.idcache.Invalidate(ctx, fingerprint(accessToken)); err != nil {
			log.From(ctx).Warn("identity_cache_invalidate_failed",
				slog.String("op", op),
				slog.String("err", err.Error()),
			)
		}
	}

	return nil
}

// VerifyEmail подтверждает email по verification-токену.
// Повторное подтверждение — no-op.
func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	const op = "service.auth.VerifyEmail"

	userID, err := s.decodeToken(token, TokenTypeVerification)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.storage.SetVerified(ctx, userID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrInvalidToken)
		}

		return storeFail(op, err)
	}

	return nil
}

// ResolveIdentity устанавливает личность по access-токену.
//
// Кэш идентичности консультативный: промах всегда уходит в хранилище,
// попадание избавляет от round-trip в БД на каждом защищённом запросе.
// Любая ошибка декодирования или отсутствие пользователя — ErrUnauthorized.
func (s *Service) ResolveIdentity(ctx context.Context, accessToken string) (uuid.UUID, error) {
	const op = "service.auth.ResolveIdentity"

	userID, err := s.decodeToken(accessToken, TokenTypeAccess)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, ErrUnauthorized)
	}

	key := fingerprint(accessToken)

	if s.idcache != nil {
		cached, ok, err := s.idcache.Get(ctx, key)
		if err != nil {
			log.From(ctx).Warn("identity_cache_get_failed",
				slog.String("op", op),
				slog.String("err", err.Error()),
			)
		} else if ok && cached == userID {
			return userID, nil
		}
	}

	if _, err := s.storage.UserByID(ctx, userID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return uuid.Nil, fmt.Errorf("%s: %w", op, ErrUnauthorized)
		}

		return uuid.Nil, storeFail(op, err)
	}

	if s.idcache != nil {
		if err := s.idcache.Put(ctx, key, userID, s.identityTTL); err != nil {
			log.From(ctx).Warn("identity_cache_put_failed",
				slog.String("op", op),
				slog.String("err", err.Error()),
			)
		}
	}

	return userID, nil
}

// UserByID возвращает профиль пользователя для защищённых маршрутов.
// Исчезновение пользователя между resolve и чтением профиля — ErrUnauthorized.
func (s *Service) UserByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	const op = "service.auth.UserByID"

	user, err := s.storage.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrUnauthorized)
		}

		return nil, storeFail(op, err)
	}

	return user, nil
}

// issueTokenPair выпускает новую пару access+refresh токенов.
func (s *Service) issueTokenPair(userID uuid.UUID) (*models.TokenPair, error) {
	const op = "service.auth.issueTokenPair"

	now := time.Now().UTC()

	accessToken, err := s.issueToken(userID, TokenTypeAccess, s.cfg.AccessTokenTTL, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	refreshToken, err := s.issueToken(userID, TokenTypeRefresh, s.cfg.RefreshTokenTTL, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &models.TokenPair{
		AccessToken:     accessToken,
		RefreshToken:    refreshToken,
		AccessExpiresAt: now.Add(s.cfg.AccessTokenTTL),
	}, nil
}
