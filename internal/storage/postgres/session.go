package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pribylovaa/go-contact-book/auth-service/internal/storage"
)

// SetRefreshFingerprint безусловно записывает новый fingerprint.
// Прежнее значение перезаписывается: у пользователя одна активная refresh-сессия.
func (s *Storage) SetRefreshFingerprint(ctx context.Context, id uuid.UUID, fingerprint string) error {
	const op = "storage.postgres.SetRefreshFingerprint"

	query := `
		UPDATE users
		SET refresh_fingerprint = $2, updated_at = now()
		WHERE id = $1
	`

	cmdTag, err := s.db.Exec(ctx, query, id, fingerprint)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

// RotateRefreshFingerprint атомарно меняет expected -> next одним UPDATE.
// Возвращает:
//
//	(true, nil)  — текущее значение совпало с expected и заменено на next;
//	(false, nil) — значение не совпало (ротация уже произошла или сессия сброшена);
//	(false, ErrNotFound) — пользователь не найден.
func (s *Storage) RotateRefreshFingerprint(ctx context.Context, id uuid.UUID, expected, next string) (bool, error) {
	const op = "storage.postgres.RotateRefreshFingerprint"

	const upd = `
		UPDATE users
		SET refresh_fingerprint = $3, updated_at = now()
		WHERE id = $1 AND refresh_fingerprint = $2
		RETURNING id
	`

	var updated uuid.UUID
	err := s.db.QueryRow(ctx, upd, id, expected, next).Scan(&updated)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	// CAS не сработал: отличаем "нет пользователя" от "fingerprint не совпал".
	const sel = `
		SELECT 1
		FROM users
		WHERE id = $1
	`

	var one int
	err = s.db.QueryRow(ctx, sel, id).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return false, fmt.Errorf("%s: %w", op, err)
	}

	return false, nil
}

// ClearRefreshFingerprint сбрасывает fingerprint. Идемпотентна:
// повторный сброс или отсутствие активной сессии ошибкой не считаются.
func (s *Storage) ClearRefreshFingerprint(ctx context.Context, id uuid.UUID) error {
	const op = "storage.postgres.ClearRefreshFingerprint"

	query := `
		UPDATE users
		SET refresh_fingerprint = '', updated_at = now()
		WHERE id = $1
	`

	cmdTag, err := s.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

// SetVerified помечает email подтверждённым. Повторный вызов — no-op.
func (s *Storage) SetVerified(ctx context.Context, id uuid.UUID) error {
	const op = "storage.postgres.SetVerified"

	query := `
		UPDATE users
		SET verified = TRUE, updated_at = now()
		WHERE id = $1
	`

	cmdTag, err := s.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}
