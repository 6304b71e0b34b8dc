package models

import (
	"time"

	"github.com/google/uuid"
)

// User — модель пользователя контакт-сервиса.
//
// Описание:
//   - Email хранится в нормализованном виде (trim + lowercase), уникальность
//     обеспечивается на уровне БД;
//   - PasswordHash — bcrypt-хэш; исходный пароль нигде не сохраняется;
//   - Verified — признак подтверждённого email; переключается один раз
//     (false -> true), обратного перехода нет;
//   - RefreshFingerprint — хэш действующего refresh-токена ("" — активной
//     сессии нет). Используется для обнаружения повторного использования
//     refresh-токена; сам токен на сервере не хранится.
type User struct {
	ID                 uuid.UUID
	Email              string
	Username           string
	AvatarURL          string
	PasswordHash       string
	Verified           bool
	RefreshFingerprint string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
