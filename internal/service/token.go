package service

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Типы токенов. Тип зашит в подписанную полезную нагрузку: операция
// проверяет его сама и не доверяет вызывающей стороне, поэтому украденный
// refresh-токен нельзя предъявить как access (и наоборот).
const (
	TokenTypeAccess       = "access"
	TokenTypeRefresh      = "refresh"
	TokenTypeVerification = "email_verification"
)

// tokenClaims — полезная нагрузка токена: sub, type, iat, exp.
// Других полей (в том числе PII) в токене нет.
type tokenClaims struct {
	Type string `json:"type"`
	jwt.RegisteredClaims
}

// issueToken выпускает подписанный HS256 токен заданного типа.
func (s *Service) issueToken(userID uuid.UUID, typ string, ttl time.Duration, now time.Time) (string, error) {
	const op = "service.token.issueToken"

	// jti делает каждый выпущенный токен уникальным: без него два refresh,
	// выпущенные в одну секунду, совпали бы байт в байт вместе с fingerprint.
	claims := tokenClaims{
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return signed, nil
}

// decodeToken проверяет подпись и срок действия токена и сверяет его тип
// с ожидаемым. Порядок проверок: подпись -> срок -> тип.
func (s *Service) decodeToken(raw, wantType string) (uuid.UUID, error) {
	const op = "service.token.decodeToken"

	token, err := jwt.ParseWithClaims(raw, &tokenClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
			}

			return []byte(s.cfg.JWTSecret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(5*time.Second),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, fmt.Errorf("%s: %w", op, ErrTokenExpired)
		}

		return uuid.Nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return uuid.Nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	if claims.Type != wantType {
		return uuid.Nil, fmt.Errorf("%s: %w", op, ErrTokenTypeMismatch)
	}

	uid, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	return uid, nil
}

// fingerprint возвращает непрозрачный отпечаток токена: base64url(sha256).
// В БД и в ключах кэша сами токены не хранятся — только отпечатки.
func fingerprint(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
