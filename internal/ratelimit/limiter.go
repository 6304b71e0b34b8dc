// ratelimit реализует счётчик запросов с фиксированным окном поверх Redis.
//
// Семантика fixed-window: INCR + EXPIRE на первом попадании в окно; счётчик
// истекает сам на границе окна. Инкремент-и-проверка атомарны на стороне
// Redis, потерянных обновлений при конкурентных запросах нет. Политику
// поведения при недоступности Redis (fail-open/fail-closed) выбирает
// вызывающая сторона по ErrUnavailable.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrRateLimited — потолок запросов в текущем окне исчерпан. Транспорт: HTTP 429.
	ErrRateLimited = errors.New("rate limited")
	// ErrUnavailable — счётчик недоступен (сбой Redis/сети).
	ErrUnavailable = errors.New("rate limiter unavailable")
)

// Limiter ограничивает частоту запросов по ключу (клиент, бакет маршрута).
type Limiter struct {
	rdb    redis.UniversalClient
	prefix string
}

// New создаёт Limiter поверх готового клиента Redis.
// Если prefix пустой — используется "auth:rl:".
func New(rdb redis.UniversalClient, prefix string) *Limiter {
	if prefix == "" {
		prefix = "auth:rl:"
	}

	return &Limiter{rdb: rdb, prefix: prefix}
}

// Allow атомарно инкрементирует счётчик (bucket, client) и сверяет с потолком.
// Возвращает nil, ErrRateLimited или ErrUnavailable.
func (l *Limiter) Allow(ctx context.Context, bucket, client string, limit int, window time.Duration) error {
	if limit <= 0 || window <= 0 {
		return nil
	}

	key := l.prefix + bucket + ":" + client

	count, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	// TTL выставляется только первому запросу окна.
	if count == 1 {
		if err := l.rdb.Expire(ctx, key, window).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}

	if count > int64(limit) {
		return ErrRateLimited
	}

	return nil
}
