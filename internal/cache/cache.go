// cache реализует кэш идентичности "access-токен -> пользователь" поверх Redis.
//
// Кэш консультативный: промах всегда уходит в credential store, попадание
// экономит round-trip в БД на каждом защищённом запросе. TTL записей
// держится заметно меньше TTL самого токена, чтобы ограничить окно
// устаревания. Ключом служит отпечаток токена (sha256), сырые токены
// в Redis не попадают.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Cache — минимальный контракт кэша идентичности.
type Cache interface {
	// Get возвращает идентификатор пользователя и признак наличия записи.
	Get(ctx context.Context, key string) (uuid.UUID, bool, error)
	// Put сохраняет запись с TTL.
	Put(ctx context.Context, key string, userID uuid.UUID, ttl time.Duration) error
	// Invalidate удаляет запись (logout). Отсутствие записи — не ошибка.
	Invalidate(ctx context.Context, key string) error
}

type redisCache struct {
	rdb    redis.UniversalClient
	prefix string
}

// NewRedis создаёт кэш идентичности поверх готового клиента Redis.
// Если prefix пустой — используется "auth:id:".
func NewRedis(rdb redis.UniversalClient, prefix string) Cache {
	if prefix == "" {
		prefix = "auth:id:"
	}

	return &redisCache{rdb: rdb, prefix: prefix}
}

func (c *redisCache) key(k string) string { return c.prefix + k }

func (c *redisCache) Get(ctx context.Context, key string) (uuid.UUID, bool, error) {
	val, err := c.rdb.Get(ctx, c.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return uuid.Nil, false, nil
		}

		return uuid.Nil, false, err
	}

	uid, err := uuid.Parse(val)
	if err != nil {
		// Битое значение: считаем промахом, запись перезапишется.
		return uuid.Nil, false, nil
	}

	return uid, true, nil
}

func (c *redisCache) Put(ctx context.Context, key string, userID uuid.UUID, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	return c.rdb.Set(ctx, c.key(key), userID.String(), ttl).Err()
}

func (c *redisCache) Invalidate(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, c.key(key)).Err()
}
