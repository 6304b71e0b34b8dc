package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newCache(t *testing.T) (Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedis(rdb, ""), mr
}

func TestPutGetInvalidate(t *testing.T) {
	t.Parallel()

	c, _ := newCache(t)
	ctx := context.Background()
	uid := uuid.New()

	// Промах до записи.
	_, ok, err := c.Get(ctx, "fp-1")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, c.Put(ctx, "fp-1", uid, time.Minute))

	got, ok, err := c.Get(ctx, "fp-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uid, got)

	require.NoError(t, c.Invalidate(ctx, "fp-1"))

	_, ok, err = c.Get(ctx, "fp-1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestInvalidate_MissingKey_NoError(t *testing.T) {
	t.Parallel()

	c, _ := newCache(t)
	require.NoError(t, c.Invalidate(context.Background(), "never-existed"))
}

func TestPut_TTLExpires(t *testing.T) {
	t.Parallel()

	c, mr := newCache(t)
	ctx := context.Background()
	uid := uuid.New()

	require.NoError(t, c.Put(ctx, "fp-1", uid, time.Minute))

	mr.FastForward(time.Minute + time.Second)

	_, ok, err := c.Get(ctx, "fp-1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestPut_NonPositiveTTL_NoOp(t *testing.T) {
	t.Parallel()

	c, _ := newCache(t)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "fp-1", uuid.New(), 0))

	_, ok, err := c.Get(ctx, "fp-1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestGet_CorruptedValue_TreatedAsMiss(t *testing.T) {
	t.Parallel()

	c, mr := newCache(t)

	require.NoError(t, mr.Set("auth:id:fp-1", "not-a-uuid"))

	_, ok, err := c.Get(context.Background(), "fp-1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestGet_RedisDown_ReturnsError(t *testing.T) {
	t.Parallel()

	c, mr := newCache(t)
	mr.Close()

	_, _, err := c.Get(context.Background(), "fp-1")
	require.Error(t, err)
}
