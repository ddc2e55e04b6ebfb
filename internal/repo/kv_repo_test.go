package repo

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBCounter int64

type kvStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

func setupTestDB(t *testing.T) *KVRepo {
	counter := atomic.AddInt64(&testDBCounter, 1)
	dsn := fmt.Sprintf("file:kvtest%d?mode=memory&cache=shared", counter)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	r := NewKVRepo(db)
	require.NoError(t, r.Migrate())
	return r
}

func setupTestRedis(t *testing.T) *RedisKV {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisKV(rdb, "console:")
}

func TestKVStores(t *testing.T) {
	stores := map[string]func(t *testing.T) kvStore{
		"gorm":  func(t *testing.T) kvStore { return setupTestDB(t) },
		"redis": func(t *testing.T) kvStore { return setupTestRedis(t) },
	}
	for name, mk := range stores {
		t.Run(name, func(t *testing.T) {
			s := mk(t)
			ctx := context.Background()

			_, ok, err := s.Get(ctx, "adminToken")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.Set(ctx, "adminToken", "t1"))
			require.NoError(t, s.Set(ctx, "adminToken", "t2"))
			require.NoError(t, s.Set(ctx, "token", "u1"))

			v, ok, err := s.Get(ctx, "adminToken")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "t2", v)

			require.NoError(t, s.Delete(ctx, "adminToken"))
			_, ok, err = s.Get(ctx, "adminToken")
			require.NoError(t, err)
			assert.False(t, ok)

			v, ok, err = s.Get(ctx, "token")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "u1", v)

			require.NoError(t, s.Delete(ctx, "missing"))
		})
	}
}

func TestRedisKV_Prefix(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	s := NewRedisKV(rdb, "console:")
	require.NoError(t, s.Set(context.Background(), "adminEmail", "ops@example.com"))

	got, err := mr.Get("console:adminEmail")
	require.NoError(t, err)
	assert.Equal(t, "ops@example.com", got)
}
