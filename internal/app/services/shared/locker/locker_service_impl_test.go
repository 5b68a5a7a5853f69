package locker

import (
	"context"
	"errors"
	"telehealth-service/internal/app/contracts/fakes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLockService_TryLockAndUnlock(t *testing.T) {
	ctx := context.Background()
	redis := fakes.NewRedisRepository()
	service := NewLockService(redis, zap.NewNop())

	acquired, value, err := service.TryLock(ctx, "lock:a", time.Minute)
	require.NoError(t, err)
	require.True(t, acquired)
	require.NotEmpty(t, value)

	acquired, _, err = service.TryLock(ctx, "lock:a", time.Minute)
	require.NoError(t, err)
	assert.False(t, acquired)

	assert.Error(t, service.Unlock(ctx, "lock:a", "someone-else"))
	assert.True(t, redis.Has("lock:a"))

	require.NoError(t, service.Unlock(ctx, "lock:a", value))
	assert.False(t, redis.Has("lock:a"))
	assert.NoError(t, service.Unlock(ctx, "lock:a", value))
}

func TestLockService_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	redis := fakes.NewRedisRepository()
	redis.Now = func() time.Time { return now }
	service := NewLockService(redis, zap.NewNop())

	_, value, err := service.TryLock(ctx, "lock:b", time.Minute)
	require.NoError(t, err)

	now = now.Add(50 * time.Second)
	require.NoError(t, service.Refresh(ctx, "lock:b", value, time.Minute))
	assert.Error(t, service.Refresh(ctx, "lock:b", "other", time.Minute))

	now = now.Add(50 * time.Second)
	assert.True(t, redis.Has("lock:b"))

	now = now.Add(20 * time.Second)
	acquired, _, err := service.TryLock(ctx, "lock:b", time.Minute)
	require.NoError(t, err)
	assert.True(t, acquired)
}

func TestLockService_RedisError(t *testing.T) {
	redis := fakes.NewRedisRepository()
	redis.Err = errors.New("redis down")
	service := NewLockService(redis, zap.NewNop())

	acquired, _, err := service.TryLock(context.Background(), "lock:c", time.Minute)
	assert.Error(t, err)
	assert.False(t, acquired)
}

func TestWithLock(t *testing.T) {
	ctx := context.Background()
	redis := fakes.NewRedisRepository()
	service := NewLockService(redis, zap.NewNop())

	calls := 0
	acquired, err := WithLock(ctx, service, "lock:d", time.Minute, func() error {
		calls++
		assert.True(t, redis.Has("lock:d"))

		nested, err := WithLock(ctx, service, "lock:d", time.Minute, func() error {
			calls++
			return nil
		})
		assert.NoError(t, err)
		assert.False(t, nested)
		return errors.New("fn failed")
	})
	assert.True(t, acquired)
	assert.EqualError(t, err, "fn failed")
	assert.Equal(t, 1, calls)
	assert.False(t, redis.Has("lock:d"))
}
