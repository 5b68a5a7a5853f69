package fakes

import (
	"context"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

type redisEntry struct {
	value     string
	expiresAt time.Time
}

// RedisRepository mimics the JSON encoding and expiry semantics of the redis repository.
type RedisRepository struct {
	mu      sync.Mutex
	entries map[string]redisEntry
	Now     func() time.Time
	// Err, when set, is returned by every call.
	Err error
}

func NewRedisRepository() *RedisRepository {
	return &RedisRepository{entries: make(map[string]redisEntry), Now: time.Now}
}

func (r *RedisRepository) live(key string) (redisEntry, bool) {
	entry, ok := r.entries[key]
	if !ok {
		return entry, false
	}
	if !entry.expiresAt.IsZero() && !r.Now().Before(entry.expiresAt) {
		delete(r.entries, key)
		return entry, false
	}
	return entry, true
}

func (r *RedisRepository) expiry(exp time.Duration) time.Time {
	if exp <= 0 {
		return time.Time{}
	}
	return r.Now().Add(exp)
}

func (r *RedisRepository) Delete(ctx context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	delete(r.entries, key)
	return nil
}

func (r *RedisRepository) Set(ctx context.Context, key string, value interface{}, exp time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	r.entries[key] = redisEntry{value: string(raw), expiresAt: r.expiry(exp)}
	return nil
}

func (r *RedisRepository) Get(ctx context.Context, key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return "", r.Err
	}
	entry, ok := r.live(key)
	if !ok {
		return "", nil
	}
	return entry.value, nil
}

func (r *RedisRepository) Expire(ctx context.Context, key string, exp time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return false, r.Err
	}
	entry, ok := r.live(key)
	if !ok {
		return false, nil
	}
	entry.expiresAt = r.expiry(exp)
	r.entries[key] = entry
	return true, nil
}

func (r *RedisRepository) IncrementWithTTL(ctx context.Context, key string, exp time.Duration) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return 0, r.Err
	}
	count := 0
	entry, ok := r.live(key)
	if ok {
		json.Unmarshal([]byte(entry.value), &count)
	} else {
		entry.expiresAt = r.expiry(exp)
	}
	count++
	raw, _ := json.Marshal(count)
	entry.value = string(raw)
	r.entries[key] = entry
	return count, nil
}

func (r *RedisRepository) TrySetNX(ctx context.Context, key string, value interface{}, exp time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return false, r.Err
	}
	if _, ok := r.live(key); ok {
		return false, nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return false, err
	}
	r.entries[key] = redisEntry{value: string(raw), expiresAt: r.expiry(exp)}
	return true, nil
}

// Has reports whether key currently holds a value.
func (r *RedisRepository) Has(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.live(key)
	return ok
}
