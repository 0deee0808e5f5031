package ratelimit

import (
	"context"
	"strings"
	"sync"
	"time"

	"clinic-platform/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// LoginLimiter counts login attempts per key (client IP plus email) inside a
// fixed window. Reset clears the counter after a successful login.
type LoginLimiter interface {
	Hit(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string) error
}

// LoginKey builds the limiter key for one client and account.
func LoginKey(ip, email string) string {
	return ip + "|" + strings.ToLower(strings.TrimSpace(email))
}

const loginKeyPrefix = "ratelimit:login:"

type RedisLogin struct {
	rdb    *redis.Client
	max    int
	window time.Duration
}

func NewRedisLogin(rdb *redis.Client, maxAttempts int, window time.Duration) *RedisLogin {
	return &RedisLogin{rdb: rdb, max: maxAttempts, window: window}
}

func (l *RedisLogin) Hit(ctx context.Context, key string) (bool, error) {
	res, err := utils.FixedWindowHit(ctx, l.rdb, loginKeyPrefix+key, l.max, l.window)
	if err != nil {
		return false, err
	}
	return res.Allowed, nil
}

func (l *RedisLogin) Reset(ctx context.Context, key string) error {
	return l.rdb.Del(ctx, loginKeyPrefix+key).Err()
}

// MemoryLogin is the in-process LoginLimiter for tests and single-node runs.
type MemoryLogin struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	windows map[string]*window
	now     func() time.Time
}

type window struct {
	count   int
	resetAt time.Time
}

func NewMemoryLogin(maxAttempts int, w time.Duration) *MemoryLogin {
	return &MemoryLogin{max: maxAttempts, window: w, windows: make(map[string]*window), now: time.Now}
}

func (l *MemoryLogin) Hit(_ context.Context, key string) (bool, error) {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	w, ok := l.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(l.window)}
		l.windows[key] = w
	}
	w.count++
	return w.count <= l.max, nil
}

func (l *MemoryLogin) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
	return nil
}
