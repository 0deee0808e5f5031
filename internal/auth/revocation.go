package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationStore remembers revoked refresh-token ids until their natural expiry.
type RevocationStore interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
	// RevokeIfNew revokes jti atomically and reports whether this call did
	// it. False means the id was already revoked.
	RevokeIfNew(ctx context.Context, jti string, until time.Time) (bool, error)
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

const revokedKeyPrefix = "auth:revoked:"

// RedisRevocations keeps one expiring key per revoked token id.
type RedisRevocations struct {
	rdb   *redis.Client
	clock func() time.Time
}

func NewRedisRevocations(rdb *redis.Client) *RedisRevocations {
	return &RedisRevocations{rdb: rdb, clock: time.Now}
}

func (r *RedisRevocations) Revoke(ctx context.Context, jti string, until time.Time) error {
	if r.rdb == nil {
		return errors.New("auth: redis client not configured")
	}
	if jti == "" {
		return errors.New("auth: jti is required")
	}
	ttl := until.Sub(r.clock())
	if ttl <= 0 {
		// Already expired; verification rejects it anyway.
		return nil
	}
	return r.rdb.Set(ctx, revokedKeyPrefix+jti, "1", ttl).Err()
}

// RevokeIfNew is SET NX EX on the revocation key.
func (r *RedisRevocations) RevokeIfNew(ctx context.Context, jti string, until time.Time) (bool, error) {
	if r.rdb == nil {
		return false, errors.New("auth: redis client not configured")
	}
	if jti == "" {
		return false, errors.New("auth: jti is required")
	}
	ttl := until.Sub(r.clock())
	if ttl <= 0 {
		return false, nil
	}
	return r.rdb.SetNX(ctx, revokedKeyPrefix+jti, "1", ttl).Result()
}

func (r *RedisRevocations) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if r.rdb == nil {
		return false, errors.New("auth: redis client not configured")
	}
	n, err := r.rdb.Exists(ctx, revokedKeyPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MemoryRevocations is an in-process RevocationStore for tests and local runs.
type MemoryRevocations struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	clock   func() time.Time
}

func NewMemoryRevocations() *MemoryRevocations {
	return &MemoryRevocations{revoked: make(map[string]time.Time), clock: time.Now}
}

func (m *MemoryRevocations) Revoke(_ context.Context, jti string, until time.Time) error {
	if jti == "" {
		return errors.New("auth: jti is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[jti] = until
	return nil
}

func (m *MemoryRevocations) RevokeIfNew(_ context.Context, jti string, until time.Time) (bool, error) {
	if jti == "" {
		return false, errors.New("auth: jti is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.revokedLocked(jti) {
		return false, nil
	}
	m.revoked[jti] = until
	return true, nil
}

func (m *MemoryRevocations) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.revokedLocked(jti), nil
}

func (m *MemoryRevocations) revokedLocked(jti string) bool {
	until, ok := m.revoked[jti]
	if !ok {
		return false
	}
	if !m.clock().Before(until) {
		delete(m.revoked, jti)
		return false
	}
	return true
}
