package utils

import (
	"context"
	"testing"
	"time"
)

func TestFixedWindowHit_ValidatesArguments(t *testing.T) {
	ctx := context.Background()
	if _, err := FixedWindowHit(ctx, nil, "k", 1, time.Second); err == nil {
		t.Fatalf("expected error for nil client")
	}
}

func TestRedisConfig_Defaults(t *testing.T) {
	c := RedisConfig{MinIdleConns: -1}.withDefaults()
	if c.PoolSize != 20 || c.MinIdleConns != 0 || c.PingTimeout != 2*time.Second {
		t.Fatalf("unexpected defaults: %+v", c)
	}
}
