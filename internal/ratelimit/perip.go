// Package ratelimit throttles callers: a token bucket per client IP for the
// API, and a fixed-window counter for login attempts.
package ratelimit

import (
	"sync"
	"time"

	"clinic-platform/internal/apperr"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	MsgTooManyRequests      = "Too many requests"
	MsgTooManyLoginAttempts = "Too many login attempts"
)

// PerIP keeps one token bucket per client IP. Buckets idle longer than ttl
// are evicted by Sweep.
type PerIP struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   rate.Limit
	burst   int
	ttl     time.Duration
	now     func() time.Time
}

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

func NewPerIP(perSecond, burst int) *PerIP {
	return &PerIP{
		buckets: make(map[string]*bucket),
		limit:   rate.Limit(perSecond),
		burst:   burst,
		ttl:     5 * time.Minute,
		now:     time.Now,
	}
}

func (p *PerIP) Allow(ip string) bool {
	if ip == "" {
		ip = "unknown"
	}
	now := p.now()
	p.mu.Lock()
	b, ok := p.buckets[ip]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(p.limit, p.burst)}
		p.buckets[ip] = b
	}
	b.seen = now
	p.mu.Unlock()
	return b.lim.AllowN(now, 1)
}

// Sweep drops buckets not seen within the ttl and returns how many remain.
func (p *PerIP) Sweep() int {
	cutoff := p.now().Add(-p.ttl)
	p.mu.Lock()
	defer p.mu.Unlock()
	for ip, b := range p.buckets {
		if b.seen.Before(cutoff) {
			delete(p.buckets, ip)
		}
	}
	return len(p.buckets)
}

// Middleware rejects callers over their budget with 429 through the error boundary.
func (p *PerIP) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !p.Allow(c.ClientIP()) {
			_ = c.Error(apperr.TooManyRequests(MsgTooManyRequests))
			c.Abort()
			return
		}
		c.Next()
	}
}
