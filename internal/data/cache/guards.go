package cache

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	nsThrottle = "throttle"
	nsFailures = "login_failures"
	nsLocked   = "login_locked"
	nsRevoked  = "revoked_jti"
)

// RateLimiter counts requests per scope and subject inside a fixed window.
// Redis errors let the request through.
type RateLimiter struct {
	cache  *Cache
	limit  int
	window time.Duration
	log    *zap.Logger
}

func NewRateLimiter(c *Cache, limit int, window time.Duration, log *zap.Logger) *RateLimiter {
	return &RateLimiter{cache: c, limit: limit, window: window, log: log.With(zap.String("cache", "throttle"))}
}

// Allow records one request and reports whether it is within the limit.
func (l *RateLimiter) Allow(ctx context.Context, scope, subject string) bool {
	cnt, err := l.cache.IncrWithExpire(ctx, nsThrottle, scope+":"+normalize(subject), l.window)
	if err != nil {
		l.log.Warn("Throttle counter unavailable, allowing request",
			zap.Error(err),
			zap.String("scope", scope),
		)
		return true
	}
	return cnt <= int64(l.limit)
}

// LoginGuard locks an account after repeated password failures.
type LoginGuard struct {
	cache       *Cache
	maxFailures int
	window      time.Duration
	lockout     time.Duration
	log         *zap.Logger
}

func NewLoginGuard(c *Cache, maxFailures int, window, lockout time.Duration, log *zap.Logger) *LoginGuard {
	return &LoginGuard{
		cache:       c,
		maxFailures: maxFailures,
		window:      window,
		lockout:     lockout,
		log:         log.With(zap.String("cache", "login_guard")),
	}
}

func (g *LoginGuard) Locked(ctx context.Context, email string) bool {
	locked, err := g.cache.Exists(ctx, nsLocked, normalize(email))
	if err != nil {
		g.log.Warn("Lockout lookup failed", zap.Error(err))
		return false
	}
	return locked
}

// RecordFailure counts one failed attempt and reports whether it locked the account.
func (g *LoginGuard) RecordFailure(ctx context.Context, email string) bool {
	subject := normalize(email)
	cnt, err := g.cache.IncrWithExpire(ctx, nsFailures, subject, g.window)
	if err != nil {
		g.log.Warn("Failure counter unavailable", zap.Error(err))
		return false
	}
	if cnt < int64(g.maxFailures) {
		return false
	}

	if err := g.cache.Set(ctx, nsLocked, subject, 1, g.lockout); err != nil {
		g.log.Warn("Failed to set lockout", zap.Error(err))
		return false
	}
	_ = g.cache.Delete(ctx, nsFailures, subject)
	g.log.Info("Account locked after failed logins", zap.String("email", subject))
	return true
}

func (g *LoginGuard) Reset(ctx context.Context, email string) {
	if err := g.cache.Delete(ctx, nsFailures, normalize(email)); err != nil {
		g.log.Warn("Failed to reset failure counter", zap.Error(err))
	}
}

// Revocations remembers logged-out token IDs until the token would expire anyway.
type Revocations struct {
	cache *Cache
	now   func() time.Time
	log   *zap.Logger
}

func NewRevocations(c *Cache, log *zap.Logger) *Revocations {
	return &Revocations{cache: c, now: time.Now, log: log.With(zap.String("cache", "revocations"))}
}

func (r *Revocations) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	return r.cache.Set(ctx, nsRevoked, tokenID, 1, ttl)
}

// Revoked fails open when redis is unreachable.
func (r *Revocations) Revoked(ctx context.Context, tokenID string) bool {
	revoked, err := r.cache.Exists(ctx, nsRevoked, tokenID)
	if err != nil {
		r.log.Warn("Revocation lookup failed", zap.Error(err))
		return false
	}
	return revoked
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
