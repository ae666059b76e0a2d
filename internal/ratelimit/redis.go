package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/draintech/lead-intake/pkg/logging"
)

var tracer = otel.Tracer("leadintake.internal.ratelimit")

// RedisLimiter is a fixed-window counter backed by Redis INCR with a TTL,
// so the key store bounds its own memory and the window survives process
// restarts. It fails open when Redis is unreachable.
type RedisLimiter struct {
	redis  *redis.Client
	window time.Duration
	max    int
	logger *logging.Logger
}

// NewRedisLimiter creates a limiter allowing max submissions per window
// per identity.
func NewRedisLimiter(client *redis.Client, window time.Duration, max int, logger *logging.Logger) *RedisLimiter {
	if logger == nil {
		logger = logging.Default()
	}
	return &RedisLimiter{
		redis:  client,
		window: window,
		max:    max,
		logger: logger,
	}
}

// Allow increments the identity's window counter and reports whether the
// attempt is within the limit. The increment is recorded even when the
// attempt is rejected.
func (l *RedisLimiter) Allow(ctx context.Context, identity string) (bool, error) {
	if identity == "" {
		return true, nil
	}

	ctx, span := tracer.Start(ctx, "ratelimit.allow")
	defer span.End()

	key := fmt.Sprintf("ratelimit:lead:%s", identity)
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		l.logger.Error("rate limit check failed", "error", err, "key", key)
		// Fail open - allow the submission if Redis is down
		return true, nil
	}
	if count == 1 {
		l.redis.Expire(ctx, key, l.window)
	}

	allowed := int(count) <= l.max
	if !allowed {
		span.SetAttributes(attribute.Bool("ratelimit.exceeded", true))
		l.logger.Warn("submission rate limit exceeded", "count", count, "max", l.max)
	}
	return allowed, nil
}
