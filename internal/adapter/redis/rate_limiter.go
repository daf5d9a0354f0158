package redis

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"
)

const limiterTimeout = 500 * time.Millisecond

// tokenBucketScript refills the bucket for the time elapsed since the last
// call, then takes one token if there is one. Buckets expire when idle.
// ARGV: [1]=now_ms, [2]=tokens per second, [3]=burst, [4]=ttl_ms
var tokenBucketScript = goredis.NewScript(`
local now = tonumber(ARGV[1])
local rate = tonumber(ARGV[2])
local burst = tonumber(ARGV[3])
local tokens = tonumber(redis.call('HGET', KEYS[1], 'tokens'))
local last = tonumber(redis.call('HGET', KEYS[1], 'last'))
if tokens == nil or last == nil then
  tokens = burst
  last = now
end
tokens = math.min(burst, tokens + math.max(0, now - last) / 1000.0 * rate)
local allowed = 0
if tokens >= 1 then
  tokens = tokens - 1
  allowed = 1
end
redis.call('HSET', KEYS[1], 'tokens', tostring(tokens), 'last', ARGV[1])
redis.call('PEXPIRE', KEYS[1], ARGV[4])
return allowed
`)

// RateLimiter is a token bucket per identifier shared by every server
// instance. It satisfies echo's middleware.RateLimiterStore.
type RateLimiter struct {
	rdb   *goredis.Client
	clock clockwork.Clock
	rate  float64
	burst int
	ttl   time.Duration
}

func NewRateLimiter(rdb *goredis.Client, clock clockwork.Clock, ratePerSecond float64, burst int) *RateLimiter {
	// An idle bucket is full again after burst/rate seconds.
	ttl := time.Duration(float64(burst)/ratePerSecond*float64(time.Second)) + time.Second
	return &RateLimiter{rdb: rdb, clock: clock, rate: ratePerSecond, burst: burst, ttl: ttl}
}

func rateLimitKey(identifier string) string {
	return "rate_limit:anchor:" + identifier
}

// Allow takes one token for identifier. When Redis is unavailable requests
// are let through.
func (l *RateLimiter) Allow(identifier string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), limiterTimeout)
	defer cancel()

	allowed, err := l.take(ctx, identifier)
	if err != nil {
		slog.WarnContext(ctx, "Rate limiter unavailable, allowing request", "error", err)
		return true, nil
	}
	return allowed, nil
}

func (l *RateLimiter) take(ctx context.Context, identifier string) (bool, error) {
	result, err := tokenBucketScript.Run(ctx, l.rdb, []string{rateLimitKey(identifier)},
		strconv.FormatInt(l.clock.Now().UnixMilli(), 10),
		strconv.FormatFloat(l.rate, 'f', -1, 64),
		l.burst,
		l.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("rate limit check failed: %w", err)
	}
	return result == 1, nil
}
