package ratelimit

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	api "github.com/Jamolkhon5/lifesense/internal/handler"
)

const keyPrefix = "rate_limit:"

const TooManyRequests = "Too many requests, please slow down."

// tokenBucketScript refills capacity tokens at rate per second and takes one per call.
const tokenBucketScript = `
local key = KEYS[1]
local capacity = tonumber(ARGV[1])
local rate = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

local bucket = redis.call('HMGET', key, 'tokens', 'updated_at')
local tokens = tonumber(bucket[1])
local updated_at = tonumber(bucket[2])

if tokens == nil or updated_at == nil then
    tokens = capacity
    updated_at = now
end

tokens = math.min(capacity, tokens + math.max(0, now - updated_at) * rate)

local allowed = 0
local retry_after = 0
if tokens >= 1 then
    tokens = tokens - 1
    allowed = 1
else
    retry_after = (1 - tokens) / rate
end

redis.call('HMSET', key, 'tokens', tokens, 'updated_at', now)
redis.call('EXPIRE', key, 3600)

return {allowed, math.floor(tokens), math.ceil(retry_after)}
`

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter int
}

// Limiter decides whether a client key may make another request.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// RedisLimiter is a token bucket per key with a burst of 2*qps.
type RedisLimiter struct {
	client *redis.Client
	qps    int
	now    func() time.Time
}

func NewRedisLimiter(client *redis.Client, qps int) *RedisLimiter {
	return &RedisLimiter{client: client, qps: qps, now: time.Now}
}

// NewRedisClient connects to addr and checks it with a PING.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return client, nil
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	capacity := 2 * l.qps
	now := float64(l.now().UnixNano()) / 1e9
	result, err := l.client.Eval(ctx, tokenBucketScript, []string{key}, capacity, l.qps, now).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("eval token bucket: %w", err)
	}
	return parseDecision(result, capacity), nil
}

// parseDecision reads the script's {allowed, remaining, retry_after} reply.
func parseDecision(result any, capacity int) Decision {
	d := Decision{Limit: capacity, Remaining: capacity}
	arr, ok := result.([]any)
	if !ok || len(arr) < 3 {
		return d
	}
	if v, ok := arr[0].(int64); ok {
		d.Allowed = v == 1
	}
	if v, ok := arr[1].(int64); ok {
		d.Remaining = int(v)
	}
	if v, ok := arr[2].(int64); ok {
		d.RetryAfter = int(v)
	}
	return d
}

// Middleware limits requests per client IP. Limiter failures let the request through.
func Middleware(limiter Limiter, log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision, err := limiter.Allow(r.Context(), keyPrefix+clientIP(r))
			if err != nil {
				log.Warn().Err(err).Msg("rate limiter unavailable, allowing request")
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
			if !decision.Allowed {
				w.Header().Set("Retry-After", strconv.Itoa(decision.RetryAfter))
				api.WriteError(w, http.StatusTooManyRequests, TooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP strips the port. chi's RealIP middleware has already applied proxy headers.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
