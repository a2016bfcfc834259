package ratelimit

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "bloodlink:ratelimit:"

// Lua скрипт: атомарная проверка и добавление в sorted set окна.
// Возвращает {allowed, remaining, retry_after_ms}.
var slidingWindow = redis.NewScript(`
	local key = KEYS[1]
	local limit = tonumber(ARGV[1])
	local window = tonumber(ARGV[2])
	local now = tonumber(ARGV[3])
	local member = ARGV[4]

	redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
	local current = redis.call('ZCARD', key)

	if current < limit then
		redis.call('ZADD', key, now, member)
		redis.call('PEXPIRE', key, window)
		return {1, limit - current - 1, 0}
	end

	local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
	local retry = window
	if oldest[2] then
		retry = tonumber(oldest[2]) + window - now
	end
	return {0, 0, retry}
`)

// RedisLimiter общее для всех инстансов скользящее окно
type RedisLimiter struct {
	client redis.Scripter
	limit  int
	window time.Duration
	now    func() time.Time
	seq    atomic.Uint64
}

func NewRedisLimiter(client redis.Scripter, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	now := l.now()
	member := fmt.Sprintf("%d:%d", now.UnixNano(), l.seq.Add(1))

	result, err := slidingWindow.Run(ctx, l.client, []string{keyPrefix + key},
		l.limit, l.window.Milliseconds(), now.UnixMilli(), member).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("redis rate limit script: %w", err)
	}
	if len(result) != 3 {
		return Decision{}, fmt.Errorf("redis rate limit script: unexpected result %v", result)
	}

	return Decision{
		Allowed:    result[0] == 1,
		Limit:      l.limit,
		Remaining:  int(result[1]),
		RetryAfter: time.Duration(result[2]) * time.Millisecond,
	}, nil
}

// Close клиент принадлежит вызывающему
func (l *RedisLimiter) Close() error { return nil }
