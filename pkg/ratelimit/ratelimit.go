// Package ratelimit ограничивает частоту вызовов шлюза на клиента
// скользящим окном: in-memory для одного инстанса, Redis для нескольких.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"bloodlink/pkg/config"
)

var ErrLimiterClosed = errors.New("limiter is closed")

// Decision результат проверки одного вызова
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	// RetryAfter когда освободится место в окне; ноль, если вызов разрешён
	RetryAfter time.Duration
}

// Limiter интерфейс ограничителя запросов
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
	Close() error
}

// New создаёт лимитер по конфигурации; для redis нужен клиент
func New(cfg config.RateLimitConfig, rdb redis.Scripter) (Limiter, error) {
	if cfg.Requests <= 0 || cfg.Window <= 0 {
		return nil, fmt.Errorf("rate limit: requests and window must be positive, got %d/%s", cfg.Requests, cfg.Window)
	}

	switch cfg.Backend {
	case "redis":
		if rdb == nil {
			return nil, errors.New("rate limit: redis backend requires a client")
		}
		return NewRedisLimiter(rdb, cfg.Requests, cfg.Window), nil
	case "memory", "":
		return NewMemoryLimiter(cfg.Requests, cfg.Window), nil
	default:
		return nil, fmt.Errorf("rate limit: unknown backend %q", cfg.Backend)
	}
}
