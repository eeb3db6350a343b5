// internal/pkg/ratelimit/ratelimit.go
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limit describes an action budget within a rolling window
type Limit struct {
	Attempts int
	Window   time.Duration
}

// Action limits for sensitive authentication endpoints
var (
	LoginLimit    = Limit{Attempts: 5, Window: 15 * time.Minute}
	RegisterLimit = Limit{Attempts: 3, Window: 30 * time.Minute}
)

// Limiter throttles sensitive actions per subject (an IP or an email)
// using Redis counters. A nil client disables limiting.
type Limiter struct {
	redisClient *redis.Client
}

// NewLimiter creates a new action limiter
func NewLimiter(redisClient *redis.Client) *Limiter {
	return &Limiter{redisClient: redisClient}
}

// Allow records an attempt and reports whether the subject is still
// within budget for the action. Redis being unreachable fails open.
func (l *Limiter) Allow(ctx context.Context, action, subject string, limit Limit) (bool, error) {
	if l.redisClient == nil {
		return true, nil
	}

	key := fmt.Sprintf("action_limit:%s:%s", action, subject)

	count, err := l.redisClient.Incr(ctx, key).Result()
	if err != nil {
		return true, nil
	}
	if count == 1 {
		// First attempt starts the window
		if err := l.redisClient.Expire(ctx, key, limit.Window).Err(); err != nil {
			return true, nil
		}
	}

	return count <= int64(limit.Attempts), nil
}

// Reset clears the attempt counter for a subject, used after a
// successful login so earlier failures stop counting
func (l *Limiter) Reset(ctx context.Context, action, subject string) error {
	if l.redisClient == nil {
		return nil
	}
	key := fmt.Sprintf("action_limit:%s:%s", action, subject)
	return l.redisClient.Del(ctx, key).Err()
}
