package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Limiter decides whether another attempt for key is allowed.
type Limiter interface {
	Allow(ctx context.Context, key string) error
}

// AttemptLimiter counts OTP requests per phone in Redis within a fixed
// window. Without a Redis client it allows everything.
type AttemptLimiter struct {
	rdb    *redis.Client
	max    int64
	window time.Duration
}

func NewAttemptLimiter(rdb *redis.Client, max int, window time.Duration) *AttemptLimiter {
	return &AttemptLimiter{rdb: rdb, max: int64(max), window: window}
}

func (l *AttemptLimiter) Allow(ctx context.Context, key string) error {
	if l == nil || l.rdb == nil || l.max <= 0 {
		return nil
	}
	key = "otp_attempts:" + key

	attempts, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("count otp attempts: %w", err)
	}
	if attempts == 1 {
		l.rdb.Expire(ctx, key, l.window)
	}
	if attempts > l.max {
		return &Error{Kind: ErrTooManyRequests, Message: "Too many OTP requests, try again later"}
	}
	return nil
}
