// Package lock provides a redis-backed lease lock for serializing work on a
// shared key across service instances.
package lock

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-retry"
)

// ErrNotAcquired is returned when the lease could not be obtained before the
// acquisition budget ran out.
var ErrNotAcquired = errors.New("lock not acquired")

// Locker serializes a critical section per key.
type Locker interface {
	// Do runs fn while holding the lease for key. Concurrent callers with the
	// same key block until the lease is free or acquisition times out.
	Do(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// Redis implements Locker with a SetNX lease.
type Redis struct {
	client   *redis.Client
	prefix   string
	lease    time.Duration
	backoff  time.Duration
	attempts uint64
}

// Option customizes a Redis locker.
type Option func(*Redis)

// WithLease sets how long a lease is held before it expires on its own.
func WithLease(d time.Duration) Option {
	return func(r *Redis) {
		if d > 0 {
			r.lease = d
		}
	}
}

// WithAcquire sets the retry backoff base and maximum attempts for acquisition.
func WithAcquire(backoff time.Duration, attempts uint64) Option {
	return func(r *Redis) {
		if backoff > 0 {
			r.backoff = backoff
		}
		if attempts > 0 {
			r.attempts = attempts
		}
	}
}

// NewRedis returns a redis-backed locker.
func NewRedis(client *redis.Client, opts ...Option) *Redis {
	r := &Redis{
		client:   client,
		prefix:   "lock:",
		lease:    15 * time.Second,
		backoff:  50 * time.Millisecond,
		attempts: 50,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Do implements Locker.
func (r *Redis) Do(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	fk := r.prefix + key

	backoff := retry.WithMaxRetries(r.attempts, retry.NewFibonacci(r.backoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		acquired, err := r.client.SetNX(ctx, fk, "1", r.lease).Result()
		if err != nil {
			return err
		}
		if !acquired {
			return retry.RetryableError(ErrNotAcquired)
		}
		return nil
	})
	if err != nil {
		return err
	}

	defer func() {
		// Release on a fresh context so a canceled caller still frees the lease.
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()
		r.client.Del(releaseCtx, fk)
	}()

	return fn(ctx)
}
