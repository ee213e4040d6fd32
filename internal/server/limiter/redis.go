package limiter

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "cvgenius:login"

// RedisLimiter stores counters and lockouts in Redis so several server
// instances share one view of each IP.
type RedisLimiter struct {
	client *redis.Client
	opts   Options
	prefix string
}

func NewRedisLimiter(client *redis.Client, opts Options) *RedisLimiter {
	return &RedisLimiter{client: client, opts: opts.withDefaults(), prefix: defaultKeyPrefix}
}

// NewRedisClient connects and pings, failing fast on a bad address.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

func (r *RedisLimiter) countKey(ip string) string { return r.prefix + ":count:" + ip }
func (r *RedisLimiter) lockKey(ip string) string  { return r.prefix + ":lock:" + ip }

func (r *RedisLimiter) Check(ctx context.Context, ip string) (Status, error) {
	count, err := r.client.Get(ctx, r.countKey(ip)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return Status{}, fmt.Errorf("limiter get: %w", err)
	}
	failures := 0
	if count != "" {
		failures, _ = strconv.Atoi(count)
	}
	return r.status(ctx, ip, failures)
}

func (r *RedisLimiter) RecordFailure(ctx context.Context, ip string) (Status, error) {
	failures, err := r.client.Incr(ctx, r.countKey(ip)).Result()
	if err != nil {
		return Status{}, fmt.Errorf("limiter incr: %w", err)
	}
	if err := r.client.Expire(ctx, r.countKey(ip), r.opts.Retention).Err(); err != nil {
		return Status{}, fmt.Errorf("limiter expire: %w", err)
	}
	if int(failures) >= r.opts.MaxFailures {
		if err := r.client.Set(ctx, r.lockKey(ip), failures, r.opts.Lockout).Err(); err != nil {
			return Status{}, fmt.Errorf("limiter lock: %w", err)
		}
	}
	return r.status(ctx, ip, int(failures))
}

func (r *RedisLimiter) RecordSuccess(ctx context.Context, ip string) error {
	if err := r.client.Del(ctx, r.countKey(ip), r.lockKey(ip)).Err(); err != nil {
		return fmt.Errorf("limiter reset: %w", err)
	}
	return nil
}

func (r *RedisLimiter) status(ctx context.Context, ip string, failures int) (Status, error) {
	ttl, err := r.client.PTTL(ctx, r.lockKey(ip)).Result()
	if err != nil {
		return Status{}, fmt.Errorf("limiter ttl: %w", err)
	}

	st := Status{Failures: failures, Remaining: remaining(r.opts.MaxFailures, failures)}
	// PTTL is negative when the key is missing or has no expiry.
	if ttl > 0 {
		st.Blocked = true
		st.RetryAfter = ttl
	}
	return st, nil
}
