package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const redisFailPrefix = "pressauth:ratelimit:fail:"

// RedisStore keeps the sliding window in a per-IP sorted set scored by
// attempt time. Only failures are stored: successes never count against the
// limit, and Redis deployments get their audit trail elsewhere. Keys expire
// one window after the last failure, so idle clients cost nothing.
type RedisStore struct {
	client redis.UniversalClient
	policy Policy
	now    func() time.Time
}

// NewRedisStore wraps an existing Redis client. The caller owns the client's
// lifecycle.
func NewRedisStore(client redis.UniversalClient, policy Policy) (*RedisStore, error) {
	if err := policy.validate(); err != nil {
		return nil, err
	}
	return &RedisStore{client: client, policy: policy, now: time.Now}, nil
}

func failKey(ip string) string { return redisFailPrefix + ip }

func (r *RedisStore) Record(ctx context.Context, ip string, success bool, _ *string) error {
	if success {
		return nil
	}

	now := r.now()
	cutoff := now.Add(-r.policy.Window)
	member := strconv.FormatInt(now.UnixNano(), 10) + "-" + uuid.NewString()

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, failKey(ip), redis.Z{
			Score:  float64(now.UnixMilli()),
			Member: member,
		})
		pipe.ZRemRangeByScore(ctx, failKey(ip), "0", strconv.FormatInt(cutoff.UnixMilli(), 10))
		pipe.Expire(ctx, failKey(ip), r.policy.Window)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (r *RedisStore) Allowed(ctx context.Context, ip string) (bool, error) {
	failed, err := r.FailedCount(ctx, ip)
	if err != nil {
		return false, err
	}
	return failed < r.policy.MaxAttempts, nil
}

func (r *RedisStore) FailedCount(ctx context.Context, ip string) (int, error) {
	cutoff := r.now().Add(-r.policy.Window)
	n, err := r.client.ZCount(ctx, failKey(ip),
		strconv.FormatInt(cutoff.UnixMilli(), 10), "+inf").Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return int(n), nil
}

// Cleanup is a no-op for Redis: keys expire on their own.
func (r *RedisStore) Cleanup(_ context.Context) (int, error) {
	return 0, nil
}
