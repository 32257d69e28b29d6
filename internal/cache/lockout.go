package cache

import (
	"context"
	"strconv"
	"time"

	"ferretcontrol/internal/security"

	"github.com/redis/go-redis/v9"
)

const lockoutPrefix = "auth:lockout:"

// RedisLockout keeps failed login counters in a Redis hash per username.
type RedisLockout struct {
	client redis.Cmdable
	policy security.LockoutPolicy
	now    func() time.Time
}

func NewRedisLockout(client redis.Cmdable, policy security.LockoutPolicy) *RedisLockout {
	return &RedisLockout{client: client, policy: policy, now: time.Now}
}

func lockoutKey(username string) string {
	return lockoutPrefix + username
}

func (l *RedisLockout) Locked(ctx context.Context, username string) (bool, error) {
	raw, err := l.client.HGet(ctx, lockoutKey(username), "locked_until").Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	unix, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || unix <= 0 {
		return false, nil
	}
	return l.now().Before(time.Unix(unix, 0)), nil
}

func (l *RedisLockout) RecordFailure(ctx context.Context, username string) error {
	key := lockoutKey(username)

	count, err := l.client.HIncrBy(ctx, key, "failed_count", 1).Result()
	if err != nil {
		return err
	}

	if int(count) >= l.policy.Threshold {
		lockedUntil := l.now().Add(l.policy.Window).UTC()
		_, err = l.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.HSet(ctx, key, "locked_until", lockedUntil.Unix())
			p.Expire(ctx, key, l.policy.Window)
			return nil
		})
		return err
	}

	// counters of users that stop trying fade out after one window
	return l.client.Expire(ctx, key, l.policy.Window).Err()
}

func (l *RedisLockout) Clear(ctx context.Context, username string) error {
	return l.client.Del(ctx, lockoutKey(username)).Err()
}

var _ security.Lockout = (*RedisLockout)(nil)
