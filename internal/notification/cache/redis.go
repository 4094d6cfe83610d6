// Package cache keeps per-user unread notification counts in Redis.
package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"hiretrack/pkg/domain"
	"hiretrack/pkg/platform/circuit"
	"hiretrack/pkg/platform/sentinel"
)

const (
	unreadKeyPrefix = "notif:unread:"

	DefaultTTL = 30 * time.Second
)

// RedisCache stores unread counts under notif:unread:<user id>. Entries
// expire after the TTL so a missed invalidation heals on its own.
//
// With a breaker attached, calls are skipped while it is open: reads report
// a miss, and writes and invalidations fail with sentinel.ErrUnavailable so
// callers know an old entry may still be in Redis.
type RedisCache struct {
	client  redis.Cmdable
	ttl     time.Duration
	breaker *circuit.Breaker
}

type Option func(*RedisCache)

func WithTTL(ttl time.Duration) Option {
	return func(c *RedisCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(c *RedisCache) {
		c.breaker = b
	}
}

func NewRedis(client redis.Cmdable, opts ...Option) *RedisCache {
	c := &RedisCache{client: client, ttl: DefaultTTL}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func unreadKey(userID domain.UserID) string {
	return unreadKeyPrefix + userID.String()
}

// GetUnread returns the cached count. ok is false on a miss.
func (c *RedisCache) GetUnread(ctx context.Context, userID domain.UserID) (count int, ok bool, err error) {
	if !c.allow() {
		return 0, false, nil
	}
	v, err := c.client.Get(ctx, unreadKey(userID)).Int()
	if errors.Is(err, redis.Nil) {
		c.record(nil)
		return 0, false, nil
	}
	c.record(err)
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

func (c *RedisCache) SetUnread(ctx context.Context, userID domain.UserID, count int) error {
	if !c.allow() {
		return sentinel.ErrUnavailable
	}
	err := c.client.Set(ctx, unreadKey(userID), strconv.Itoa(count), c.ttl).Err()
	c.record(err)
	return err
}

// Invalidate drops the cached counts for every user in one round trip.
func (c *RedisCache) Invalidate(ctx context.Context, userIDs ...domain.UserID) error {
	if len(userIDs) == 0 {
		return nil
	}
	if !c.allow() {
		return sentinel.ErrUnavailable
	}
	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = unreadKey(id)
	}
	err := c.client.Del(ctx, keys...).Err()
	c.record(err)
	return err
}

func (c *RedisCache) allow() bool {
	return c.breaker == nil || c.breaker.Allow()
}

func (c *RedisCache) record(err error) {
	if c.breaker == nil {
		return
	}
	if err != nil {
		c.breaker.RecordFailure()
		return
	}
	c.breaker.RecordSuccess()
}
