//go:build integration

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"hiretrack/internal/notification/cache"
	"hiretrack/pkg/domain"
	"hiretrack/pkg/testutil/containers"
)

type RedisCacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	cache *cache.RedisCache
}

func TestRedisCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisCacheSuite))
}

func (s *RedisCacheSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.cache = cache.NewRedis(s.redis.Client, cache.WithTTL(time.Minute))
}

func (s *RedisCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisCacheSuite) TestMissSetHit() {
	ctx := context.Background()

	_, ok, err := s.cache.GetUnread(ctx, 1)
	s.Require().NoError(err)
	s.False(ok)

	s.Require().NoError(s.cache.SetUnread(ctx, 1, 4))
	count, ok, err := s.cache.GetUnread(ctx, 1)
	s.Require().NoError(err)
	s.True(ok)
	s.Equal(4, count)

	ttl, err := s.redis.Client.TTL(ctx, "notif:unread:1").Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))
	s.LessOrEqual(ttl, time.Minute)
}

func (s *RedisCacheSuite) TestInvalidateMany() {
	ctx := context.Background()
	for _, id := range []domain.UserID{1, 2, 3} {
		s.Require().NoError(s.cache.SetUnread(ctx, id, int(id)))
	}

	s.Require().NoError(s.cache.Invalidate(ctx, 1, 3))

	_, ok, _ := s.cache.GetUnread(ctx, 1)
	s.False(ok)
	count, ok, _ := s.cache.GetUnread(ctx, 2)
	s.True(ok)
	s.Equal(2, count)
	_, ok, _ = s.cache.GetUnread(ctx, 3)
	s.False(ok)

	s.NoError(s.cache.Invalidate(ctx))
}
