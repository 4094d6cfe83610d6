package bucket

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

const (
	testLimit  = 3
	testWindow = time.Minute
)

type InMemoryBucketStoreSuite struct {
	suite.Suite
	store *InMemoryBucketStore
	now   time.Time
	ctx   context.Context
}

func TestInMemoryBucketStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryBucketStoreSuite))
}

func (s *InMemoryBucketStoreSuite) SetupTest() {
	s.now = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	s.store = NewInMemoryBucketStore(WithClock(func() time.Time { return s.now }))
	s.ctx = context.Background()
}

func (s *InMemoryBucketStoreSuite) TestAllow() {
	s.Run("counts down remaining", func() {
		result, err := s.store.Allow(s.ctx, "k:countdown", testLimit, testWindow)
		s.Require().NoError(err)
		s.True(result.Allowed)
		s.Equal(testLimit, result.Limit)
		s.Equal(testLimit-1, result.Remaining)
		s.Equal(s.now.Add(testWindow), result.ResetAt)
	})

	s.Run("denies over the limit with retry after", func() {
		for range testLimit {
			result, err := s.store.Allow(s.ctx, "k:over", testLimit, testWindow)
			s.Require().NoError(err)
			s.True(result.Allowed)
		}
		result, err := s.store.Allow(s.ctx, "k:over", testLimit, testWindow)
		s.Require().NoError(err)
		s.False(result.Allowed)
		s.Zero(result.Remaining)
		s.Equal(60, result.RetryAfter)
	})

	s.Run("keys are independent", func() {
		for range testLimit {
			_, err := s.store.Allow(s.ctx, "k:a", testLimit, testWindow)
			s.Require().NoError(err)
		}
		result, err := s.store.Allow(s.ctx, "k:b", testLimit, testWindow)
		s.Require().NoError(err)
		s.True(result.Allowed)
	})
}

func (s *InMemoryBucketStoreSuite) TestWindowSlides() {
	for range testLimit {
		_, err := s.store.Allow(s.ctx, "k:slide", testLimit, testWindow)
		s.Require().NoError(err)
		s.now = s.now.Add(20 * time.Second)
	}

	// the first request is now exactly one window old and drops out
	result, err := s.store.Allow(s.ctx, "k:slide", testLimit, testWindow)
	s.Require().NoError(err)
	s.True(result.Allowed)

	result, err = s.store.Allow(s.ctx, "k:slide", testLimit, testWindow)
	s.Require().NoError(err)
	s.False(result.Allowed)
	s.Equal(20, result.RetryAfter)
}

func (s *InMemoryBucketStoreSuite) TestReset() {
	for range testLimit {
		_, err := s.store.Allow(s.ctx, "k:reset", testLimit, testWindow)
		s.Require().NoError(err)
	}
	s.Require().NoError(s.store.Reset(s.ctx, "k:reset"))

	result, err := s.store.Allow(s.ctx, "k:reset", testLimit, testWindow)
	s.Require().NoError(err)
	s.True(result.Allowed)
}

func (s *InMemoryBucketStoreSuite) TestConcurrentCallersNeverExceedLimit() {
	const callers = 50
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := s.store.Allow(s.ctx, "k:race", 10, testWindow)
			if err == nil && result.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	s.Equal(10, allowed)
}
