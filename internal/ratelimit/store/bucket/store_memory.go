// Package bucket implements sliding-window request counters.
package bucket

import (
	"context"
	"math"
	"sync"
	"time"

	"hiretrack/internal/ratelimit/models"
)

// InMemoryBucketStore keeps a sliding window of timestamps per key. It is
// process-local; use RedisBucketStore when several instances share limits.
type InMemoryBucketStore struct {
	mu      sync.Mutex
	buckets map[string][]time.Time
	now     func() time.Time
}

type MemoryOption func(*InMemoryBucketStore)

func WithClock(now func() time.Time) MemoryOption {
	return func(s *InMemoryBucketStore) {
		s.now = now
	}
}

func NewInMemoryBucketStore(opts ...MemoryOption) *InMemoryBucketStore {
	s := &InMemoryBucketStore{
		buckets: make(map[string][]time.Time),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Allow records one request against key if the window has room.
func (s *InMemoryBucketStore) Allow(_ context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	stamps := prune(s.buckets[key], now.Add(-window))

	if len(stamps) >= limit {
		s.buckets[key] = stamps
		resetAt := now.Add(window)
		if len(stamps) > 0 {
			resetAt = stamps[0].Add(window)
		}
		return &models.RateLimitResult{
			Allowed:    false,
			Limit:      limit,
			Remaining:  0,
			ResetAt:    resetAt,
			RetryAfter: retryAfter(resetAt.Sub(now)),
		}, nil
	}

	stamps = append(stamps, now)
	s.buckets[key] = stamps
	return &models.RateLimitResult{
		Allowed:   true,
		Limit:     limit,
		Remaining: limit - len(stamps),
		ResetAt:   stamps[0].Add(window),
	}, nil
}

// Reset clears the counter for key.
func (s *InMemoryBucketStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.buckets, key)
	return nil
}

// prune drops timestamps at or before cutoff. Timestamps are appended in
// order so the kept ones are a suffix.
func prune(stamps []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for ; i < len(stamps); i++ {
		if stamps[i].After(cutoff) {
			break
		}
	}
	return stamps[i:]
}

func retryAfter(d time.Duration) int {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}
