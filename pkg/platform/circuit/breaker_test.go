package circuit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestBreaker(opts ...Option) (*Breaker, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	return New("redis-unread", append([]Option{WithClock(clock.Now)}, opts...)...), clock
}

func TestNewBreakerStartsClosed(t *testing.T) {
	b, _ := newTestBreaker()
	assert.Equal(t, "redis-unread", b.Name())
	assert.Equal(t, StateClosed, b.State())
	assert.False(t, b.IsOpen())
	assert.True(t, b.Allow())
}

func TestRecordFailure(t *testing.T) {
	t.Run("opens on the threshold failure only", func(t *testing.T) {
		b, _ := newTestBreaker(WithFailureThreshold(3))
		for i := 1; i <= 2; i++ {
			useFallback, change := b.RecordFailure()
			assert.False(t, useFallback, "failure %d", i)
			assert.Equal(t, Change{}, change)
		}
		useFallback, change := b.RecordFailure()
		assert.True(t, useFallback)
		assert.Equal(t, Change{Opened: true}, change)

		useFallback, change = b.RecordFailure()
		assert.True(t, useFallback)
		assert.Equal(t, Change{}, change, "already open")
	})

	t.Run("a success in between restarts the count", func(t *testing.T) {
		b, _ := newTestBreaker(WithFailureThreshold(2))
		b.RecordFailure()
		b.RecordSuccess()
		b.RecordFailure()
		assert.False(t, b.IsOpen())
		b.RecordFailure()
		assert.True(t, b.IsOpen())
	})

	t.Run("non-positive thresholds keep the default", func(t *testing.T) {
		b, _ := newTestBreaker(WithFailureThreshold(0))
		for range 4 {
			b.RecordFailure()
		}
		assert.False(t, b.IsOpen())
		b.RecordFailure()
		assert.True(t, b.IsOpen())
	})
}

func TestRecordSuccessWhileOpen(t *testing.T) {
	b, _ := newTestBreaker(WithFailureThreshold(1), WithSuccessThreshold(2))
	b.RecordFailure()
	require.True(t, b.IsOpen())

	usePrimary, change := b.RecordSuccess()
	assert.False(t, usePrimary)
	assert.Equal(t, Change{}, change)

	// a failure between checks discards the partial recovery
	b.RecordFailure()
	usePrimary, _ = b.RecordSuccess()
	assert.False(t, usePrimary)

	usePrimary, change = b.RecordSuccess()
	assert.True(t, usePrimary)
	assert.Equal(t, Change{Closed: true}, change)
	assert.Equal(t, StateClosed, b.State())
}

func TestAllowTrialsOncePerCooldown(t *testing.T) {
	b, clock := newTestBreaker(WithFailureThreshold(1), WithCooldown(time.Second))

	b.RecordFailure()
	assert.False(t, b.Allow())

	clock.Advance(time.Second)
	assert.True(t, b.Allow())
	assert.False(t, b.Allow(), "second caller in the same window stays on the fallback")

	b.RecordFailure()
	clock.Advance(500 * time.Millisecond)
	assert.False(t, b.Allow())
	clock.Advance(500 * time.Millisecond)
	assert.True(t, b.Allow())

	_, change := b.RecordSuccess()
	assert.True(t, change.Closed)
	assert.True(t, b.Allow())
	assert.Equal(t, "closed", b.State().String())
}

func TestReset(t *testing.T) {
	b, _ := newTestBreaker(WithFailureThreshold(1))
	b.RecordFailure()
	require.True(t, b.IsOpen())

	b.Reset()
	assert.Equal(t, "closed", b.State().String())
	assert.True(t, b.Allow())
}

func TestConcurrentFailuresOpenOnce(t *testing.T) {
	b, _ := newTestBreaker(WithFailureThreshold(10))

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		opened int
	)
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, change := b.RecordFailure(); change.Opened {
				mu.Lock()
				opened++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, opened)
	assert.Equal(t, "open", b.State().String())
}
