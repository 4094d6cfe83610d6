package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hiretrack/internal/platform/metrics"
	"hiretrack/internal/ratelimit/models"
	"hiretrack/internal/ratelimit/store/bucket"
	"hiretrack/pkg/requestcontext"
)

type failingStore struct{}

func (failingStore) Allow(context.Context, string, int, time.Duration) (*models.RateLimitResult, error) {
	return nil, errors.New("redis down")
}

func limitedHandler(m *Middleware) http.Handler {
	return m.RateLimit(models.ClassAuth)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
}

func serve(h http.Handler, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req = req.WithContext(requestcontext.WithClientMetadata(req.Context(), ip, "test"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimit(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	t.Run("rejects the request past the limit", func(t *testing.T) {
		m := metrics.New(prometheus.NewRegistry())
		h := limitedHandler(New(bucket.NewInMemoryBucketStore(), 2, time.Minute, logger, WithMetrics(m)))

		first := serve(h, "10.0.0.1")
		assert.Equal(t, http.StatusNoContent, first.Code)
		assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, first.Header().Get("X-RateLimit-Reset"))

		assert.Equal(t, http.StatusNoContent, serve(h, "10.0.0.1").Code)

		denied := serve(h, "10.0.0.1")
		require.Equal(t, http.StatusTooManyRequests, denied.Code)
		assert.Equal(t, "60", denied.Header().Get("Retry-After"))
		assert.Contains(t, denied.Body.String(), `"error":"rate_limit_exceeded"`)
		assert.InDelta(t, 1, testutil.ToFloat64(m.RateLimited.WithLabelValues("auth")), 0)

		assert.Equal(t, http.StatusNoContent, serve(h, "10.0.0.2").Code, "other clients keep their own window")
	})

	t.Run("store failure lets requests through", func(t *testing.T) {
		h := limitedHandler(New(failingStore{}, 1, time.Minute, logger))
		for range 3 {
			rec := serve(h, "10.0.0.1")
			assert.Equal(t, http.StatusNoContent, rec.Code)
			assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
		}
	})

	t.Run("disabled is a pass-through", func(t *testing.T) {
		h := limitedHandler(New(bucket.NewInMemoryBucketStore(), 1, time.Minute, logger, WithDisabled(true)))
		for range 3 {
			assert.Equal(t, http.StatusNoContent, serve(h, "10.0.0.1").Code)
		}
	})
}
