//go:build integration

package containers

import (
	"context"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

const defaultRedisImage = "redis:7-alpine"

// RedisContainer is a running Redis plus a client connected to it. The
// container is shared by every suite in the package through the Manager.
type RedisContainer struct {
	Container testcontainers.Container
	URL       string
	Client    *redis.Client
}

// NewRedisContainer starts Redis. HIRETRACK_REDIS_IMAGE overrides the image.
func NewRedisContainer(t *testing.T) *RedisContainer {
	t.Helper()
	ctx := context.Background()

	image := defaultRedisImage
	if v := os.Getenv("HIRETRACK_REDIS_IMAGE"); v != "" {
		image = v
	}
	container, err := tcredis.Run(ctx, image)
	require.NoError(t, err, "start redis container")

	url, err := container.ConnectionString(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		require.NoError(t, err, "redis connection string")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		_ = container.Terminate(ctx)
		require.NoError(t, err, "parse redis url")
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		_ = container.Terminate(ctx)
		require.NoError(t, err, "ping redis")
	}
	return &RedisContainer{Container: container, URL: url, Client: client}
}

// FlushAll empties the database. Suites call it from SetupTest.
func (r *RedisContainer) FlushAll(ctx context.Context) error {
	return r.Client.FlushAll(ctx).Err()
}
