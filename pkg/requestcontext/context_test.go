package requestcontext

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"hiretrack/pkg/domain"
)

func TestTodayTruncatesToUTCDate(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	ctx := WithTime(context.Background(), time.Date(2026, 3, 2, 1, 30, 0, 0, loc))

	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), Today(ctx))
}

func TestActorRoundTrip(t *testing.T) {
	_, ok := Actor(context.Background())
	assert.False(t, ok)

	ctx := WithActor(context.Background(), domain.Actor{UserID: 3, Role: domain.RoleHR})
	actor, ok := Actor(ctx)
	assert.True(t, ok)
	assert.Equal(t, domain.RoleHR, actor.Role)
}
