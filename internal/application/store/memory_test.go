package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hiretrack/internal/application/models"
	"hiretrack/pkg/domain"
	"hiretrack/pkg/platform/tx"
)

func day(d int) time.Time {
	return time.Date(2026, 4, d, 0, 0, 0, 0, time.UTC)
}

func seed(t *testing.T, s *InMemory, cid domain.CandidateID, jid domain.JobID, date time.Time, st models.Status) *models.Application {
	t.Helper()
	a, err := models.NewApplication(cid, jid, "", date, date)
	require.NoError(t, err)
	a.Status = st
	require.NoError(t, s.Create(context.Background(), a))
	return a
}

func ids(apps []*models.Application) []domain.ApplicationID {
	out := make([]domain.ApplicationID, len(apps))
	for i, a := range apps {
		out[i] = a.ID
	}
	return out
}

func TestInMemoryListOrderingAndFilters(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	a1 := seed(t, s, 1, 10, day(1), models.StatusReceived)
	a2 := seed(t, s, 2, 10, day(3), models.StatusInterview)
	a3 := seed(t, s, 1, 11, day(3), models.StatusReceived)
	a4 := seed(t, s, 2, 11, day(2), models.StatusRejected)

	all, err := s.List(ctx, models.Filter{})
	require.NoError(t, err)
	assert.Equal(t, []domain.ApplicationID{a2.ID, a3.ID, a4.ID, a1.ID}, ids(all), "date desc, id asc on ties")

	cid := domain.CandidateID(1)
	received := models.StatusReceived
	got, err := s.List(ctx, models.Filter{CandidateID: &cid, Status: &received})
	require.NoError(t, err)
	assert.Equal(t, []domain.ApplicationID{a3.ID, a1.ID}, ids(got))

	got, err = s.List(ctx, models.Filter{JobIDs: []domain.JobID{11}})
	require.NoError(t, err)
	assert.Equal(t, []domain.ApplicationID{a3.ID, a4.ID}, ids(got))

	got, err = s.List(ctx, models.Filter{JobIDs: []domain.JobID{}})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestInMemoryExists(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	seed(t, s, 1, 10, day(5), models.StatusReceived)

	ok, err := s.Exists(ctx, 1, 10, day(5).Add(15*time.Hour))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Exists(ctx, 1, 10, day(6))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInMemoryDeleteByCandidateRollsBack(t *testing.T) {
	s := NewInMemory()
	seed(t, s, 1, 10, day(1), models.StatusReceived)
	seed(t, s, 1, 11, day(2), models.StatusReceived)
	seed(t, s, 2, 10, day(2), models.StatusReceived)

	err := tx.NewMemoryManager().RunInTx(context.Background(), func(txCtx context.Context) error {
		n, err := s.DeleteByCandidate(txCtx, 1)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		return errors.New("abort")
	})
	require.Error(t, err)

	all, _ := s.List(context.Background(), models.Filter{})
	assert.Len(t, all, 3)

	n, err := s.DeleteByCandidate(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestInMemoryDeleteByJob(t *testing.T) {
	s := NewInMemory()
	seed(t, s, 1, 10, day(1), models.StatusReceived)
	seed(t, s, 2, 10, day(2), models.StatusReceived)
	seed(t, s, 1, 11, day(2), models.StatusReceived)

	n, err := s.DeleteByJob(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	left, _ := s.List(context.Background(), models.Filter{})
	require.Len(t, left, 1)
	assert.Equal(t, domain.JobID(11), left[0].JobID)
}
