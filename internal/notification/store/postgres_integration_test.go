//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"hiretrack/internal/notification/models"
	"hiretrack/internal/notification/store"
	"hiretrack/pkg/domain"
	"hiretrack/pkg/platform/sentinel"
	"hiretrack/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateAll(context.Background()))
}

func (s *PostgresStoreSuite) insertUser(name string) domain.UserID {
	var id domain.UserID
	s.Require().NoError(s.postgres.DB.QueryRow(`
		INSERT INTO users (username, password_hash, role, created_at)
		VALUES ($1, 'x', 'CANDIDATE', now()) RETURNING id`, name).Scan(&id))
	return id
}

func (s *PostgresStoreSuite) insertJob() domain.JobID {
	var id domain.JobID
	s.Require().NoError(s.postgres.DB.QueryRow(
		`INSERT INTO jobs (title, created_at) VALUES ('Ops', now()) RETURNING id`).Scan(&id))
	return id
}

func (s *PostgresStoreSuite) TestCreateManyBatch() {
	ctx := context.Background()
	jobID := s.insertJob()
	now := time.Now().UTC().Truncate(time.Microsecond)

	var batch []*models.Notification
	var users []domain.UserID
	for _, name := range []string{"a", "b", "c"} {
		uid := s.insertUser(name)
		users = append(users, uid)
		n, err := models.NewNotification(uid, models.TypeNewJob, "New job: Ops", "msg", now)
		s.Require().NoError(err)
		n.JobID = &jobID
		batch = append(batch, n)
	}
	s.Require().NoError(s.store.CreateMany(ctx, batch))

	for i, n := range batch {
		s.NotZero(n.ID)
		found, err := s.store.FindByID(ctx, n.ID)
		s.Require().NoError(err)
		s.Equal(users[i], found.UserID)
		s.Require().NotNil(found.JobID)
		s.Equal(jobID, *found.JobID)
		s.Nil(found.ApplicationID)
		s.True(now.Equal(found.CreatedAt))
	}
}

func (s *PostgresStoreSuite) TestReadState() {
	ctx := context.Background()
	uid := s.insertUser("reader")
	base := time.Now().UTC().Truncate(time.Microsecond)
	var batch []*models.Notification
	for i := 0; i < 3; i++ {
		n, err := models.NewNotification(uid, models.TypeApplicationUpdate, "t", "m", base.Add(time.Duration(i)*time.Second))
		s.Require().NoError(err)
		batch = append(batch, n)
	}
	s.Require().NoError(s.store.CreateMany(ctx, batch))

	list, err := s.store.ListByUser(ctx, uid, false)
	s.Require().NoError(err)
	s.Require().Len(list, 3)
	s.Equal(batch[2].ID, list[0].ID, "newest first")

	_, err = s.store.Execute(ctx, batch[0].ID,
		func(*models.Notification) error { return nil },
		func(n *models.Notification) { n.MarkRead(base) })
	s.Require().NoError(err)

	count, err := s.store.CountUnread(ctx, uid)
	s.Require().NoError(err)
	s.Equal(2, count)

	changed, err := s.store.MarkAllRead(ctx, uid, base)
	s.Require().NoError(err)
	s.Equal(2, changed)

	unread, err := s.store.ListByUser(ctx, uid, true)
	s.Require().NoError(err)
	s.Empty(unread)

	_, err = s.store.FindByID(ctx, 9999)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestDeletingJobKeepsNotification() {
	ctx := context.Background()
	uid := s.insertUser("keeper")
	jobID := s.insertJob()
	n, err := models.NewNotification(uid, models.TypeNewJob, "t", "m", time.Now().UTC())
	s.Require().NoError(err)
	n.JobID = &jobID
	s.Require().NoError(s.store.CreateMany(ctx, []*models.Notification{n}))

	_, err = s.postgres.DB.ExecContext(ctx, `DELETE FROM jobs WHERE id = $1`, jobID)
	s.Require().NoError(err)

	found, err := s.store.FindByID(ctx, n.ID)
	s.Require().NoError(err)
	s.Nil(found.JobID)
}
