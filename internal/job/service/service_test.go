package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	appmodels "hiretrack/internal/application/models"
	appstore "hiretrack/internal/application/store"
	"hiretrack/internal/audit"
	"hiretrack/internal/job/models"
	"hiretrack/internal/job/store"
	"hiretrack/internal/platform/metrics"
	"hiretrack/pkg/domain"
	dErrors "hiretrack/pkg/domain-errors"
	"hiretrack/pkg/platform/tx"
	"hiretrack/pkg/testutil"
)

type stubNotifier struct {
	recipients  []domain.UserID
	err         error
	posted      []domain.JobID
	invalidated []domain.UserID
}

func (n *stubNotifier) NotifyJobPosted(_ context.Context, job *models.Job) ([]domain.UserID, error) {
	if n.err != nil {
		return nil, n.err
	}
	n.posted = append(n.posted, job.ID)
	return n.recipients, nil
}

func (n *stubNotifier) InvalidateUnread(_ context.Context, ids ...domain.UserID) {
	n.invalidated = append(n.invalidated, ids...)
}

type JobServiceSuite struct {
	suite.Suite
	store    *store.InMemory
	apps     *appstore.InMemory
	notifier *stubNotifier
	sink     *audit.MemorySink
	metrics  *metrics.Metrics
	svc      *Service
	ctx      context.Context
	hr       domain.Actor
}

func TestJobServiceSuite(t *testing.T) {
	suite.Run(t, new(JobServiceSuite))
}

func (s *JobServiceSuite) SetupTest() {
	s.store = store.NewInMemory()
	s.apps = appstore.NewInMemory()
	s.notifier = &stubNotifier{recipients: []domain.UserID{4, 5}}
	s.sink = audit.NewMemorySink()
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.svc = New(s.store, s.apps, s.notifier, tx.NewMemoryManager(),
		WithAuditPublisher(audit.NewSyncPublisher(s.sink)),
		WithMetrics(s.metrics),
	)
	s.hr = testutil.HR(1)
	s.ctx = testutil.ActorContext(s.hr, time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC))
}

func (s *JobServiceSuite) TestPost() {
	s.Run("creates the job and fans out", func() {
		job, err := s.svc.Post(s.ctx, s.hr, &models.PostJobRequest{Title: "Data Engineer"})
		s.Require().NoError(err)
		s.Equal("Engineering", job.Department)
		s.Equal(1, job.Positions)
		s.Equal([]domain.JobID{job.ID}, s.notifier.posted)
		s.Equal([]domain.UserID{4, 5}, s.notifier.invalidated)
		s.Equal(float64(1), promtestutil.ToFloat64(s.metrics.JobsPosted))
		s.Require().Len(s.sink.Events(), 1)
		s.Equal(audit.EventJobPosted, s.sink.Events()[0].Action)
	})

	s.Run("candidates cannot post", func() {
		_, err := s.svc.Post(s.ctx, testutil.Candidate(9, 1), &models.PostJobRequest{Title: "Nope"})
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("invalid input is a validation error", func() {
		zero := 0
		_, err := s.svc.Post(s.ctx, s.hr, &models.PostJobRequest{Title: "Ops", Positions: &zero})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *JobServiceSuite) TestPostRollsBackWhenFanOutFails() {
	s.notifier.err = errors.New("insert failed")
	_, err := s.svc.Post(s.ctx, s.hr, &models.PostJobRequest{Title: "Ghost"})
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))

	jobs, err := s.store.List(context.Background(), "")
	s.Require().NoError(err)
	s.Empty(jobs)
	s.Empty(s.notifier.invalidated)
}

func (s *JobServiceSuite) TestUpdateAndGet() {
	job, err := s.svc.Post(s.ctx, s.hr, &models.PostJobRequest{Title: "Ops"})
	s.Require().NoError(err)

	dept := "Operations"
	updated, err := s.svc.Update(s.ctx, testutil.Manager(2), job.ID, &models.UpdateJobRequest{Department: &dept})
	s.Require().NoError(err)
	s.Equal("Operations", updated.Department)
	s.Len(s.notifier.posted, 1, "updates never notify")

	got, err := s.svc.Get(s.ctx, testutil.Candidate(3, 0), job.ID)
	s.Require().NoError(err)
	s.Equal("Operations", got.Department)

	_, err = s.svc.Get(s.ctx, s.hr, 999)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	_, err = s.svc.Update(s.ctx, testutil.Candidate(3, 1), job.ID, &models.UpdateJobRequest{Department: &dept})
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
}

func (s *JobServiceSuite) TestListFiltersByDepartment() {
	for _, req := range []*models.PostJobRequest{
		{Title: "Backend", Department: "Engineering"},
		{Title: "Account Exec", Department: "Sales"},
	} {
		_, err := s.svc.Post(s.ctx, s.hr, req)
		s.Require().NoError(err)
	}
	list, err := s.svc.List(s.ctx, s.hr, "sales")
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal("Account Exec", list[0].Title)
}

func (s *JobServiceSuite) TestDelete() {
	job, err := s.svc.Post(s.ctx, s.hr, &models.PostJobRequest{Title: "Ops"})
	s.Require().NoError(err)
	other, err := s.svc.Post(s.ctx, s.hr, &models.PostJobRequest{Title: "Sales"})
	s.Require().NoError(err)
	now := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	for _, jobID := range []domain.JobID{job.ID, job.ID, other.ID} {
		a, err := appmodels.NewApplication(1, jobID, "", now, now)
		s.Require().NoError(err)
		s.Require().NoError(s.apps.Create(context.Background(), a))
	}

	s.Run("managers cannot delete", func() {
		err := s.svc.Delete(s.ctx, testutil.Manager(2), job.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("removes the job and its applications", func() {
		s.Require().NoError(s.svc.Delete(s.ctx, s.hr, job.ID))

		_, err := s.svc.Get(s.ctx, s.hr, job.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		left, err := s.apps.List(context.Background(), appmodels.Filter{})
		s.Require().NoError(err)
		s.Require().Len(left, 1)
		s.Equal(other.ID, left[0].JobID)

		events := s.sink.Events()
		s.Equal(audit.EventJobDeleted, events[len(events)-1].Action)
	})

	s.Run("missing job is not found", func() {
		err := s.svc.Delete(s.ctx, s.hr, job.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
