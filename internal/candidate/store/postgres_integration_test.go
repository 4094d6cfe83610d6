//go:build integration

package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"hiretrack/internal/candidate/models"
	"hiretrack/internal/candidate/store"
	"hiretrack/internal/platform/postgres"
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

func (s *PostgresStoreSuite) create(first, email string) *models.Candidate {
	c, err := models.NewCandidate(first, "Tester", email, "", time.Now().UTC())
	s.Require().NoError(err)
	s.Require().NoError(s.store.Create(context.Background(), c))
	return c
}

func (s *PostgresStoreSuite) TestEmailIsUniqueIgnoringCase() {
	ctx := context.Background()
	ada := s.create("Ada", "ada@example.com")

	found, err := s.store.FindByEmail(ctx, "ADA@example.com")
	s.Require().NoError(err)
	s.Equal(ada.ID, found.ID)

	dup, err := models.NewCandidate("Other", "Person", "ada@example.com", "", time.Now().UTC())
	s.Require().NoError(err)
	s.ErrorIs(s.store.Create(ctx, dup), sentinel.ErrAlreadyUsed)
}

func (s *PostgresStoreSuite) TestFindByIDsAndFirst() {
	ctx := context.Background()
	a := s.create("Ada", "a@example.com")
	b := s.create("Grace", "g@example.com")

	byID, err := s.store.FindByIDs(ctx, []domain.CandidateID{a.ID, b.ID, 9999})
	s.Require().NoError(err)
	s.Len(byID, 2)
	s.Equal("Grace", byID[b.ID].FirstName)

	first, err := s.store.First(ctx)
	s.Require().NoError(err)
	s.Equal(a.ID, first.ID)
}

func (s *PostgresStoreSuite) TestExecuteValidationLeavesRowUntouched() {
	ctx := context.Background()
	c := s.create("Ada", "ada@example.com")
	rejected := errors.New("rejected")

	_, err := s.store.Execute(ctx, c.ID,
		func(*models.Candidate) error { return rejected },
		func(c *models.Candidate) { c.Phone = "555" },
	)
	s.ErrorIs(err, rejected)

	got, err := s.store.FindByID(ctx, c.ID)
	s.Require().NoError(err)
	s.Empty(got.Phone)

	updated, err := s.store.Execute(ctx, c.ID,
		func(*models.Candidate) error { return nil },
		func(c *models.Candidate) { c.ApplyResume("resumes/ada.pdf", time.Now().UTC()) },
	)
	s.Require().NoError(err)
	s.Require().NotNil(updated.ResumeRef)
	s.Equal("resumes/ada.pdf", *updated.ResumeRef)
}

func (s *PostgresStoreSuite) TestRollbackDiscardsCreate() {
	ctx := context.Background()
	txm := postgres.NewTxManager(s.postgres.DB, 5*time.Second)
	boom := errors.New("boom")

	err := txm.RunInTx(ctx, func(txCtx context.Context) error {
		c, err := models.NewCandidate("Ghost", "Row", "ghost@example.com", "", time.Now().UTC())
		s.Require().NoError(err)
		s.Require().NoError(s.store.Create(txCtx, c))
		return boom
	})
	s.ErrorIs(err, boom)

	_, err = s.store.FindByEmail(ctx, "ghost@example.com")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestDelete() {
	ctx := context.Background()
	c := s.create("Ada", "ada@example.com")

	s.Require().NoError(s.store.Delete(ctx, c.ID))
	s.ErrorIs(s.store.Delete(ctx, c.ID), sentinel.ErrNotFound)
}
