package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"hiretrack/internal/candidate/models"
	"hiretrack/internal/candidate/service"
	"hiretrack/internal/candidate/store"
	identitystore "hiretrack/internal/identity/store"
	"hiretrack/pkg/domain"
	"hiretrack/pkg/platform/tx"
	"hiretrack/pkg/testutil"
)

type noApplications struct{}

func (noApplications) DeleteByCandidate(context.Context, domain.CandidateID) (int, error) {
	return 0, nil
}

type CandidateHandlerSuite struct {
	suite.Suite
	router http.Handler
	svc    *service.Service
	hr     domain.Actor
}

func TestCandidateHandlerSuite(t *testing.T) {
	suite.Run(t, new(CandidateHandlerSuite))
}

func (s *CandidateHandlerSuite) SetupTest() {
	s.svc = service.New(store.NewInMemory(), noApplications{}, identitystore.NewInMemory(), tx.NewMemoryManager())
	r := chi.NewRouter()
	New(s.svc, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(r)
	s.router = r
	s.hr = testutil.HR(1)
}

func (s *CandidateHandlerSuite) seed(email string) *models.Candidate {
	ctx := testutil.ActorContext(s.hr, time.Now())
	c, err := s.svc.Create(ctx, s.hr, &models.CreateCandidateRequest{FirstName: "Ada", LastName: "L", Email: email})
	s.Require().NoError(err)
	return c
}

func (s *CandidateHandlerSuite) TestCreateAndList() {
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/candidates",
		map[string]any{"first_name": "Grace", "last_name": "Hopper", "email": "grace@example.com"})
	rr := testutil.DoRequest(s.router, testutil.WithActor(req, s.hr))
	testutil.AssertStatus(s.T(), rr, http.StatusCreated)

	rr = testutil.DoRequest(s.router, testutil.WithActor(testutil.NewRequest(s.T(), http.MethodGet, "/candidates"), s.hr))
	testutil.AssertStatusOK(s.T(), rr)
	testutil.AssertJSONContains(s.T(), rr, "count", float64(1))
}

func (s *CandidateHandlerSuite) TestCandidateCannotReadOthers() {
	own := s.seed("own@example.com")
	other := s.seed("other@example.com")
	me := testutil.Candidate(7, own.ID)

	rr := testutil.DoRequest(s.router, testutil.WithActor(
		testutil.NewRequest(s.T(), http.MethodGet, "/candidates/"+own.ID.String()), me))
	testutil.AssertStatusOK(s.T(), rr)

	rr = testutil.DoRequest(s.router, testutil.WithActor(
		testutil.NewRequest(s.T(), http.MethodGet, "/candidates/"+other.ID.String()), me))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
}

func (s *CandidateHandlerSuite) TestResumeRoutes() {
	own := s.seed("own@example.com")
	me := testutil.Candidate(7, own.ID)
	path := "/candidates/" + own.ID.String() + "/resume"

	req := testutil.NewJSONRequest(s.T(), http.MethodPut, path, map[string]any{"resume_ref": "blob://r/1"})
	rr := testutil.DoRequest(s.router, testutil.WithActor(req, me))
	testutil.AssertStatusOK(s.T(), rr)
	testutil.AssertJSONContains(s.T(), rr, "resume_ref", "blob://r/1")

	req = testutil.NewJSONRequest(s.T(), http.MethodPut, path, map[string]any{"resume_ref": ""})
	rr = testutil.DoRequest(s.router, testutil.WithActor(req, me))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")

	rr = testutil.DoRequest(s.router, testutil.WithActor(testutil.NewRequest(s.T(), http.MethodDelete, path), me))
	testutil.AssertStatusOK(s.T(), rr)
}

func (s *CandidateHandlerSuite) TestDelete() {
	c := s.seed("gone@example.com")
	path := "/candidates/" + c.ID.String()

	rr := testutil.DoRequest(s.router, testutil.WithActor(testutil.NewRequest(s.T(), http.MethodDelete, path), testutil.Manager(2)))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusForbidden, "forbidden")

	rr = testutil.DoRequest(s.router, testutil.WithActor(testutil.NewRequest(s.T(), http.MethodDelete, path), s.hr))
	testutil.AssertStatus(s.T(), rr, http.StatusNoContent)
}
