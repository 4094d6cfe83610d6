package importer

import (
	"context"
	"testing"
	"testing/fstest"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	appmodels "hiretrack/internal/application/models"
	appstore "hiretrack/internal/application/store"
	"hiretrack/internal/audit"
	candstore "hiretrack/internal/candidate/store"
	identitymodels "hiretrack/internal/identity/models"
	identityservice "hiretrack/internal/identity/service"
	identitystore "hiretrack/internal/identity/store"
	jobstore "hiretrack/internal/job/store"
	jwttoken "hiretrack/internal/jwt_token"
	"hiretrack/internal/platform/metrics"
	"hiretrack/pkg/domain"
	"hiretrack/pkg/requestcontext"
)

const (
	candidatesJSON = `[
		{"fName": "Ada", "lName": "Lovelace", "email": "ada@example.com", "phone": "555"},
		{"fName": "Alan", "lName": "Turing", "email": "alan@example.com"},
		{"fName": "", "lName": "Nobody", "email": "broken@example.com"}
	]`
	jobsJSON = `[
		{"title": "Backend Engineer", "description": "Go", "positions": 2, "department": "Engineering"},
		{"title": "Recruiter"}
	]`
	applicationsJSON = `[
		{"candidate_index": 0, "job_index": 0, "applicationDate": "2024-03-01", "status": "Interview"},
		{"candidate_index": 1, "job_index": 1, "applicationDate": "2024-03-02", "status": "Offer Extended"},
		{"candidate_index": 2, "job_index": 0, "applicationDate": "2024-03-03", "status": "Received"},
		{"candidate_index": 0, "job_index": 9, "applicationDate": "2024-03-04", "status": "Received"},
		{"candidate_index": 1, "job_index": 0, "applicationDate": "2024-03-05", "status": "Hired"}
	]`
)

type recordingSink struct {
	events []audit.Event
}

func (s *recordingSink) Write(_ context.Context, e audit.Event) error {
	s.events = append(s.events, e)
	return nil
}

type ImporterSuite struct {
	suite.Suite
	ctx          context.Context
	candidates   *candstore.InMemory
	jobs         *jobstore.InMemory
	applications *appstore.InMemory
	metrics      *metrics.Metrics
	sink         *recordingSink
	importer     *Importer
	data         fstest.MapFS
}

func TestImporterSuite(t *testing.T) {
	suite.Run(t, new(ImporterSuite))
}

func (s *ImporterSuite) SetupTest() {
	s.ctx = requestcontext.WithTime(context.Background(), time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC))
	s.candidates = candstore.NewInMemory()
	s.jobs = jobstore.NewInMemory()
	s.applications = appstore.NewInMemory()
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.sink = &recordingSink{}
	s.importer = New(s.candidates, s.jobs, s.applications,
		WithMetrics(s.metrics),
		WithAuditPublisher(audit.NewSyncPublisher(s.sink)),
	)
	s.data = fstest.MapFS{
		candidatesFile:   {Data: []byte(candidatesJSON)},
		jobsFile:         {Data: []byte(jobsJSON)},
		applicationsFile: {Data: []byte(applicationsJSON)},
	}
}

func (s *ImporterSuite) TestImportCountsOutcomes() {
	report, err := s.importer.RunFS(s.ctx, s.data, false)
	s.Require().NoError(err)

	s.Equal(Counts{Created: 2, Failed: 1}, report.Candidates)
	s.Equal(Counts{Created: 2}, report.Jobs)
	// index 2 and job 9 are unknown; "Hired" is not a status.
	s.Equal(Counts{Created: 2, Skipped: 2, Failed: 1}, report.Applications)

	apps, err := s.applications.List(s.ctx, appmodels.Filter{})
	s.Require().NoError(err)
	s.Require().Len(apps, 2)
	s.Equal(appmodels.StatusOfferExtended, apps[0].Status)
	s.Equal("2024-03-02", apps[0].ApplicationDate.Format(time.DateOnly))
	s.Equal(appmodels.StatusInterview, apps[1].Status)

	jobs, err := s.jobs.List(s.ctx, "")
	s.Require().NoError(err)
	s.Require().Len(jobs, 2)
	for _, j := range jobs {
		if j.Title == "Recruiter" {
			s.Equal(1, j.Positions)
			s.Equal("Engineering", j.Department)
			s.Nil(j.CreatedBy)
		}
	}

	s.Equal(2.0, promtestutil.ToFloat64(s.metrics.ImportRecords.WithLabelValues("application", "created")))
	s.Equal(2.0, promtestutil.ToFloat64(s.metrics.ImportRecords.WithLabelValues("application", "skipped")))
	s.Require().Len(s.sink.events, 1)
	s.Equal(audit.EventImportCompleted, s.sink.events[0].Action)
}

func (s *ImporterSuite) TestRerunSkipsExistingRecords() {
	_, err := s.importer.RunFS(s.ctx, s.data, false)
	s.Require().NoError(err)

	report, err := s.importer.RunFS(s.ctx, s.data, false)
	s.Require().NoError(err)

	s.Equal(2, report.Candidates.Skipped)
	s.Equal(0, report.Candidates.Created)
	// jobs are always inserted, so the new job ids make the applications new
	s.Equal(2, report.Jobs.Created)
	s.Equal(2, report.Applications.Created)
}

func (s *ImporterSuite) TestDuplicateApplicationsInOneFileAreSkipped() {
	s.data[applicationsFile] = &fstest.MapFile{Data: []byte(`[
		{"candidate_index": 0, "job_index": 0, "applicationDate": "2024-03-01", "status": "Received"},
		{"candidate_index": 0, "job_index": 0, "applicationDate": "2024-03-01", "status": "Rejected"}
	]`)}

	report, err := s.importer.RunFS(s.ctx, s.data, false)
	s.Require().NoError(err)
	s.Equal(Counts{Created: 1, Skipped: 1}, report.Applications)
}

func (s *ImporterSuite) TestClearReplacesData() {
	_, err := s.importer.RunFS(s.ctx, s.data, false)
	s.Require().NoError(err)

	report, err := s.importer.RunFS(s.ctx, s.data, true)
	s.Require().NoError(err)
	s.Equal(2, report.Candidates.Created)

	all, err := s.candidates.List(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 2)
	jobs, err := s.jobs.List(s.ctx, "")
	s.Require().NoError(err)
	s.Len(jobs, 2)
}

func (s *ImporterSuite) TestMissingFileAborts() {
	delete(s.data, jobsFile)
	_, err := s.importer.RunFS(s.ctx, s.data, true)
	s.Require().ErrorContains(err, jobsFile)

	all, err := s.candidates.List(s.ctx)
	s.Require().NoError(err)
	s.Empty(all)
}

func TestSeedDemoUsers(t *testing.T) {
	ctx := requestcontext.WithTime(context.Background(), time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC))
	candidates := candstore.NewInMemory()
	users := identitystore.NewInMemory()
	identity := identityservice.New(users, candidates, jwttoken.NewJWTService("key", "hiretrack"))

	_, err := New(candidates, jobstore.NewInMemory(), appstore.NewInMemory()).
		RunFS(ctx, fstest.MapFS{
			candidatesFile:   {Data: []byte(candidatesJSON)},
			jobsFile:         {Data: []byte(`[]`)},
			applicationsFile: {Data: []byte(`[]`)},
		}, false)
	require.NoError(t, err)

	seeded, err := SeedDemoUsers(ctx, identity, candidates, nil)
	require.NoError(t, err)
	require.Len(t, seeded, 3)
	require.Equal(t, domain.RoleHR, seeded[0].Role)
	require.Equal(t, domain.RoleManager, seeded[1].Role)

	first, err := candidates.First(ctx)
	require.NoError(t, err)
	require.NotNil(t, seeded[2].CandidateID)
	require.Equal(t, first.ID, *seeded[2].CandidateID)

	again, err := SeedDemoUsers(ctx, identity, candidates, nil)
	require.NoError(t, err)
	for i := range seeded {
		require.Equal(t, seeded[i].ID, again[i].ID)
	}

	_, err = identity.Login(ctx, &identitymodels.LoginRequest{Username: "manager", Password: "manager123"})
	require.NoError(t, err)
}
