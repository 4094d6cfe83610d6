// Package importer bulk-loads candidates, jobs and historical applications
// from JSON files and provisions the demo accounts.
package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	appmodels "hiretrack/internal/application/models"
	"hiretrack/internal/audit"
	candmodels "hiretrack/internal/candidate/models"
	identitymodels "hiretrack/internal/identity/models"
	jobmodels "hiretrack/internal/job/models"
	"hiretrack/internal/platform/metrics"
	"hiretrack/pkg/domain"
	"hiretrack/pkg/platform/sentinel"
	"hiretrack/pkg/requestcontext"
)

const (
	candidatesFile   = "candidates.json"
	jobsFile         = "jobs.json"
	applicationsFile = "applications.json"
)

type CandidateStore interface {
	Create(ctx context.Context, c *candmodels.Candidate) error
	FindByEmail(ctx context.Context, email string) (*candmodels.Candidate, error)
	First(ctx context.Context) (*candmodels.Candidate, error)
	DeleteAll(ctx context.Context) error
}

type JobStore interface {
	Create(ctx context.Context, j *jobmodels.Job) error
	DeleteAll(ctx context.Context) error
}

type ApplicationStore interface {
	Create(ctx context.Context, a *appmodels.Application) error
	Exists(ctx context.Context, candidateID domain.CandidateID, jobID domain.JobID, date time.Time) (bool, error)
	DeleteAll(ctx context.Context) error
}

// Provisioner creates accounts idempotently. created is false when the
// username was already taken.
type Provisioner interface {
	Provision(ctx context.Context, username, password, email string, role domain.Role, candidateID *domain.CandidateID) (*identitymodels.User, bool, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Importer struct {
	candidates     CandidateStore
	jobs           JobStore
	applications   ApplicationStore
	logger         *slog.Logger
	metrics        *metrics.Metrics
	auditPublisher AuditPublisher
}

type Option func(*Importer)

func WithLogger(logger *slog.Logger) Option {
	return func(i *Importer) {
		i.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(i *Importer) {
		i.metrics = m
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(i *Importer) {
		i.auditPublisher = publisher
	}
}

func New(candidates CandidateStore, jobs JobStore, applications ApplicationStore, opts ...Option) *Importer {
	i := &Importer{
		candidates:   candidates,
		jobs:         jobs,
		applications: applications,
		logger:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Counts tallies one entity's import outcomes.
type Counts struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

type Report struct {
	Candidates   Counts `json:"candidates"`
	Jobs         Counts `json:"jobs"`
	Applications Counts `json:"applications"`
}

type candidateRecord struct {
	FirstName string `json:"fName"`
	LastName  string `json:"lName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type jobRecord struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Positions   *int   `json:"positions"`
	Department  string `json:"department"`
}

type applicationRecord struct {
	CandidateIndex int    `json:"candidate_index"`
	JobIndex       int    `json:"job_index"`
	Date           string `json:"applicationDate"`
	Status         string `json:"status"`
}

// Run imports the three data files found in dir.
func (i *Importer) Run(ctx context.Context, dir string, clear bool) (*Report, error) {
	return i.RunFS(ctx, os.DirFS(dir), clear)
}

// RunFS imports from fsys. A missing or malformed file aborts the import;
// bad individual records are counted and logged. Imported history does not
// generate notifications.
func (i *Importer) RunFS(ctx context.Context, fsys fs.FS, clear bool) (*Report, error) {
	var (
		candidates   []candidateRecord
		jobs         []jobRecord
		applications []applicationRecord
	)
	if err := readJSON(fsys, candidatesFile, &candidates); err != nil {
		return nil, err
	}
	if err := readJSON(fsys, jobsFile, &jobs); err != nil {
		return nil, err
	}
	if err := readJSON(fsys, applicationsFile, &applications); err != nil {
		return nil, err
	}

	if clear {
		if err := i.clear(ctx); err != nil {
			return nil, err
		}
	}

	report := &Report{}
	candidateIDs := i.importCandidates(ctx, candidates, &report.Candidates)
	jobIDs := i.importJobs(ctx, jobs, &report.Jobs)
	i.importApplications(ctx, applications, candidateIDs, jobIDs, &report.Applications)

	i.record("candidate", report.Candidates)
	i.record("job", report.Jobs)
	i.record("application", report.Applications)

	i.logger.InfoContext(ctx, "import completed",
		"candidates_created", report.Candidates.Created,
		"candidates_skipped", report.Candidates.Skipped,
		"jobs_created", report.Jobs.Created,
		"applications_created", report.Applications.Created,
		"applications_skipped", report.Applications.Skipped,
	)
	if i.auditPublisher != nil {
		_ = i.auditPublisher.Emit(ctx, audit.Event{
			Action:  audit.EventImportCompleted,
			Subject: "import",
			Detail: fmt.Sprintf("candidates=%d jobs=%d applications=%d",
				report.Candidates.Created, report.Jobs.Created, report.Applications.Created),
		})
	}
	return report, nil
}

func readJSON(fsys fs.FS, name string, dst any) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

// clear removes applications before the rows they reference.
func (i *Importer) clear(ctx context.Context) error {
	if err := i.applications.DeleteAll(ctx); err != nil {
		return fmt.Errorf("clear applications: %w", err)
	}
	if err := i.candidates.DeleteAll(ctx); err != nil {
		return fmt.Errorf("clear candidates: %w", err)
	}
	if err := i.jobs.DeleteAll(ctx); err != nil {
		return fmt.Errorf("clear jobs: %w", err)
	}
	i.logger.WarnContext(ctx, "existing data cleared")
	return nil
}

func (i *Importer) importCandidates(ctx context.Context, records []candidateRecord, counts *Counts) map[int]domain.CandidateID {
	ids := make(map[int]domain.CandidateID, len(records))
	for idx, rec := range records {
		existing, err := i.candidates.FindByEmail(ctx, rec.Email)
		if err == nil {
			ids[idx] = existing.ID
			counts.Skipped++
			continue
		}
		if !errors.Is(err, sentinel.ErrNotFound) {
			i.fail(ctx, "candidate", idx, err, counts)
			continue
		}

		c, err := candmodels.NewCandidate(rec.FirstName, rec.LastName, rec.Email, rec.Phone, requestcontext.Now(ctx))
		if err != nil {
			i.fail(ctx, "candidate", idx, err, counts)
			continue
		}
		if err := i.candidates.Create(ctx, c); err != nil {
			i.fail(ctx, "candidate", idx, err, counts)
			continue
		}
		ids[idx] = c.ID
		counts.Created++
	}
	return ids
}

func (i *Importer) importJobs(ctx context.Context, records []jobRecord, counts *Counts) map[int]domain.JobID {
	ids := make(map[int]domain.JobID, len(records))
	for idx, rec := range records {
		j, err := jobmodels.NewJob(rec.Title, rec.Description, rec.Positions, rec.Department, 0, requestcontext.Now(ctx))
		if err != nil {
			i.fail(ctx, "job", idx, err, counts)
			continue
		}
		if err := i.jobs.Create(ctx, j); err != nil {
			i.fail(ctx, "job", idx, err, counts)
			continue
		}
		ids[idx] = j.ID
		counts.Created++
	}
	return ids
}

func (i *Importer) importApplications(ctx context.Context, records []applicationRecord, candidates map[int]domain.CandidateID, jobs map[int]domain.JobID, counts *Counts) {
	for idx, rec := range records {
		candidateID, okC := candidates[rec.CandidateIndex]
		jobID, okJ := jobs[rec.JobIndex]
		if !okC || !okJ {
			i.logger.WarnContext(ctx, "application references unknown record",
				"index", idx,
				"candidate_index", rec.CandidateIndex,
				"job_index", rec.JobIndex,
			)
			counts.Skipped++
			continue
		}
		date, err := time.Parse(time.DateOnly, rec.Date)
		if err != nil {
			i.fail(ctx, "application", idx, err, counts)
			continue
		}
		status, ok := appmodels.ParseStatus(rec.Status)
		if !ok {
			i.fail(ctx, "application", idx, fmt.Errorf("unknown status %q", rec.Status), counts)
			continue
		}

		exists, err := i.applications.Exists(ctx, candidateID, jobID, date)
		if err != nil {
			i.fail(ctx, "application", idx, err, counts)
			continue
		}
		if exists {
			counts.Skipped++
			continue
		}

		a, err := appmodels.NewApplication(candidateID, jobID, "", date, requestcontext.Now(ctx))
		if err != nil {
			i.fail(ctx, "application", idx, err, counts)
			continue
		}
		a.Status = status
		if err := i.applications.Create(ctx, a); err != nil {
			i.fail(ctx, "application", idx, err, counts)
			continue
		}
		counts.Created++
	}
}

func (i *Importer) fail(ctx context.Context, entity string, idx int, err error, counts *Counts) {
	i.logger.ErrorContext(ctx, "import record failed",
		"entity", entity,
		"index", idx,
		"error", err,
	)
	counts.Failed++
}

func (i *Importer) record(entity string, c Counts) {
	i.metrics.AddImportRecords(entity, "created", c.Created)
	i.metrics.AddImportRecords(entity, "skipped", c.Skipped)
	i.metrics.AddImportRecords(entity, "failed", c.Failed)
}
