// Package service runs the application lifecycle: creation, staff status
// changes and candidate withdrawal. Every change and its notifications are
// written in one transaction.
package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"hiretrack/internal/application/models"
	"hiretrack/internal/audit"
	candidatemodels "hiretrack/internal/candidate/models"
	jobmodels "hiretrack/internal/job/models"
	"hiretrack/internal/platform/metrics"
	"hiretrack/internal/policy"
	"hiretrack/pkg/domain"
	dErrors "hiretrack/pkg/domain-errors"
	"hiretrack/pkg/platform/sentinel"
	"hiretrack/pkg/requestcontext"
)

var tracer = otel.Tracer("hiretrack/application")

type Store interface {
	Create(ctx context.Context, a *models.Application) error
	FindByID(ctx context.Context, id domain.ApplicationID) (*models.Application, error)
	List(ctx context.Context, f models.Filter) ([]*models.Application, error)
	Execute(ctx context.Context, id domain.ApplicationID, validate func(*models.Application) error, mutate func(*models.Application)) (*models.Application, error)
}

type CandidateReader interface {
	FindByID(ctx context.Context, id domain.CandidateID) (*candidatemodels.Candidate, error)
	FindByIDs(ctx context.Context, ids []domain.CandidateID) (map[domain.CandidateID]*candidatemodels.Candidate, error)
}

type JobReader interface {
	FindByID(ctx context.Context, id domain.JobID) (*jobmodels.Job, error)
	FindByIDs(ctx context.Context, ids []domain.JobID) (map[domain.JobID]*jobmodels.Job, error)
	List(ctx context.Context, department string) ([]*jobmodels.Job, error)
}

// Notifier writes lifecycle notifications inside the caller's transaction.
// InvalidateUnread is called after commit.
type Notifier interface {
	NotifyApplicationReceived(ctx context.Context, recipient domain.UserID, app *models.Application, jobTitle string) error
	NotifyStatusChanged(ctx context.Context, app *models.Application, jobTitle string) ([]domain.UserID, error)
	InvalidateUnread(ctx context.Context, userIDs ...domain.UserID)
}

type TxManager interface {
	RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Service struct {
	applications   Store
	candidates     CandidateReader
	jobs           JobReader
	notifier       Notifier
	tx             TxManager
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(applications Store, candidates CandidateReader, jobs JobReader, notifier Notifier, tx TxManager, opts ...Option) *Service {
	s := &Service{
		applications: applications,
		candidates:   candidates,
		jobs:         jobs,
		notifier:     notifier,
		tx:           tx,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create submits an application. Candidates always apply as their linked
// profile; staff must name the candidate. The acting user receives an
// APPLICATION_UPDATE notification in the same transaction.
func (s *Service) Create(ctx context.Context, actor domain.Actor, req *models.CreateApplicationRequest) (_ *models.View, err error) {
	ctx, span := tracer.Start(ctx, "application.Create")
	defer endSpan(span, &err)

	decision, err := policy.Authorize(actor, policy.CreateApplication)
	if err != nil {
		return nil, err
	}

	var candidateID domain.CandidateID
	if decision == policy.ScopeOwn {
		linked, ok := actor.LinkedCandidate()
		if !ok {
			return nil, dErrors.NewWithReason(dErrors.CodeValidation, dErrors.ReasonUnlinkedProfile,
				"your account is not linked to a candidate profile")
		}
		candidateID = linked
	} else {
		if req.CandidateID == nil || req.CandidateID.IsNil() {
			return nil, dErrors.NewWithReason(dErrors.CodeValidation, dErrors.ReasonMissingCandidate,
				"candidate_id is required")
		}
		candidateID = *req.CandidateID
	}
	if req.JobID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "job_id is required")
	}

	var (
		app       *models.Application
		candidate *candidatemodels.Candidate
		job       *jobmodels.Job
	)
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		if candidate, err = s.candidates.FindByID(txCtx, candidateID); err != nil {
			return notFound(err, "candidate not found")
		}
		if job, err = s.jobs.FindByID(txCtx, req.JobID); err != nil {
			return notFound(err, "job not found")
		}
		app, err = models.NewApplication(candidateID, job.ID, req.CoverLetter,
			requestcontext.Today(txCtx), requestcontext.Now(txCtx))
		if err != nil {
			return err
		}
		if err := s.applications.Create(txCtx, app); err != nil {
			return err
		}
		return s.notifier.NotifyApplicationReceived(txCtx, actor.UserID, app, job.Title)
	})
	if err != nil {
		return nil, s.translate(err, "failed to create application")
	}

	s.notifier.InvalidateUnread(ctx, actor.UserID)
	s.metrics.IncApplicationsCreated()
	span.SetAttributes(attribute.Int64("application.id", int64(app.ID)))
	s.logAudit(ctx, audit.EventApplicationCreated, app.ID, string(app.Status))
	return models.NewView(app, candidate.DisplayName(), job.Title, job.Department), nil
}

// SetStatus moves an application to a new status on behalf of staff.
// Withdrawal is reserved for the owning candidate; a closed application
// reports the conflict before that.
func (s *Service) SetStatus(ctx context.Context, actor domain.Actor, id domain.ApplicationID, status string) (_ *models.View, err error) {
	ctx, span := tracer.Start(ctx, "application.SetStatus")
	defer endSpan(span, &err)

	if _, err := policy.Authorize(actor, policy.UpdateApplicationStatus); err != nil {
		return nil, err
	}
	target, ok := models.ParseStatus(status)
	if !ok {
		return nil, dErrors.New(dErrors.CodeValidation, "unknown status: "+status)
	}
	span.SetAttributes(
		attribute.Int64("application.id", int64(id)),
		attribute.String("application.status", string(target)),
	)

	return s.transition(ctx, id,
		func(a *models.Application) error {
			if err := a.CanTransitionTo(target); err != nil {
				return err
			}
			if target == models.StatusWithdrawn {
				return dErrors.New(dErrors.CodeForbidden, "only the candidate can withdraw an application")
			}
			return nil
		},
		target, audit.EventApplicationStatusChange)
}

// Withdraw closes the caller's own application.
func (s *Service) Withdraw(ctx context.Context, actor domain.Actor, id domain.ApplicationID) (_ *models.View, err error) {
	ctx, span := tracer.Start(ctx, "application.Withdraw")
	defer endSpan(span, &err)

	if _, err := policy.Authorize(actor, policy.WithdrawApplication); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int64("application.id", int64(id)))

	return s.transition(ctx, id,
		func(a *models.Application) error {
			if err := policy.AuthorizeCandidate(actor, policy.WithdrawApplication, a.CandidateID); err != nil {
				return err
			}
			return a.CanWithdraw()
		},
		models.StatusWithdrawn, audit.EventApplicationWithdrawn)
}

// transition locks the application, validates and applies target, then
// notifies every user linked to its candidate, all in one transaction.
func (s *Service) transition(ctx context.Context, id domain.ApplicationID, validate func(*models.Application) error, target models.Status, action audit.Action) (*models.View, error) {
	var (
		app        *models.Application
		job        *jobmodels.Job
		recipients []domain.UserID
	)
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		app, err = s.applications.Execute(txCtx, id, validate, func(a *models.Application) {
			a.Transition(target, requestcontext.Now(txCtx))
		})
		if err != nil {
			return err
		}
		if job, err = s.jobs.FindByID(txCtx, app.JobID); err != nil {
			return notFound(err, "job not found")
		}
		recipients, err = s.notifier.NotifyStatusChanged(txCtx, app, job.Title)
		return err
	})
	if err != nil {
		return nil, s.translate(err, "failed to update application")
	}

	s.notifier.InvalidateUnread(ctx, recipients...)
	s.metrics.IncTransition(string(target))
	if s.logger != nil {
		s.logger.InfoContext(ctx, "application status changed",
			"application_id", id,
			"status", target,
			"recipients", len(recipients),
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	s.logAudit(ctx, action, id, string(target))

	name := ""
	if c, err := s.candidates.FindByID(ctx, app.CandidateID); err == nil {
		name = c.DisplayName()
	}
	return models.NewView(app, name, job.Title, job.Department), nil
}

// Get returns one application. Rows the actor may not see read as missing.
func (s *Service) Get(ctx context.Context, actor domain.Actor, id domain.ApplicationID) (*models.View, error) {
	if _, err := policy.Authorize(actor, policy.ViewApplication); err != nil {
		return nil, err
	}
	app, err := s.applications.FindByID(ctx, id)
	if err != nil {
		return nil, s.translate(err, "failed to load application")
	}
	if !canView(actor, app) {
		return nil, dErrors.New(dErrors.CodeNotFound, "application not found")
	}
	views, err := s.views(ctx, []*models.Application{app})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// List returns the applications visible to actor, newest application date
// first.
func (s *Service) List(ctx context.Context, actor domain.Actor, q models.ListFilter) ([]*models.View, error) {
	f, visible, err := scope(actor, q)
	if err != nil {
		return nil, err
	}
	if !visible {
		return []*models.View{}, nil
	}

	if q.Department != "" {
		jobs, err := s.jobs.List(ctx, q.Department)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve department")
		}
		f.JobIDs = make([]domain.JobID, 0, len(jobs))
		for _, j := range jobs {
			f.JobIDs = append(f.JobIDs, j.ID)
		}
	}

	apps, err := s.applications.List(ctx, f)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list applications")
	}
	return s.views(ctx, apps)
}

// views joins candidate names and job fields onto apps with one batch
// lookup per entity.
func (s *Service) views(ctx context.Context, apps []*models.Application) ([]*models.View, error) {
	out := make([]*models.View, 0, len(apps))
	if len(apps) == 0 {
		return out, nil
	}
	candidateIDs := make([]domain.CandidateID, 0, len(apps))
	jobIDs := make([]domain.JobID, 0, len(apps))
	for _, a := range apps {
		candidateIDs = append(candidateIDs, a.CandidateID)
		jobIDs = append(jobIDs, a.JobID)
	}
	candidates, err := s.candidates.FindByIDs(ctx, candidateIDs)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load candidates")
	}
	jobs, err := s.jobs.FindByIDs(ctx, jobIDs)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load jobs")
	}

	for _, a := range apps {
		var name, title, department string
		if c, ok := candidates[a.CandidateID]; ok {
			name = c.DisplayName()
		}
		if j, ok := jobs[a.JobID]; ok {
			title, department = j.Title, j.Department
		}
		out = append(out, models.NewView(a, name, title, department))
	}
	return out, nil
}

func notFound(err error, msg string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, msg)
	}
	return err
}

func (s *Service) translate(err error, msg string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "application not found")
	}
	if de, ok := dErrors.As(err); ok {
		if de.Code == dErrors.CodeInvariantViolation {
			return dErrors.New(dErrors.CodeValidation, de.Message)
		}
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}

// endSpan records *errp on span before ending it.
func endSpan(span trace.Span, errp *error) {
	if err := *errp; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *Service) logAudit(ctx context.Context, action audit.Action, id domain.ApplicationID, detail string) {
	if s.logger != nil {
		s.logger.InfoContext(ctx, string(action),
			"log_type", "audit",
			"application_id", id,
			"detail", detail,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	if s.auditPublisher == nil {
		return
	}
	_ = s.auditPublisher.Emit(ctx, audit.Event{
		Action:  action,
		Subject: "application:" + id.String(),
		Detail:  detail,
	})
}
