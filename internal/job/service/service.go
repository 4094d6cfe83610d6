// Package service posts and maintains job openings. Posting a job notifies
// every candidate account in the same transaction as the insert.
package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"hiretrack/internal/audit"
	"hiretrack/internal/job/models"
	"hiretrack/internal/platform/metrics"
	"hiretrack/internal/policy"
	"hiretrack/pkg/domain"
	dErrors "hiretrack/pkg/domain-errors"
	"hiretrack/pkg/platform/sentinel"
	"hiretrack/pkg/requestcontext"
)

var tracer = otel.Tracer("hiretrack/job")

type Store interface {
	Create(ctx context.Context, j *models.Job) error
	FindByID(ctx context.Context, id domain.JobID) (*models.Job, error)
	List(ctx context.Context, department string) ([]*models.Job, error)
	Execute(ctx context.Context, id domain.JobID, validate func(*models.Job) error, mutate func(*models.Job)) (*models.Job, error)
	Delete(ctx context.Context, id domain.JobID) error
}

// ApplicationRemover deletes the applications to a job.
type ApplicationRemover interface {
	DeleteByJob(ctx context.Context, jobID domain.JobID) (int, error)
}

// Notifier fans out NEW_JOB notifications inside the caller's transaction
// and returns the recipients.
type Notifier interface {
	NotifyJobPosted(ctx context.Context, job *models.Job) ([]domain.UserID, error)
	InvalidateUnread(ctx context.Context, userIDs ...domain.UserID)
}

type TxManager interface {
	RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Service struct {
	jobs           Store
	applications   ApplicationRemover
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

func New(jobs Store, applications ApplicationRemover, notifier Notifier, tx TxManager, opts ...Option) *Service {
	s := &Service{jobs: jobs, applications: applications, notifier: notifier, tx: tx}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Post creates a job and notifies all candidate-role users existing at
// posting time. A fan-out failure rolls the job back.
func (s *Service) Post(ctx context.Context, actor domain.Actor, req *models.PostJobRequest) (_ *models.Job, err error) {
	ctx, span := tracer.Start(ctx, "job.Post")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if _, err := policy.Authorize(actor, policy.PostJob); err != nil {
		return nil, err
	}
	job, err := models.NewJob(req.Title, req.Description, req.Positions, req.Department, actor.UserID, requestcontext.Now(ctx))
	if err != nil {
		return nil, toValidation(err)
	}

	var recipients []domain.UserID
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.jobs.Create(txCtx, job); err != nil {
			return err
		}
		var err error
		recipients, err = s.notifier.NotifyJobPosted(txCtx, job)
		return err
	})
	if err != nil {
		return nil, s.translate(err, "failed to post job")
	}

	s.notifier.InvalidateUnread(ctx, recipients...)
	s.metrics.IncJobsPosted()
	span.SetAttributes(
		attribute.Int64("job.id", int64(job.ID)),
		attribute.Int("notifications.recipients", len(recipients)),
	)
	if s.logger != nil {
		s.logger.InfoContext(ctx, "job posted",
			"job_id", job.ID,
			"department", job.Department,
			"recipients", len(recipients),
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	s.logAudit(ctx, audit.EventJobPosted, job.ID, job.Title)
	return job, nil
}

func (s *Service) Get(ctx context.Context, actor domain.Actor, id domain.JobID) (*models.Job, error) {
	if _, err := policy.Authorize(actor, policy.ViewJobs); err != nil {
		return nil, err
	}
	j, err := s.jobs.FindByID(ctx, id)
	if err != nil {
		return nil, s.translate(err, "failed to load job")
	}
	return j, nil
}

// List returns jobs newest first, optionally restricted to one department.
func (s *Service) List(ctx context.Context, actor domain.Actor, department string) ([]*models.Job, error) {
	if _, err := policy.Authorize(actor, policy.ViewJobs); err != nil {
		return nil, err
	}
	list, err := s.jobs.List(ctx, department)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list jobs")
	}
	return list, nil
}

// Update edits a job. Edits never notify.
func (s *Service) Update(ctx context.Context, actor domain.Actor, id domain.JobID, req *models.UpdateJobRequest) (*models.Job, error) {
	if _, err := policy.Authorize(actor, policy.UpdateJob); err != nil {
		return nil, err
	}
	update := req.ToUpdate()
	j, err := s.jobs.Execute(ctx, id,
		func(j *models.Job) error { return j.CanApply(update) },
		func(j *models.Job) { j.Apply(update) },
	)
	if err != nil {
		return nil, s.translate(err, "failed to update job")
	}
	s.logAudit(ctx, audit.EventJobUpdated, id, "")
	return j, nil
}

// Delete removes a job with its applications in one transaction.
// Notifications about the job are kept.
func (s *Service) Delete(ctx context.Context, actor domain.Actor, id domain.JobID) error {
	if _, err := policy.Authorize(actor, policy.DeleteJob); err != nil {
		return err
	}

	var removed int
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.jobs.FindByID(txCtx, id); err != nil {
			return err
		}
		n, err := s.applications.DeleteByJob(txCtx, id)
		if err != nil {
			return err
		}
		removed = n
		return s.jobs.Delete(txCtx, id)
	})
	if err != nil {
		return s.translate(err, "failed to delete job")
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "job deleted",
			"job_id", id,
			"applications_removed", removed,
		)
	}
	s.logAudit(ctx, audit.EventJobDeleted, id, "")
	return nil
}

func (s *Service) translate(err error, msg string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "job not found")
	}
	if _, ok := dErrors.As(err); ok {
		return toValidation(err)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}

func toValidation(err error) error {
	if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
		de, _ := dErrors.As(err)
		return dErrors.New(dErrors.CodeValidation, de.Message)
	}
	return err
}

func (s *Service) logAudit(ctx context.Context, action audit.Action, id domain.JobID, detail string) {
	if s.logger != nil {
		s.logger.InfoContext(ctx, string(action),
			"log_type", "audit",
			"job_id", id,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	if s.auditPublisher == nil {
		return
	}
	_ = s.auditPublisher.Emit(ctx, audit.Event{
		Action:  action,
		Subject: "job:" + id.String(),
		Detail:  detail,
	})
}
