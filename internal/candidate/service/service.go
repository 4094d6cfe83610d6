// Package service manages candidate profiles and their resume references.
package service

import (
	"context"
	"errors"
	"log/slog"

	"hiretrack/internal/audit"
	"hiretrack/internal/candidate/models"
	"hiretrack/internal/policy"
	"hiretrack/pkg/domain"
	dErrors "hiretrack/pkg/domain-errors"
	"hiretrack/pkg/platform/sentinel"
	"hiretrack/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, c *models.Candidate) error
	FindByID(ctx context.Context, id domain.CandidateID) (*models.Candidate, error)
	List(ctx context.Context) ([]*models.Candidate, error)
	Execute(ctx context.Context, id domain.CandidateID, validate func(*models.Candidate) error, mutate func(*models.Candidate)) (*models.Candidate, error)
	Delete(ctx context.Context, id domain.CandidateID) error
}

// ApplicationRemover deletes a candidate's applications.
type ApplicationRemover interface {
	DeleteByCandidate(ctx context.Context, candidateID domain.CandidateID) (int, error)
}

// UserUnlinker clears account links to a candidate.
type UserUnlinker interface {
	UnlinkCandidate(ctx context.Context, candidateID domain.CandidateID) (int, error)
}

type TxManager interface {
	RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Service struct {
	candidates     Store
	applications   ApplicationRemover
	users          UserUnlinker
	tx             TxManager
	logger         *slog.Logger
	auditPublisher AuditPublisher
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

func New(candidates Store, applications ApplicationRemover, users UserUnlinker, tx TxManager, opts ...Option) *Service {
	s := &Service{
		candidates:   candidates,
		applications: applications,
		users:        users,
		tx:           tx,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Create(ctx context.Context, actor domain.Actor, req *models.CreateCandidateRequest) (*models.Candidate, error) {
	if _, err := policy.Authorize(actor, policy.CreateCandidate); err != nil {
		return nil, err
	}

	c, err := models.NewCandidate(req.FirstName, req.LastName, req.Email, req.Phone, requestcontext.Now(ctx))
	if err != nil {
		return nil, toValidation(err)
	}
	c.Headline = req.Headline
	c.Summary = req.Summary

	if err := s.candidates.Create(ctx, c); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "a candidate with this email already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create candidate")
	}

	s.logAudit(ctx, audit.EventCandidateCreated, c.ID, "")
	return c, nil
}

// Get returns a candidate. Candidates can only see their own profile; any
// other id reads as not found.
func (s *Service) Get(ctx context.Context, actor domain.Actor, id domain.CandidateID) (*models.Candidate, error) {
	decision, err := policy.Authorize(actor, policy.ViewCandidate)
	if err != nil {
		return nil, err
	}
	if decision == policy.ScopeOwn && !actor.Owns(id) {
		return nil, dErrors.New(dErrors.CodeNotFound, "candidate not found")
	}

	c, err := s.candidates.FindByID(ctx, id)
	if err != nil {
		return nil, s.translate(err, "failed to load candidate")
	}
	return c, nil
}

func (s *Service) List(ctx context.Context, actor domain.Actor) ([]*models.Candidate, error) {
	if _, err := policy.Authorize(actor, policy.ListCandidates); err != nil {
		return nil, err
	}
	list, err := s.candidates.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list candidates")
	}
	return list, nil
}

// UpdateProfile edits the mutable profile fields. Email cannot change.
func (s *Service) UpdateProfile(ctx context.Context, actor domain.Actor, id domain.CandidateID, req *models.UpdateProfileRequest) (*models.Candidate, error) {
	var update models.ProfileUpdate
	c, err := s.mutate(ctx, actor, id,
		func(c *models.Candidate) error {
			var err error
			update, err = req.ToUpdate(c.Email)
			if err != nil {
				return err
			}
			return c.CanApplyProfile(update)
		},
		func(c *models.Candidate) {
			c.ApplyProfile(update, requestcontext.Now(ctx))
		},
	)
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, audit.EventCandidateUpdated, id, "")
	return c, nil
}

// AttachResume stores an opaque reference to an uploaded resume.
func (s *Service) AttachResume(ctx context.Context, actor domain.Actor, id domain.CandidateID, ref string) (*models.Candidate, error) {
	c, err := s.mutate(ctx, actor, id,
		func(*models.Candidate) error { return models.CanAttachResume(ref) },
		func(c *models.Candidate) { c.ApplyResume(ref, requestcontext.Now(ctx)) },
	)
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, audit.EventResumeAttached, id, *c.ResumeRef)
	return c, nil
}

func (s *Service) DetachResume(ctx context.Context, actor domain.Actor, id domain.CandidateID) (*models.Candidate, error) {
	c, err := s.mutate(ctx, actor, id,
		func(*models.Candidate) error { return nil },
		func(c *models.Candidate) { c.ClearResume(requestcontext.Now(ctx)) },
	)
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, audit.EventResumeDetached, id, "")
	return c, nil
}

// mutate checks UpdateCandidate policy against the row, then runs the
// store's locked read-validate-mutate.
func (s *Service) mutate(ctx context.Context, actor domain.Actor, id domain.CandidateID, validate func(*models.Candidate) error, apply func(*models.Candidate)) (*models.Candidate, error) {
	if _, err := policy.Authorize(actor, policy.UpdateCandidate); err != nil {
		return nil, err
	}
	c, err := s.candidates.Execute(ctx, id,
		func(c *models.Candidate) error {
			if err := policy.AuthorizeCandidate(actor, policy.UpdateCandidate, c.ID); err != nil {
				return err
			}
			return validate(c)
		},
		apply,
	)
	if err != nil {
		return nil, s.translate(err, "failed to update candidate")
	}
	return c, nil
}

// Delete removes a candidate with its applications and clears account links,
// all in one transaction.
func (s *Service) Delete(ctx context.Context, actor domain.Actor, id domain.CandidateID) error {
	if _, err := policy.Authorize(actor, policy.DeleteCandidate); err != nil {
		return err
	}

	var removed int
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.candidates.FindByID(txCtx, id); err != nil {
			return err
		}
		if _, err := s.users.UnlinkCandidate(txCtx, id); err != nil {
			return err
		}
		n, err := s.applications.DeleteByCandidate(txCtx, id)
		if err != nil {
			return err
		}
		removed = n
		return s.candidates.Delete(txCtx, id)
	})
	if err != nil {
		return s.translate(err, "failed to delete candidate")
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "candidate deleted",
			"candidate_id", id,
			"applications_removed", removed,
		)
	}
	s.logAudit(ctx, audit.EventCandidateDeleted, id, "")
	return nil
}

func (s *Service) translate(err error, msg string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "candidate not found")
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

func (s *Service) logAudit(ctx context.Context, action audit.Action, id domain.CandidateID, detail string) {
	if s.logger != nil {
		s.logger.InfoContext(ctx, string(action),
			"log_type", "audit",
			"candidate_id", id,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	if s.auditPublisher == nil {
		return
	}
	_ = s.auditPublisher.Emit(ctx, audit.Event{
		Action:  action,
		Subject: "candidate:" + id.String(),
		Detail:  detail,
	})
}
