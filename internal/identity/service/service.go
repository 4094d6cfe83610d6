// Package service provisions accounts, issues access tokens and resolves the
// acting principal for each request.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"hiretrack/internal/audit"
	"hiretrack/internal/identity/models"
	"hiretrack/internal/identity/secrets"
	"hiretrack/internal/policy"
	"hiretrack/pkg/domain"
	dErrors "hiretrack/pkg/domain-errors"
	"hiretrack/pkg/platform/sentinel"
	"hiretrack/pkg/requestcontext"
)

const defaultTokenTTL = 12 * time.Hour

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id domain.UserID) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	SetCandidate(ctx context.Context, id domain.UserID, candidateID *domain.CandidateID) error
}

// CandidateChecker reports whether a candidate record exists.
type CandidateChecker interface {
	Exists(ctx context.Context, id domain.CandidateID) (bool, error)
}

type TokenIssuer interface {
	GenerateAccessToken(userID domain.UserID, role domain.Role, expiresIn time.Duration) (string, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service handles registration, login and actor resolution.
type Service struct {
	users          UserStore
	candidates     CandidateChecker
	tokens         TokenIssuer
	tokenTTL       time.Duration
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

func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

func New(users UserStore, candidates CandidateChecker, tokens TokenIssuer, opts ...Option) *Service {
	s := &Service{
		users:      users,
		candidates: candidates,
		tokens:     tokens,
		tokenTTL:   defaultTokenTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register provisions an account and signs the caller in. A candidate_id that
// does not resolve is ignored rather than rejected.
func (s *Service) Register(ctx context.Context, req *models.RegisterRequest) (*models.TokenResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	role, _ := domain.ParseRole(req.Role)

	var link *domain.CandidateID
	if req.CandidateID != nil {
		link = s.resolveLink(ctx, domain.CandidateID(*req.CandidateID))
	}

	u, err := s.provision(ctx, req.Username, req.Password, req.Email, role, link)
	if err != nil {
		return nil, err
	}
	return s.issue(u)
}

// Provision creates an account if the username is free. Used by the demo
// seeder, which must be idempotent; created is false when the user existed.
func (s *Service) Provision(ctx context.Context, username, password, email string, role domain.Role, candidateID *domain.CandidateID) (*models.User, bool, error) {
	existing, err := s.users.FindByUsername(ctx, username)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up user")
	}
	u, err := s.provision(ctx, username, password, email, role, candidateID)
	if err != nil {
		return nil, false, err
	}
	return u, true, nil
}

func (s *Service) provision(ctx context.Context, username, password, email string, role domain.Role, link *domain.CandidateID) (*models.User, error) {
	hash, err := secrets.Hash(password)
	if err != nil {
		if _, ok := dErrors.As(err); ok {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	u, err := models.NewUser(username, email, hash, role, requestcontext.Now(ctx))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}
	if link != nil {
		u.LinkCandidate(*link)
	}

	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "username already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}

	s.logAudit(ctx, audit.Event{
		Action:    audit.EventUserRegistered,
		ActorID:   u.ID.String(),
		ActorRole: string(u.Role),
		Subject:   "user:" + u.ID.String(),
	})
	return u, nil
}

func (s *Service) resolveLink(ctx context.Context, id domain.CandidateID) *domain.CandidateID {
	ok, err := s.candidates.Exists(ctx, id)
	if err != nil {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "candidate lookup failed during registration",
				"candidate_id", id,
				"error", err,
			)
		}
		return nil
	}
	if !ok {
		return nil
	}
	return &id
}

// Login verifies credentials and returns a signed access token.
func (s *Service) Login(ctx context.Context, req *models.LoginRequest) (*models.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	u, err := s.users.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	if err := secrets.Verify(req.Password, u.PasswordHash); err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to verify credentials")
	}
	return s.issue(u)
}

func (s *Service) issue(u *models.User) (*models.TokenResponse, error) {
	token, err := s.tokens.GenerateAccessToken(u.ID, u.Role, s.tokenTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue access token")
	}
	return &models.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.tokenTTL.Seconds()),
		User:        models.NewUserResponse(u),
	}, nil
}

// ResolveActor loads the current role and candidate link for userID.
func (s *Service) ResolveActor(ctx context.Context, userID domain.UserID) (domain.Actor, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return domain.Actor{}, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return domain.Actor{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	return u.Actor(), nil
}

// Me returns the caller's account.
func (s *Service) Me(ctx context.Context, actor domain.Actor) (*models.UserResponse, error) {
	u, err := s.users.FindByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	return models.NewUserResponse(u), nil
}

// LinkCandidate attaches an account to a candidate record.
func (s *Service) LinkCandidate(ctx context.Context, actor domain.Actor, userID domain.UserID, candidateID domain.CandidateID) (*models.UserResponse, error) {
	if _, err := policy.Authorize(actor, policy.LinkCandidate); err != nil {
		return nil, err
	}

	exists, err := s.candidates.Exists(ctx, candidateID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load candidate")
	}
	if !exists {
		return nil, dErrors.New(dErrors.CodeNotFound, "candidate not found")
	}

	if err := s.users.SetCandidate(ctx, userID, &candidateID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to link candidate")
	}

	s.logAudit(ctx, audit.Event{
		Action:  audit.EventCandidateLinked,
		Subject: "user:" + userID.String(),
		Detail:  "candidate:" + candidateID.String(),
	})
	return s.Me(ctx, domain.Actor{UserID: userID})
}

func (s *Service) logAudit(ctx context.Context, event audit.Event) {
	if s.logger != nil {
		s.logger.InfoContext(ctx, string(event.Action),
			"log_type", "audit",
			"subject", event.Subject,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	if s.auditPublisher == nil {
		return
	}
	_ = s.auditPublisher.Emit(ctx, event)
}
