// Package service derives notifications from job postings and application
// status changes, and exposes each user's read state.
//
// The Notify methods must run inside the caller's transaction so that the
// triggering write and its notifications commit or roll back together.
// InvalidateUnread is for after the commit.
package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	appmodels "hiretrack/internal/application/models"
	jobmodels "hiretrack/internal/job/models"
	"hiretrack/internal/notification/models"
	"hiretrack/internal/platform/metrics"
	"hiretrack/pkg/domain"
	dErrors "hiretrack/pkg/domain-errors"
	"hiretrack/pkg/platform/sentinel"
	"hiretrack/pkg/requestcontext"
)

var tracer = otel.Tracer("hiretrack/notification")

type Store interface {
	CreateMany(ctx context.Context, ns []*models.Notification) error
	ListByUser(ctx context.Context, userID domain.UserID, unreadOnly bool) ([]*models.Notification, error)
	CountUnread(ctx context.Context, userID domain.UserID) (int, error)
	Execute(ctx context.Context, id domain.NotificationID, validate func(*models.Notification) error, mutate func(*models.Notification)) (*models.Notification, error)
	MarkAllRead(ctx context.Context, userID domain.UserID, now time.Time) (int, error)
}

// UserDirectory finds fan-out recipients.
type UserDirectory interface {
	ListIDsByRole(ctx context.Context, role domain.Role) ([]domain.UserID, error)
	ListIDsByCandidate(ctx context.Context, candidateID domain.CandidateID) ([]domain.UserID, error)
}

// UnreadCache is optional. Errors are logged and the store answers instead.
// A failed Invalidate leaves the old count behind, so those users skip the
// cache until a fresh count is written or the entry has expired.
type UnreadCache interface {
	GetUnread(ctx context.Context, userID domain.UserID) (int, bool, error)
	SetUnread(ctx context.Context, userID domain.UserID, count int) error
	Invalidate(ctx context.Context, userIDs ...domain.UserID) error
}

// defaultCacheTTL matches the Redis cache's default entry lifetime.
const defaultCacheTTL = 30 * time.Second

type Service struct {
	store   Store
	users   UserDirectory
	cache   UnreadCache
	logger  *slog.Logger
	metrics *metrics.Metrics

	cacheTTL time.Duration
	staleMu  sync.Mutex
	stale    map[domain.UserID]time.Time // user -> time the leftover entry has surely expired
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithCache(cache UnreadCache) Option {
	return func(s *Service) {
		s.cache = cache
	}
}

// WithCacheTTL tells the service how long a cache entry can outlive a failed
// invalidation. It must not be shorter than the cache's own TTL.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(store Store, users UserDirectory, opts ...Option) *Service {
	s := &Service{
		store:    store,
		users:    users,
		cacheTTL: defaultCacheTTL,
		stale:    make(map[domain.UserID]time.Time),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NotifyJobPosted writes one NEW_JOB notification for each candidate-role
// user that exists now. Later accounts get nothing retroactively.
func (s *Service) NotifyJobPosted(ctx context.Context, job *jobmodels.Job) ([]domain.UserID, error) {
	ctx, span := tracer.Start(ctx, "notification.NotifyJobPosted")
	defer span.End()

	recipients, err := s.users.ListIDsByRole(ctx, domain.RoleCandidate)
	if err != nil {
		return nil, err
	}
	jobID := job.ID
	err = s.fanOut(ctx, recipients, models.TypeNewJob,
		models.JobPostedTitle(job.Title),
		models.JobPostedMessage(job.Title, job.Department),
		func(n *models.Notification) { n.JobID = &jobID })
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("notifications.count", len(recipients)))
	return recipients, nil
}

// NotifyApplicationReceived writes the single APPLICATION_UPDATE
// notification for the user who submitted app.
func (s *Service) NotifyApplicationReceived(ctx context.Context, recipient domain.UserID, app *appmodels.Application, jobTitle string) error {
	appID, jobID := app.ID, app.JobID
	return s.fanOut(ctx, []domain.UserID{recipient}, models.TypeApplicationUpdate,
		models.ApplicationReceivedTitle,
		models.ApplicationReceivedMessage(jobTitle),
		func(n *models.Notification) {
			n.ApplicationID = &appID
			n.JobID = &jobID
		})
}

// NotifyStatusChanged notifies every user linked to the application's
// candidate. Moving to Interview sends an INTERVIEW notification.
func (s *Service) NotifyStatusChanged(ctx context.Context, app *appmodels.Application, jobTitle string) ([]domain.UserID, error) {
	ctx, span := tracer.Start(ctx, "notification.NotifyStatusChanged")
	defer span.End()

	recipients, err := s.users.ListIDsByCandidate(ctx, app.CandidateID)
	if err != nil {
		return nil, err
	}
	typ := models.TypeApplicationUpdate
	if app.Status == appmodels.StatusInterview {
		typ = models.TypeInterview
	}
	appID, jobID := app.ID, app.JobID
	err = s.fanOut(ctx, recipients, typ,
		models.StatusChangedTitle,
		models.StatusChangedMessage(jobTitle, string(app.Status)),
		func(n *models.Notification) {
			n.ApplicationID = &appID
			n.JobID = &jobID
		})
	if err != nil {
		return nil, err
	}
	return recipients, nil
}

func (s *Service) fanOut(ctx context.Context, recipients []domain.UserID, typ models.Type, title, message string, ref func(*models.Notification)) error {
	if len(recipients) == 0 {
		return nil
	}
	now := requestcontext.Now(ctx)
	batch := make([]*models.Notification, 0, len(recipients))
	for _, userID := range recipients {
		n, err := models.NewNotification(userID, typ, title, message, now)
		if err != nil {
			return err
		}
		ref(n)
		batch = append(batch, n)
	}
	if err := s.store.CreateMany(ctx, batch); err != nil {
		return err
	}
	s.metrics.AddNotifications(string(typ), len(batch))
	return nil
}

// InvalidateUnread drops cached counts. When that fails the users are read
// from the store until their entries can no longer be served.
func (s *Service) InvalidateUnread(ctx context.Context, userIDs ...domain.UserID) {
	if s.cache == nil || len(userIDs) == 0 {
		return
	}
	if err := s.cache.Invalidate(ctx, userIDs...); err != nil {
		s.markStale(requestcontext.Now(ctx), userIDs)
		if !errors.Is(err, sentinel.ErrUnavailable) {
			s.warn(ctx, "failed to invalidate unread counts", err)
		}
	}
}

func (s *Service) markStale(now time.Time, userIDs []domain.UserID) {
	until := now.Add(s.cacheTTL)
	s.staleMu.Lock()
	defer s.staleMu.Unlock()
	for id, exp := range s.stale {
		if !now.Before(exp) {
			delete(s.stale, id)
		}
	}
	for _, id := range userIDs {
		s.stale[id] = until
	}
}

// staleMark returns the user's pending mark, or the zero time when the
// cache entry can be trusted.
func (s *Service) staleMark(now time.Time, userID domain.UserID) time.Time {
	s.staleMu.Lock()
	defer s.staleMu.Unlock()
	exp, ok := s.stale[userID]
	if !ok {
		return time.Time{}
	}
	if !now.Before(exp) {
		delete(s.stale, userID)
		return time.Time{}
	}
	return exp
}

// clearStale drops the mark seen before counting. A mark set by a later
// failed invalidation is kept.
func (s *Service) clearStale(userID domain.UserID, seen time.Time) {
	s.staleMu.Lock()
	defer s.staleMu.Unlock()
	if exp, ok := s.stale[userID]; ok && exp.Equal(seen) {
		delete(s.stale, userID)
	}
}

// List returns the actor's notifications newest first with their unread
// count, fetched concurrently.
func (s *Service) List(ctx context.Context, actor domain.Actor, unreadOnly bool) (*models.FeedResponse, error) {
	var (
		feed   []*models.Notification
		unread int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		feed, err = s.store.ListByUser(gctx, actor.UserID, unreadOnly)
		return err
	})
	g.Go(func() error {
		var err error
		unread, err = s.unreadCount(gctx, actor.UserID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load notifications")
	}
	if feed == nil {
		feed = []*models.Notification{}
	}
	return &models.FeedResponse{Notifications: feed, UnreadCount: unread}, nil
}

// MarkRead flags one of the actor's notifications as read. Repeating it is
// a no-op.
func (s *Service) MarkRead(ctx context.Context, actor domain.Actor, id domain.NotificationID) (*models.Notification, error) {
	changed := false
	n, err := s.store.Execute(ctx, id,
		func(n *models.Notification) error {
			if n.UserID != actor.UserID {
				return dErrors.New(dErrors.CodeForbidden, "notification belongs to another user")
			}
			return nil
		},
		func(n *models.Notification) {
			changed = n.MarkRead(requestcontext.Now(ctx))
		},
	)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "notification not found")
		}
		if _, ok := dErrors.As(err); ok {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to mark notification read")
	}
	if changed {
		s.InvalidateUnread(ctx, actor.UserID)
	}
	return n, nil
}

// MarkAllRead returns how many notifications changed.
func (s *Service) MarkAllRead(ctx context.Context, actor domain.Actor) (int, error) {
	n, err := s.store.MarkAllRead(ctx, actor.UserID, requestcontext.Now(ctx))
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to mark notifications read")
	}
	if n > 0 {
		s.InvalidateUnread(ctx, actor.UserID)
	}
	return n, nil
}

func (s *Service) UnreadCount(ctx context.Context, actor domain.Actor) (int, error) {
	count, err := s.unreadCount(ctx, actor.UserID)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count unread notifications")
	}
	return count, nil
}

// unreadCount reads through the cache when one is configured and the
// user's entry can be trusted.
func (s *Service) unreadCount(ctx context.Context, userID domain.UserID) (int, error) {
	var mark time.Time
	if s.cache != nil {
		mark = s.staleMark(requestcontext.Now(ctx), userID)
	}
	if s.cache != nil && mark.IsZero() {
		count, ok, err := s.cache.GetUnread(ctx, userID)
		if err != nil {
			s.warn(ctx, "unread count cache read failed", err)
		} else if ok {
			return count, nil
		}
	}
	count, err := s.store.CountUnread(ctx, userID)
	if err != nil {
		return 0, err
	}
	if s.cache != nil {
		if err := s.cache.SetUnread(ctx, userID, count); err != nil {
			if !errors.Is(err, sentinel.ErrUnavailable) {
				s.warn(ctx, "unread count cache write failed", err)
			}
		} else if !mark.IsZero() {
			// the fresh count replaced whatever was left behind
			s.clearStale(userID, mark)
		}
	}
	return count, nil
}

func (s *Service) warn(ctx context.Context, msg string, err error) {
	if s.logger == nil {
		return
	}
	s.logger.WarnContext(ctx, msg,
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
	)
}
