package testutil

import (
	"context"
	"net/http"
	"time"

	"hiretrack/pkg/domain"
	"hiretrack/pkg/requestcontext"
)

// WithActor adds an authenticated actor to the request context, as the auth
// middleware would.
func WithActor(req *http.Request, actor domain.Actor) *http.Request {
	ctx := requestcontext.WithUserID(req.Context(), actor.UserID)
	ctx = requestcontext.WithActor(ctx, actor)
	return req.WithContext(ctx)
}

// ActorContext returns a context carrying actor and a fixed request time.
func ActorContext(actor domain.Actor, now time.Time) context.Context {
	ctx := requestcontext.WithUserID(context.Background(), actor.UserID)
	ctx = requestcontext.WithActor(ctx, actor)
	return requestcontext.WithTime(ctx, now)
}

// HR, Manager and Candidate build actors for tests.
func HR(id domain.UserID) domain.Actor {
	return domain.Actor{UserID: id, Role: domain.RoleHR}
}

func Manager(id domain.UserID) domain.Actor {
	return domain.Actor{UserID: id, Role: domain.RoleManager}
}

func Candidate(id domain.UserID, linked domain.CandidateID) domain.Actor {
	a := domain.Actor{UserID: id, Role: domain.RoleCandidate}
	if linked != 0 {
		a.CandidateID = &linked
	}
	return a
}

// WithContextValue adds an arbitrary key-value pair to the request context.
func WithContextValue(req *http.Request, key, value any) *http.Request {
	ctx := context.WithValue(req.Context(), key, value)
	return req.WithContext(ctx)
}
