package audit

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"hiretrack/pkg/requestcontext"
)

// Sink persists or forwards audit events.
type Sink interface {
	Write(ctx context.Context, event Event) error
}

// Publisher stamps events and hands them to the worker queue. Emit never
// blocks the request: a full queue drops the event with a warning.
type Publisher struct {
	queue  chan<- Event
	logger *slog.Logger
}

func NewPublisher(queue chan<- Event, logger *slog.Logger) *Publisher {
	return &Publisher{queue: queue, logger: logger}
}

func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.ActorID == "" {
		if actor, ok := requestcontext.Actor(ctx); ok {
			event.ActorID = actor.UserID.String()
			event.ActorRole = string(actor.Role)
		}
	}

	select {
	case p.queue <- event:
	default:
		if p.logger != nil {
			p.logger.WarnContext(ctx, "audit queue full, dropping event",
				"action", event.Action,
				"subject", event.Subject,
			)
		}
	}
	return nil
}

// SyncPublisher writes straight to a sink on the caller's goroutine. Used by
// short-lived tools and tests where a background worker is overkill.
type SyncPublisher struct {
	sink Sink
}

func NewSyncPublisher(sink Sink) *SyncPublisher {
	return &SyncPublisher{sink: sink}
}

func (p *SyncPublisher) Emit(ctx context.Context, event Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	return p.sink.Write(ctx, event)
}
