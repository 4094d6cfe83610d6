package audit

import (
	"context"
	"log/slog"
)

// Worker drains the audit queue into a sink. Sink failures are logged and
// never stop the worker.
type Worker struct {
	sink   Sink
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(sink Sink, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{sink: sink, inbox: inbox, logger: logger}
}

// Run blocks until ctx is cancelled or the inbox is closed, then flushes
// whatever is still buffered.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.drain(context.WithoutCancel(ctx))
			return nil
		case event, ok := <-w.inbox:
			if !ok {
				return nil
			}
			w.write(ctx, event)
		}
	}
}

func (w *Worker) drain(ctx context.Context) {
	for {
		select {
		case event, ok := <-w.inbox:
			if !ok {
				return
			}
			w.write(ctx, event)
		default:
			return
		}
	}
}

func (w *Worker) write(ctx context.Context, event Event) {
	if err := w.sink.Write(ctx, event); err != nil && w.logger != nil {
		w.logger.ErrorContext(ctx, "failed to write audit event",
			"error", err,
			"action", event.Action,
			"subject", event.Subject,
		)
	}
}
