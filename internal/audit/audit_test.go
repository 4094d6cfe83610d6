package audit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"hiretrack/pkg/domain"
	"hiretrack/pkg/requestcontext"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPublisherStampsAndWorkerDelivers(t *testing.T) {
	queue := make(chan Event, 4)
	sink := NewMemorySink()
	pub := NewPublisher(queue, discard())

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)
	ctx = requestcontext.WithRequestID(ctx, "req-1")
	ctx = requestcontext.WithActor(ctx, domain.Actor{UserID: 9, Role: domain.RoleHR})

	require.NoError(t, pub.Emit(ctx, Event{Action: EventJobPosted, Subject: "job:1"}))
	close(queue)

	require.NoError(t, NewWorker(sink, queue, discard()).Run(context.Background()))

	events := sink.Events()
	require.Len(t, events, 1)
	e := events[0]
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, now, e.Timestamp)
	assert.Equal(t, "req-1", e.RequestID)
	assert.Equal(t, "9", e.ActorID)
	assert.Equal(t, "HR", e.ActorRole)
}

func TestPublisherDropsWhenQueueFull(t *testing.T) {
	queue := make(chan Event, 1)
	pub := NewPublisher(queue, discard())

	require.NoError(t, pub.Emit(context.Background(), Event{Action: EventJobPosted}))
	require.NoError(t, pub.Emit(context.Background(), Event{Action: EventJobUpdated}))
	assert.Len(t, queue, 1)
}

func TestWorkerDrainsOnCancel(t *testing.T) {
	queue := make(chan Event, 2)
	queue <- Event{Action: EventJobPosted}
	queue <- Event{Action: EventJobUpdated}
	sink := NewMemorySink()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, NewWorker(sink, queue, discard()).Run(ctx))
	assert.Len(t, sink.Events(), 2)
}

type fakeProducer struct {
	records []*kgo.Record
	err     error
}

func (f *fakeProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	f.records = append(f.records, rs...)
	results := make(kgo.ProduceResults, 0, len(rs))
	for _, r := range rs {
		results = append(results, kgo.ProduceResult{Record: r, Err: f.err})
	}
	return results
}

func TestKafkaSink(t *testing.T) {
	t.Run("keys records by subject", func(t *testing.T) {
		p := &fakeProducer{}
		sink := NewKafkaSink(p, "audit")
		require.NoError(t, sink.Write(context.Background(), Event{Action: EventApplicationCreated, Subject: "application:4"}))

		require.Len(t, p.records, 1)
		assert.Equal(t, "audit", p.records[0].Topic)
		assert.Equal(t, []byte("application:4"), p.records[0].Key)
		assert.Contains(t, string(p.records[0].Value), `"action":"application_created"`)
	})

	t.Run("surfaces produce errors", func(t *testing.T) {
		sink := NewKafkaSink(&fakeProducer{err: errors.New("broker down")}, "audit")
		assert.Error(t, sink.Write(context.Background(), Event{Action: EventJobPosted}))
	})
}

func TestMultiSinkReturnsFirstError(t *testing.T) {
	mem := NewMemorySink()
	failing := NewKafkaSink(&fakeProducer{err: errors.New("down")}, "audit")
	err := MultiSink{NewLogSink(discard()), failing, mem}.Write(context.Background(), Event{Action: EventJobPosted})
	assert.Error(t, err)
	assert.Len(t, mem.Events(), 1)
}
