package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/twmb/franz-go/pkg/kgo"
)

// LogSink writes events as structured log lines tagged log_type=audit.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Write(ctx context.Context, e Event) error {
	s.logger.InfoContext(ctx, string(e.Action),
		"log_type", "audit",
		"event_id", e.ID,
		"actor_id", e.ActorID,
		"actor_role", e.ActorRole,
		"subject", e.Subject,
		"detail", e.Detail,
		"request_id", e.RequestID,
	)
	return nil
}

// Producer is the part of *kgo.Client used by KafkaSink.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// KafkaSink publishes events as JSON records keyed by subject, so events for
// one entity stay ordered within a partition.
type KafkaSink struct {
	producer Producer
	topic    string
}

func NewKafkaSink(producer Producer, topic string) *KafkaSink {
	return &KafkaSink{producer: producer, topic: topic}
}

func (s *KafkaSink) Write(ctx context.Context, e Event) error {
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(e.Subject),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "action", Value: []byte(e.Action)},
		},
	}
	if err := s.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

// MemorySink keeps events in memory. Used by tests and local runs.
type MemorySink struct {
	mu     sync.Mutex
	events []Event
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Write(_ context.Context, e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

func (s *MemorySink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// MultiSink writes to each sink in order and returns the first error.
type MultiSink []Sink

func (m MultiSink) Write(ctx context.Context, e Event) error {
	var first error
	for _, s := range m {
		if err := s.Write(ctx, e); err != nil && first == nil {
			first = err
		}
	}
	return first
}
