package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/samthatcode/boilerplate-project-exercisetracker/internal/observability"
)

// Publisher delivers events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, eventType, key string, payload any) error
	Close() error
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

// Publish performs no action.
func (NoopPublisher) Publish(context.Context, string, string, any) error { return nil }

// Close performs no action.
func (NoopPublisher) Close() error { return nil }

const (
	writerBatchTimeout = 50 * time.Millisecond
	writerMaxAttempts  = 3
)

type messageWriter interface {
	WriteMessages(context.Context, ...kafka.Message) error
	Close() error
}

// KafkaPublisher lazily manages one writer per topic.
type KafkaPublisher struct {
	brokers     []string
	topicPrefix string
	logger      *zap.Logger
	newWriter   func(topic string) messageWriter

	mu      sync.Mutex
	writers map[string]messageWriter
}

// NewKafkaPublisher creates a KafkaPublisher. Topics are named topicPrefix + "users" and
// topicPrefix + "exercises".
func NewKafkaPublisher(brokers []string, topicPrefix string, logger *zap.Logger) *KafkaPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &KafkaPublisher{
		brokers:     brokers,
		topicPrefix: topicPrefix,
		logger:      logger,
		writers:     make(map[string]messageWriter),
	}
	p.newWriter = p.kafkaWriter
	return p
}

// Publish encodes payload as JSON and writes it to the topic mapped to eventType.
func (p *KafkaPublisher) Publish(ctx context.Context, eventType, key string, payload any) error {
	topic, err := p.topicFor(eventType)
	if err != nil {
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s: %w", eventType, err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: body,
		Time:  time.Now().UTC(),
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventType)},
		},
	}

	if err := p.writerForTopic(topic).WriteMessages(ctx, msg); err != nil {
		observability.RecordEventFailed(topic)
		p.logger.Warn("event publish failed",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err))
		return err
	}
	observability.RecordEventPublished(topic)
	return nil
}

func (p *KafkaPublisher) topicFor(eventType string) (string, error) {
	switch eventType {
	case TypeUserCreated:
		return p.topicPrefix + "users", nil
	case TypeExerciseLogged:
		return p.topicPrefix + "exercises", nil
	default:
		return "", fmt.Errorf("unknown event type: %s", eventType)
	}
}

func (p *KafkaPublisher) writerForTopic(topic string) messageWriter {
	p.mu.Lock()
	defer p.mu.Unlock()

	if writer, ok := p.writers[topic]; ok {
		return writer
	}
	writer := p.newWriter(topic)
	p.writers[topic] = writer
	return writer
}

func (p *KafkaPublisher) kafkaWriter(topic string) messageWriter {
	return &kafka.Writer{
		Addr:         kafka.TCP(p.brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Compression:  kafka.Snappy,
		BatchSize:    1,
		BatchTimeout: writerBatchTimeout,
		MaxAttempts:  writerMaxAttempts,
	}
}

// Close releases all writers.
func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for topic, writer := range p.writers {
		if err := writer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(p.writers, topic)
	}
	return firstErr
}
