package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/internal/domain"
	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/pkg/kafka"
	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/pkg/retry"
)

// Publisher defines the interface for publishing domain events
type Publisher interface {
	// Publish writes an event to the event stream
	Publish(ctx context.Context, event *domain.Event) error
	// Close releases the underlying client
	Close() error
}

// Producer is the subset of *kafka.Producer the publisher needs
type Producer interface {
	Produce(ctx context.Context, msg *kafka.Message) error
	Close()
}

// Config contains configuration for the Kafka publisher
type Config struct {
	Brokers     []string
	Topic       string
	ServiceName string
	ClientID    string
	Retry       *retry.Config
}

// KafkaPublisher implements Publisher using Kafka
type KafkaPublisher struct {
	producer    Producer
	topic       string
	serviceName string
	retrier     *retry.Retrier
}

// NewKafkaPublisher connects to the brokers and creates a publisher
func NewKafkaPublisher(ctx context.Context, cfg *Config) (*KafkaPublisher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("event publisher config is required")
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "tvm-producer"
	}

	producer, err := kafka.NewProducer(ctx, &kafka.ProducerConfig{
		Brokers:       cfg.Brokers,
		ClientID:      clientID,
		MaxRetries:    3,
		RetryInterval: 2 * time.Second,
		Linger:        10 * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return NewPublisherWithProducer(producer, cfg), nil
}

// NewPublisherWithProducer builds a publisher over an existing producer
func NewPublisherWithProducer(producer Producer, cfg *Config) *KafkaPublisher {
	topic := cfg.Topic
	if topic == "" {
		topic = "tvm.learning.events"
	}
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "tvm-api"
	}
	retryCfg := cfg.Retry
	if retryCfg == nil {
		retryCfg = &retry.Config{MaxRetries: 2, InitialInterval: 100 * time.Millisecond}
	}

	return &KafkaPublisher{
		producer:    producer,
		topic:       topic,
		serviceName: serviceName,
		retrier:     retry.New(retryCfg),
	}
}

// Publish marshals the event and produces it keyed by its partition key
func (p *KafkaPublisher) Publish(ctx context.Context, event *domain.Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &kafka.Message{
		Topic: p.topic,
		Key:   []byte(event.Key()),
		Value: value,
		Headers: map[string]string{
			"event_type":   string(event.Type),
			"event_id":     event.ID,
			"source":       p.serviceName,
			"content_type": "application/json",
		},
		Timestamp: event.OccurredAt,
	}

	result := p.retrier.Do(ctx, func(ctx context.Context) error {
		return p.producer.Produce(ctx, msg)
	})
	if result.Err != nil {
		cause := result.LastError
		if cause == nil {
			cause = result.Err
		}
		return fmt.Errorf("failed to publish %s event: %w", event.Type, cause)
	}
	return nil
}

// Close closes the publisher
func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		p.producer.Close()
	}
	return nil
}

// NoOpPublisher discards events. Used when Kafka is disabled
type NoOpPublisher struct{}

// NewNoOpPublisher creates a new no-op publisher
func NewNoOpPublisher() *NoOpPublisher {
	return &NoOpPublisher{}
}

// Publish is a no-op
func (p *NoOpPublisher) Publish(ctx context.Context, event *domain.Event) error {
	return nil
}

// Close is a no-op
func (p *NoOpPublisher) Close() error {
	return nil
}
