package event

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/internal/domain"
	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/pkg/kafka"
	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProducer struct {
	failures int
	calls    int
	messages []*kafka.Message
	closed   bool
}

func (f *fakeProducer) Produce(ctx context.Context, msg *kafka.Message) error {
	f.calls++
	if f.calls <= f.failures {
		return errors.New("broker unavailable")
	}
	f.messages = append(f.messages, msg)
	return nil
}

func (f *fakeProducer) Close() { f.closed = true }

func fastRetry() *retry.Config {
	return &retry.Config{MaxRetries: 2, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond}
}

func TestKafkaPublisher_Publish(t *testing.T) {
	producer := &fakeProducer{}
	pub := NewPublisherWithProducer(producer, &Config{Topic: "events", ServiceName: "tvm-test", Retry: fastRetry()})

	progress := domain.NewStudentProgress(7, 2, 3)
	progress.TransitionTo(domain.ProgressCompleted, time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC))
	evt := domain.NewLevelCompletedEvent("evt-1", progress, time.Now())

	require.NoError(t, pub.Publish(context.Background(), evt))
	require.Len(t, producer.messages, 1)

	msg := producer.messages[0]
	assert.Equal(t, "events", msg.Topic)
	assert.Equal(t, "7", string(msg.Key))
	assert.Equal(t, "level.completed", msg.Headers["event_type"])
	assert.Equal(t, "evt-1", msg.Headers["event_id"])
	assert.Equal(t, "tvm-test", msg.Headers["source"])

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(msg.Value, &body))
	assert.Equal(t, "level.completed", body["eventType"])
	payload := body["payload"].(map[string]interface{})
	assert.Equal(t, float64(3), payload["levelId"])
}

func TestKafkaPublisher_RetriesTransientFailures(t *testing.T) {
	producer := &fakeProducer{failures: 2}
	pub := NewPublisherWithProducer(producer, &Config{Retry: fastRetry()})

	user := &domain.User{ID: 5, Email: "kid@tvm.io", Role: domain.RoleStudent}
	require.NoError(t, pub.Publish(context.Background(), domain.NewUserRegisteredEvent("evt-2", user, time.Now())))
	assert.Equal(t, 3, producer.calls)
	assert.Len(t, producer.messages, 1)
	assert.Equal(t, "tvm.learning.events", producer.messages[0].Topic)
}

func TestKafkaPublisher_GivesUp(t *testing.T) {
	producer := &fakeProducer{failures: 10}
	pub := NewPublisherWithProducer(producer, &Config{Retry: fastRetry()})

	user := &domain.User{ID: 5}
	err := pub.Publish(context.Background(), domain.NewUserRegisteredEvent("evt-3", user, time.Now()))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "broker unavailable")
	assert.Equal(t, 3, producer.calls)
}

func TestKafkaPublisher_Close(t *testing.T) {
	producer := &fakeProducer{}
	pub := NewPublisherWithProducer(producer, &Config{})
	require.NoError(t, pub.Close())
	assert.True(t, producer.closed)
}

func TestNewKafkaPublisher_RequiresBrokers(t *testing.T) {
	_, err := NewKafkaPublisher(context.Background(), &Config{})
	assert.Error(t, err)

	_, err = NewKafkaPublisher(context.Background(), nil)
	assert.Error(t, err)
}

func TestNoOpPublisher(t *testing.T) {
	pub := NewNoOpPublisher()
	assert.NoError(t, pub.Publish(context.Background(), &domain.Event{}))
	assert.NoError(t, pub.Close())
}
