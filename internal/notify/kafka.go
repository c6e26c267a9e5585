package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"luckydraw/internal/draw/models"
)

// DefaultTopic is the winner-selected event topic.
const DefaultTopic = "draw.winner-selected"

// KafkaEmitter publishes winner-selected events to Kafka. Events are keyed by
// draw ID so per-draw ordering holds within a partition.
type KafkaEmitter struct {
	client *kgo.Client
	topic  string
}

// NewKafkaEmitter connects to the brokers and ensures the topic exists.
func NewKafkaEmitter(ctx context.Context, brokers []string, topic string) (*KafkaEmitter, error) {
	if topic == "" {
		topic = DefaultTopic
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchMaxBytes(1<<20),
		kgo.RecordRetries(3),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}

	if err := ensureTopic(ctx, client, topic); err != nil {
		client.Close()
		return nil, err
	}
	return &KafkaEmitter{client: client, topic: topic}, nil
}

func ensureTopic(ctx context.Context, client *kgo.Client, topic string) error {
	admin := kadm.NewClient(client)
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	resps, err := admin.CreateTopics(ctx, 1, 1, nil, topic)
	if err != nil {
		return fmt.Errorf("create topic %q: %w", topic, err)
	}
	for _, resp := range resps {
		// Already-exists is fine; any other per-topic error is not.
		if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %q: %w", topic, resp.Err)
		}
	}
	return nil
}

// EmitWinnerSelected produces the event synchronously. Callers treat a
// returned error as log-and-continue; the resolution is already committed.
func (e *KafkaEmitter) EmitWinnerSelected(ctx context.Context, event models.WinnerSelected) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode winner event: %w", err)
	}
	record := &kgo.Record{
		Topic: e.topic,
		Key:   []byte(event.DrawID.String()),
		Value: payload,
	}
	if err := e.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce winner event: %w", err)
	}
	return nil
}

// Close flushes and releases the underlying client.
func (e *KafkaEmitter) Close() {
	e.client.Close()
}
