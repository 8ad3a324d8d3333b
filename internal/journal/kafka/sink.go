// Package kafka publishes journal events to a Kafka topic, keyed by service
// so that every event of a service lands on the same partition.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"mss/internal/journal"
)

// Producer is the subset of *kgo.Client used by the sink.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

type Sink struct {
	producer Producer
	topic    string
}

var _ journal.Journal = (*Sink)(nil)

func NewSink(producer Producer, topic string) *Sink {
	return &Sink{producer: producer, topic: topic}
}

// NewClient connects to brokers with topic as default produce topic.
func NewClient(brokers []string, topic string) (*kgo.Client, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.AllowAutoTopicCreation(),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return client, nil
}

// EnsureTopic creates topic with the broker default replication factor. An
// existing topic is left untouched.
func EnsureTopic(ctx context.Context, client *kgo.Client, topic string, partitions int32) error {
	responses, err := kadm.NewClient(client).CreateTopics(ctx, partitions, -1, nil, topic)
	if err != nil {
		return fmt.Errorf("create kafka topic %s: %w", topic, err)
	}
	for _, r := range responses {
		if r.Err != nil && !errors.Is(r.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create kafka topic %s: %w", r.Topic, r.Err)
		}
	}
	return nil
}

func (s *Sink) Record(ctx context.Context, e journal.Event) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode journal event %s: %w", e.ID, err)
	}
	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(e.ServiceID()),
		Value: raw,
		Headers: []kgo.RecordHeader{
			{Key: "type", Value: []byte(e.Type)},
		},
	}
	if err := s.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce journal event %s: %w", e.ID, err)
	}
	return nil
}
