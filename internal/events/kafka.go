package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Kafka publishes events to the indexer topic. Produces are async; Close
// flushes what is still in flight so shutdown does not drop events.
type Kafka struct {
	client *kgo.Client
	logger *slog.Logger
}

// NewKafka connects to the brokers and returns a publisher bound to topic.
func NewKafka(brokers []string, topic string, logger *slog.Logger) (*Kafka, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, err
	}
	return &Kafka{client: client, logger: logger}, nil
}

func (k *Kafka) Emit(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	value, err := json.Marshal(event)
	if err != nil {
		k.logger.ErrorContext(ctx, "event marshal failed",
			"type", event.Type,
			"key", event.Key,
			"error", err,
		)
		return
	}
	record := &kgo.Record{
		Key:   []byte(event.Key),
		Value: value,
	}
	k.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			k.logger.Error("event produce failed",
				"type", event.Type,
				"key", event.Key,
				"error", err,
			)
		}
	})
}

// Close flushes pending produces before releasing the client.
func (k *Kafka) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := k.client.Flush(ctx)
	k.client.Close()
	return err
}
