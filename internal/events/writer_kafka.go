package events

import (
	"context"

	"github.com/IBM/sarama"
	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// KafkaWriter sends events as structured cloudevents json to a kafka topic.
type KafkaWriter struct {
	producer sarama.SyncProducer
}

func NewKafkaWriter(brokers []string, cfg *sarama.Config) (*KafkaWriter, error) {
	if cfg == nil {
		cfg = sarama.NewConfig()
	}
	// required by the sync producer
	cfg.Producer.Return.Successes = true

	p, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}

	return NewKafkaWriterWithProducer(p), nil
}

func NewKafkaWriterWithProducer(p sarama.SyncProducer) *KafkaWriter {
	return &KafkaWriter{producer: p}
}

func (k *KafkaWriter) Write(ctx context.Context, topic string, e cloudevents.Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}

	partition, offset, err := k.producer.SendMessage(&sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(e.ID()),
		Value: sarama.ByteEncoder(data),
		Headers: []sarama.RecordHeader{
			{Key: []byte("content-type"), Value: []byte(cloudevents.ApplicationCloudEventsJSON)},
		},
	})
	if err != nil {
		return err
	}

	zap.S().Named("kafka_writer").Debugw("event sent", "type", e.Type(), "topic", topic, "partition", partition, "offset", offset)
	return nil
}

func (k *KafkaWriter) Close(_ context.Context) error {
	return k.producer.Close()
}
