package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/amankumarsingh77/video-containers/internal/usage"
)

type kafkaRecorder struct {
	producer sarama.SyncProducer
	topic    string
}

// NewKafkaRecorder publishes usage events keyed by account, so one account's events stay ordered.
func NewKafkaRecorder(producer sarama.SyncProducer, topic string) usage.Recorder {
	return &kafkaRecorder{producer: producer, topic: topic}
}

func (k *kafkaRecorder) Record(ctx context.Context, event usage.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode usage event: %w", err)
	}
	msg := &sarama.ProducerMessage{
		Topic: k.topic,
		Key:   sarama.StringEncoder(event.AccountID),
		Value: sarama.ByteEncoder(value),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event"), Value: []byte(event.Type)},
		},
	}
	if _, _, err = k.producer.SendMessage(msg); err != nil {
		return fmt.Errorf("failed to send usage event for %s: %w", event.Name, err)
	}
	return nil
}
