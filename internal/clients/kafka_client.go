package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/spacesedan/honestreviews/config"
	"github.com/spacesedan/honestreviews/internal/models"
)

// EventPublisher announces finished analyses to downstream consumers.
type EventPublisher struct {
	producer *kafka.Producer
	topic    string
}

func NewEventPublisher(cfg config.KafkaConfig) (*EventPublisher, error) {
	slog.Info("[KafkaClient] Connecting to Kafka", slog.String("broker", cfg.Broker))

	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":   cfg.Broker,
		"security.protocol":   "PLAINTEXT",
		"api.version.request": "true",
		"acks":                "1",
	})
	if err != nil {
		return nil, fmt.Errorf("[KafkaClient] failed to create producer: %w", err)
	}

	slog.Info("[KafkaClient] Kafka Producer initialized", slog.String("topic", cfg.Topic))
	return &EventPublisher{producer: p, topic: cfg.Topic}, nil
}

// PublishAnalysisCompleted blocks until the broker acknowledges the event
// or ctx is done.
func (ep *EventPublisher) PublishAnalysisCompleted(ctx context.Context, event models.AnalysisCompletedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("[KafkaClient] failed to marshal event: %w", err)
	}

	deliveryChan := make(chan kafka.Event, 1)
	err = ep.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &ep.topic, Partition: kafka.PartitionAny},
		Key:            []byte(event.Product),
		Value:          payload,
	}, deliveryChan)
	if err != nil {
		return fmt.Errorf("[KafkaClient] failed to produce event: %w", err)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case e := <-deliveryChan:
		m, ok := e.(*kafka.Message)
		if !ok {
			return fmt.Errorf("[KafkaClient] unexpected delivery event %v", e)
		}
		if m.TopicPartition.Error != nil {
			return fmt.Errorf("[KafkaClient] delivery failed: %w", m.TopicPartition.Error)
		}
	}

	slog.Info("[KafkaClient] Published analysis event",
		slog.String("topic", ep.topic),
		slog.String("product", event.Product),
		slog.String("request_id", event.RequestID))
	return nil
}

func (ep *EventPublisher) Close() {
	if ep.producer != nil {
		ep.producer.Flush(5000)
		ep.producer.Close()
		slog.Info("[KafkaClient] Kafka producer shut down")
	}
}
