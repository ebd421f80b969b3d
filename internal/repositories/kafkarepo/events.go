package kafkarepo

import (
	"context"
	"encoding/json"
	"fmt"

	"wallet-escrow-service/internal/models"

	"github.com/segmentio/kafka-go"
)

type EventRepository struct {
	writer *kafka.Writer
}

func NewEventRepository(writer *kafka.Writer) *EventRepository {
	return &EventRepository{
		writer: writer,
	}
}

// Publish sends wallet/auction events to Kafka after the owning SQL
// transaction has committed. Messages are keyed by wallet id so events
// touching the same wallet keep their order.
func (r *EventRepository) Publish(ctx context.Context, events ...models.WalletEvent) error {
	if len(events) == 0 {
		return nil
	}

	messages := make([]kafka.Message, 0, len(events))
	for _, event := range events {
		value, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("failed to marshal wallet event: %w", err)
		}
		messages = append(messages, kafka.Message{
			Key:   []byte(event.WalletID),
			Value: value,
		})
	}

	if err := r.writer.WriteMessages(ctx, messages...); err != nil {
		return fmt.Errorf("failed to write events to kafka: %w", err)
	}

	return nil
}
