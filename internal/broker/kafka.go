package broker

import (
	"wallet-escrow-service/internal/config"

	"github.com/segmentio/kafka-go"
)

func NewKafkaWriter(cfg config.KafkaConfig) (*kafka.Writer, error) {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},    // Hash on the message key so one wallet's events stay ordered
		RequiredAcks: kafka.RequireOne, // Wait for acknowledgement from leader
		Async:        false,            // Synchronous writing for reliability
		MaxAttempts:  10,
	}

	return writer, nil
}
