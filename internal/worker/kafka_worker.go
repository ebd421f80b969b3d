package worker

import (
	"context"
	"encoding/json"
	"time"

	"wallet-escrow-service/internal/models"

	"github.com/IBM/sarama"
	"github.com/sirupsen/logrus"
)

func (m *PartitionManager) runWorker(ctx context.Context, partition int, partitionConsumer sarama.PartitionConsumer, batchProcessor *BatchProcessor) {
	ticker := time.NewTicker(m.cfg.Worker.ProcessingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logrus.WithField("partition", partition).Info("shutdown signal received")
			batchProcessor.ProcessRemaining()
			return

		case msg := <-partitionConsumer.Messages():
			var event models.WalletEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				logrus.WithError(err).WithField("partition", partition).
					Warn("failed to unmarshal event")
				continue
			}
			batchProcessor.AddEvent(event)

		case err := <-partitionConsumer.Errors():
			logrus.WithError(err).WithField("partition", partition).Error("kafka error")

		case <-ticker.C:
			batchProcessor.ProcessBatch()
		}
	}
}
