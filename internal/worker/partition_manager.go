package worker

import (
	"context"
	"fmt"
	"sync"

	"wallet-escrow-service/internal/config"

	"github.com/IBM/sarama"
	"github.com/sirupsen/logrus"
)

// PartitionManager runs one notifier worker per Kafka partition. Events
// for a wallet always land on the same partition, so per-partition
// workers preserve their order.
type PartitionManager struct {
	cfg      *config.Config
	notifier *NotificationWriter
	wg       sync.WaitGroup
}

func NewPartitionManager(cfg *config.Config, notifier *NotificationWriter) *PartitionManager {
	return &PartitionManager{
		cfg:      cfg,
		notifier: notifier,
	}
}

func (m *PartitionManager) Start(ctx context.Context) error {
	logrus.WithField("partitions", m.cfg.Kafka.Partitions).Info("starting notifier workers")

	consumer, err := sarama.NewConsumer(m.cfg.Kafka.Brokers, m.cfg.Kafka.GetSaramaConfig())
	if err != nil {
		return fmt.Errorf("failed to create Kafka consumer: %w", err)
	}
	defer consumer.Close()

	for partition := 0; partition < m.cfg.Kafka.Partitions; partition++ {
		m.wg.Add(1)
		go m.startWorkerForPartition(ctx, consumer, partition)
	}

	m.wg.Wait()
	logrus.Info("all partition workers stopped")
	return nil
}

func (m *PartitionManager) startWorkerForPartition(ctx context.Context, consumer sarama.Consumer, partition int) {
	defer m.wg.Done()

	partitionConsumer, err := consumer.ConsumePartition(
		m.cfg.Kafka.Topic,
		int32(partition),
		sarama.OffsetNewest,
	)
	if err != nil {
		logrus.WithError(err).WithField("partition", partition).
			Error("failed to create partition consumer")
		return
	}
	defer partitionConsumer.Close()

	batchProcessor := NewBatchProcessor(partition, m.notifier)

	m.runWorker(ctx, partition, partitionConsumer, batchProcessor)
}
