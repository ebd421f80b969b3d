package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"wallet-escrow-service/internal/config"
	"wallet-escrow-service/internal/database"
	"wallet-escrow-service/internal/repositories/postgresrepo"
	"wallet-escrow-service/internal/worker"

	"github.com/sirupsen/logrus"
)

// Notifier is the consumer-side application: it reads wallet events
// from Kafka and materializes user notifications.
type Notifier struct {
	cfg              *config.Config
	partitionManager *worker.PartitionManager
}

func NewNotifier() (*Notifier, error) {
	n := new(Notifier)

	// Initialize config
	n.cfg = config.New()

	// Connect to database
	db, err := database.NewPostgres(n.cfg.Postgres.URL)
	if err != nil {
		return nil, fmt.Errorf("database connection error: %w", err)
	}

	// Initialize repositories and worker
	store := postgresrepo.NewStore(db)
	notificationWriter := worker.NewNotificationWriter(store)
	n.partitionManager = worker.NewPartitionManager(n.cfg, notificationWriter)

	return n, nil
}

func (n *Notifier) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		logrus.Info("received shutdown signal")
		cancel()
	}()

	return n.partitionManager.Start(ctx)
}
