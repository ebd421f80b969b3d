package worker

import (
	"sync"
	"time"

	"wallet-escrow-service/internal/models"

	"github.com/sirupsen/logrus"
)

// BatchProcessor buffers events from one partition and flushes them as
// notification rows on a timer.
type BatchProcessor struct {
	partitionID   int
	notifier      *NotificationWriter
	events        []models.WalletEvent
	mutex         sync.Mutex
	lastProcessed time.Time
}

func NewBatchProcessor(partitionID int, notifier *NotificationWriter) *BatchProcessor {
	return &BatchProcessor{
		partitionID:   partitionID,
		notifier:      notifier,
		events:        make([]models.WalletEvent, 0),
		lastProcessed: time.Now(),
	}
}

func (bp *BatchProcessor) AddEvent(event models.WalletEvent) {
	bp.mutex.Lock()
	defer bp.mutex.Unlock()

	bp.events = append(bp.events, event)
}

func (bp *BatchProcessor) ProcessBatch() {
	bp.mutex.Lock()
	defer bp.mutex.Unlock()

	bp.processLocked()
}

func (bp *BatchProcessor) ProcessRemaining() {
	bp.mutex.Lock()
	defer bp.mutex.Unlock()

	if len(bp.events) > 0 {
		logrus.WithFields(logrus.Fields{
			"partition": bp.partitionID,
			"events":    len(bp.events),
		}).Info("processing remaining events before shutdown")
		bp.processLocked()
	}
}

// processLocked flushes the buffer. Callers hold the mutex. Failed
// batches are kept for the next tick; the derived notification ids keep
// the retry idempotent.
func (bp *BatchProcessor) processLocked() {
	if len(bp.events) == 0 {
		return
	}

	if err := bp.notifier.WriteNotifications(bp.events); err != nil {
		logrus.WithError(err).WithField("partition", bp.partitionID).
			Error("failed to write notifications, keeping batch")
		return
	}

	logrus.WithFields(logrus.Fields{
		"partition": bp.partitionID,
		"events":    len(bp.events),
	}).Debug("batch processed")

	bp.events = bp.events[:0]
	bp.lastProcessed = time.Now()
}
