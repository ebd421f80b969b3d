package worker

import (
	"context"
	"encoding/json"
	"time"

	"wallet-escrow-service/internal/models"
	"wallet-escrow-service/internal/repositories/postgresrepo"
)

// NotificationWriter turns wallet events into stored notifications.
// Notification ids reuse the event id, so Kafka redeliveries insert
// nothing new.
type NotificationWriter struct {
	store *postgresrepo.Store
}

func NewNotificationWriter(store *postgresrepo.Store) *NotificationWriter {
	return &NotificationWriter{store: store}
}

func (n *NotificationWriter) WriteNotifications(events []models.WalletEvent) error {
	notifications := make([]models.Notification, 0, len(events))
	for _, event := range events {
		kind, ok := notificationKind(event)
		if !ok {
			continue
		}

		payload, err := json.Marshal(map[string]interface{}{
			"productId":  event.ProductID,
			"orderId":    event.OrderID,
			"amount":     event.Amount,
			"prevAmount": event.PrevAmount,
			"occurredAt": event.OccurredAt,
		})
		if err != nil {
			continue
		}

		notifications = append(notifications, models.Notification{
			ID:      event.EventID,
			UserID:  event.UserID,
			Kind:    kind,
			Payload: payload,
		})
	}

	if len(notifications) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return n.store.InsertNotifications(ctx, notifications)
}

// notificationKind decides whether an event warrants a user-facing
// notification. Deposits, withdrawals and a user's own bids do not.
func notificationKind(event models.WalletEvent) (models.NotificationKind, bool) {
	switch event.Kind {
	case models.EventBidOutbid:
		return models.NotificationKindOutbid, true
	case models.EventAuctionClosed:
		if event.OrderID == "" || event.UserID == "" {
			return "", false
		}
		return models.NotificationKindAuctionWon, true
	case models.EventOrderSettled:
		return models.NotificationKindOrderSettled, true
	case models.EventOrderRefunded:
		return models.NotificationKindRefund, true
	default:
		return "", false
	}
}
