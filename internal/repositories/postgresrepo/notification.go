package postgresrepo

import (
	"context"
	"fmt"
	"strings"

	"wallet-escrow-service/internal/models"
)

// InsertNotifications bulk-inserts notification rows produced by the
// notifier worker. ON CONFLICT DO NOTHING makes redelivered events
// harmless: the id is derived from the event id.
func (s *Store) InsertNotifications(ctx context.Context, notifications []models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	args := make([]interface{}, 0, 4*len(notifications))
	values := make([]string, 0, len(notifications))

	for i, n := range notifications {
		base := i*4 + 1
		values = append(values,
			fmt.Sprintf("($%d::uuid,$%d::text,$%d::text,$%d::jsonb,NOW())",
				base, base+1, base+2, base+3,
			),
		)
		args = append(args, n.ID, n.UserID, n.Kind, string(n.Payload))
	}

	query := fmt.Sprintf(`
		INSERT INTO notifications (id, user_id, kind, payload, created_at)
		VALUES %s
		ON CONFLICT (id) DO NOTHING
	`, strings.Join(values, ","))

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert notifications: %w", err)
	}
	return nil
}

// ListNotifications returns a user's notifications, newest first.
func (s *Store) ListNotifications(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	notifications := []models.Notification{}
	query := `
		SELECT id, user_id, kind, payload, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	if err := s.db.SelectContext(ctx, &notifications, query, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}
