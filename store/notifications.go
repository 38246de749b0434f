package store

import (
	"context"
	"database/sql"

	"service-marketplace/models"
)

type NotificationStore struct {
	DB *sql.DB
}

func NewNotificationStore(db *sql.DB) *NotificationStore {
	return &NotificationStore{DB: db}
}

// Append persists a notification. Clients that poll instead of holding a
// live connection observe the row on their next fetch.
func (s *NotificationStore) Append(ctx context.Context, n *models.Notification) error {
	return s.DB.QueryRowContext(ctx,
		`INSERT INTO notifications (email, event, payload) VALUES ($1, $2, $3) RETURNING id`,
		n.Email, n.Event, n.Payload,
	).Scan(&n.ID)
}

// ListByEmail returns the identity's notifications, newest first.
func (s *NotificationStore) ListByEmail(ctx context.Context, email string) ([]models.Notification, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, email, event, payload FROM notifications WHERE email=$1 ORDER BY id DESC`,
		email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.Email, &n.Event, &n.Payload); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
