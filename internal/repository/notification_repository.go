package repository

import (
	"context"
	"time"

	"github.com/civicdesk/complaint-service/internal/domain"
)

// NotificationRepository persists inbox notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListByRecipient(ctx context.Context, kind domain.RecipientKind, recipientID int64, limit int) ([]domain.Notification, error)
	CountUnread(ctx context.Context, kind domain.RecipientKind, recipientID int64) (int, error)
	// MarkRead reports false when no notification with that id belongs to the recipient.
	MarkRead(ctx context.Context, id int64, kind domain.RecipientKind, recipientID int64, at time.Time) (bool, error)
}

type notificationRepository struct {
	db DBTX
}

// NewNotificationRepository builds repository.
func NewNotificationRepository(db DBTX) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	const query = `
        INSERT INTO notifications (recipient_kind, recipient_id, complaint_id, type, message, created_at)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id`
	return r.db.QueryRow(ctx, query,
		n.RecipientKind,
		n.RecipientID,
		n.ComplaintID,
		n.Type,
		n.Message,
		n.CreatedAt,
	).Scan(&n.ID)
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, kind domain.RecipientKind, recipientID int64, limit int) ([]domain.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	const query = `
        SELECT id, recipient_kind, recipient_id, complaint_id, type, message, created_at, read_at
        FROM notifications
        WHERE recipient_kind=$1 AND recipient_id=$2
        ORDER BY created_at DESC, id DESC
        LIMIT $3`
	rows, err := r.db.Query(ctx, query, kind, recipientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Notification{}
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(
			&n.ID,
			&n.RecipientKind,
			&n.RecipientID,
			&n.ComplaintID,
			&n.Type,
			&n.Message,
			&n.CreatedAt,
			&n.ReadAt,
		); err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

func (r *notificationRepository) CountUnread(ctx context.Context, kind domain.RecipientKind, recipientID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE recipient_kind=$1 AND recipient_id=$2 AND read_at IS NULL`,
		kind, recipientID,
	).Scan(&count)
	return count, err
}

func (r *notificationRepository) MarkRead(ctx context.Context, id int64, kind domain.RecipientKind, recipientID int64, at time.Time) (bool, error) {
	const query = `
        UPDATE notifications SET read_at=COALESCE(read_at, $1)
        WHERE id=$2 AND recipient_kind=$3 AND recipient_id=$4`
	cmd, err := r.db.Exec(ctx, query, at, id, kind, recipientID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}
