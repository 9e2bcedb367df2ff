package domain

import "time"

// NotificationType classifies persisted notifications.
type NotificationType string

const (
	NotificationStatusChanged NotificationType = "status_changed"
	NotificationWithdrawn     NotificationType = "withdrawn"
	NotificationRestored      NotificationType = "restored"
)

// RecipientKind tells whether a notification targets a user or an organization inbox.
type RecipientKind string

const (
	RecipientUser         RecipientKind = "user"
	RecipientOrganization RecipientKind = "organization"
)

// Notification is a message delivered to a user or organization inbox.
type Notification struct {
	ID            int64
	RecipientKind RecipientKind
	RecipientID   int64
	ComplaintID   *int64
	Type          NotificationType
	Message       string
	CreatedAt     time.Time
	ReadAt        *time.Time
}
