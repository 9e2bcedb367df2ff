package dto

import (
	"time"

	"github.com/civicdesk/complaint-service/internal/domain"
)

// NotificationResponse is one inbox entry.
type NotificationResponse struct {
	ID          int64                   `json:"id"`
	ComplaintID *int64                  `json:"complaintId"`
	Type        domain.NotificationType `json:"type"`
	Message     string                  `json:"message"`
	CreatedAt   time.Time               `json:"createdAt"`
	Read        bool                    `json:"read"`
}

// NewNotificationResponses maps inbox entries.
func NewNotificationResponses(items []domain.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(items))
	for _, n := range items {
		out = append(out, NotificationResponse{
			ID:          n.ID,
			ComplaintID: n.ComplaintID,
			Type:        n.Type,
			Message:     n.Message,
			CreatedAt:   n.CreatedAt,
			Read:        n.ReadAt != nil,
		})
	}
	return out
}
