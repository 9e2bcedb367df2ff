package dto

import (
	"time"

	"github.com/civicdesk/complaint-service/internal/domain"
)

// CreateComplaintRequest payload.
type CreateComplaintRequest struct {
	OrganizationID int64                    `json:"organizationId"`
	DepartmentID   *int64                   `json:"departmentId"`
	Title          string                   `json:"title"`
	Description    string                   `json:"description"`
	Priority       domain.ComplaintPriority `json:"priority"`
	IsAnonymous    *bool                    `json:"isAnonymous"`
	AttachmentRef  *string                  `json:"attachmentRef"`
}

// UpdateComplaintRequest is the PATCH body: either a status change or a content edit.
type UpdateComplaintRequest struct {
	Status      *domain.ComplaintStatus `json:"status"`
	Title       *string                 `json:"title"`
	Description *string                 `json:"description"`
}

// ComplaintResponse is the full complaint view.
type ComplaintResponse struct {
	ID             int64                    `json:"id"`
	OrganizationID int64                    `json:"organizationId"`
	DepartmentID   *int64                   `json:"departmentId"`
	UserID         *int64                   `json:"userId"`
	Title          string                   `json:"title"`
	Description    string                   `json:"description"`
	Priority       domain.ComplaintPriority `json:"priority"`
	Status         domain.ComplaintStatus   `json:"status"`
	IsAnonymous    bool                     `json:"isAnonymous"`
	AttachmentRef  *string                  `json:"attachmentRef"`
	TrackingCode   string                   `json:"trackingCode"`
	Votes          int                      `json:"votes"`
	CreatedAt      time.Time                `json:"createdAt"`
	EditedAt       *time.Time               `json:"editedAt"`
	WithdrawnAt    *time.Time               `json:"withdrawnAt"`
}

// TrackingResponse is the public view returned for a tracking-code lookup.
type TrackingResponse struct {
	TrackingCode string                 `json:"trackingCode"`
	Title        string                 `json:"title"`
	Status       domain.ComplaintStatus `json:"status"`
	Votes        int                    `json:"votes"`
	CreatedAt    time.Time              `json:"createdAt"`
}

// ComplaintEditResponse is one entry of the edit history.
type ComplaintEditResponse struct {
	ID             int64     `json:"id"`
	OldTitle       string    `json:"oldTitle"`
	OldDescription string    `json:"oldDescription"`
	NewTitle       string    `json:"newTitle"`
	NewDescription string    `json:"newDescription"`
	EditedBy       int64     `json:"editedBy"`
	EditedAt       time.Time `json:"editedAt"`
}

// NewComplaintResponse maps a domain complaint.
func NewComplaintResponse(c *domain.Complaint) ComplaintResponse {
	return ComplaintResponse{
		ID:             c.ID,
		OrganizationID: c.OrganizationID,
		DepartmentID:   c.DepartmentID,
		UserID:         c.SubmitterID,
		Title:          c.Title,
		Description:    c.Description,
		Priority:       c.Priority,
		Status:         c.Status,
		IsAnonymous:    c.IsAnonymous,
		AttachmentRef:  c.AttachmentRef,
		TrackingCode:   c.TrackingCode,
		Votes:          c.Votes,
		CreatedAt:      c.CreatedAt,
		EditedAt:       c.EditedAt,
		WithdrawnAt:    c.WithdrawnAt,
	}
}

// NewTrackingResponse maps a domain complaint to its public view.
func NewTrackingResponse(c *domain.Complaint) TrackingResponse {
	return TrackingResponse{
		TrackingCode: c.TrackingCode,
		Title:        c.Title,
		Status:       c.Status,
		Votes:        c.Votes,
		CreatedAt:    c.CreatedAt,
	}
}

// NewComplaintEditResponses maps edit records.
func NewComplaintEditResponses(edits []domain.ComplaintEdit) []ComplaintEditResponse {
	out := make([]ComplaintEditResponse, 0, len(edits))
	for _, e := range edits {
		out = append(out, ComplaintEditResponse{
			ID:             e.ID,
			OldTitle:       e.OldTitle,
			OldDescription: e.OldDescription,
			NewTitle:       e.NewTitle,
			NewDescription: e.NewDescription,
			EditedBy:       e.EditorID,
			EditedAt:       e.EditedAt,
		})
	}
	return out
}
