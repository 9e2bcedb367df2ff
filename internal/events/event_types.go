package events

import (
	"time"

	"github.com/civicdesk/complaint-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventComplaintStatusChanged EventType = "complaint.status_changed"
	EventComplaintWithdrawn     EventType = "complaint.withdrawn"
	EventComplaintRestored      EventType = "complaint.restored"
	EventComplaintEdited        EventType = "complaint.edited"
	EventComplaintVoted         EventType = "complaint.voted"
)

// AllEventTypes lists every event the complaint services publish.
var AllEventTypes = []EventType{
	EventComplaintStatusChanged,
	EventComplaintWithdrawn,
	EventComplaintRestored,
	EventComplaintEdited,
	EventComplaintVoted,
}

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Kind domain.ActorKind `json:"kind"`
	ID   *int64           `json:"id,omitempty"`
}

// ActorFrom converts a resolved domain actor. Anonymous tokens never leave the process.
func ActorFrom(a domain.Actor) Actor {
	out := Actor{Kind: a.Kind}
	if a.Authenticated() {
		id := a.ID
		out.ID = &id
	}
	return out
}

// Event represents a domain event emitted by services after commit.
type Event struct {
	ID             string    `json:"id"`
	Type           EventType `json:"type"`
	ComplaintID    int64     `json:"complaint_id"`
	OrganizationID int64     `json:"organization_id"`
	SubmitterID    *int64    `json:"submitter_id,omitempty"`
	Actor          Actor     `json:"actor"`
	Timestamp      time.Time `json:"timestamp"`
	Payload        any       `json:"payload,omitempty"`
}

// StatusChangedPayload payload.
type StatusChangedPayload struct {
	OldStatus domain.ComplaintStatus `json:"old_status"`
	NewStatus domain.ComplaintStatus `json:"new_status"`
}

// WithdrawnPayload payload.
type WithdrawnPayload struct {
	PreviousStatus domain.ComplaintStatus `json:"previous_status"`
	RetentionDays  int                    `json:"retention_days"`
}

// RestoredPayload payload.
type RestoredPayload struct {
	WithdrawnAt time.Time `json:"withdrawn_at"`
}

// EditedPayload payload.
type EditedPayload struct {
	EditID int64 `json:"edit_id"`
}

// VotedPayload payload.
type VotedPayload struct {
	Votes int  `json:"votes"`
	Liked bool `json:"liked"`
}
