package domain

import "time"

// ComplaintStatus enumerates lifecycle states for complaints.
type ComplaintStatus string

const (
	ComplaintStatusOpen       ComplaintStatus = "Open"
	ComplaintStatusPending    ComplaintStatus = "Pending"
	ComplaintStatusInProgress ComplaintStatus = "In Progress"
	ComplaintStatusResolved   ComplaintStatus = "Resolved"
	ComplaintStatusRejected   ComplaintStatus = "Rejected"
	ComplaintStatusClosed     ComplaintStatus = "Closed"
	ComplaintStatusWithdrawn  ComplaintStatus = "Withdrawn"
)

// ComplaintPriority enumerates urgency levels.
type ComplaintPriority string

const (
	ComplaintPriorityLow    ComplaintPriority = "Low"
	ComplaintPriorityMedium ComplaintPriority = "Medium"
	ComplaintPriorityHigh   ComplaintPriority = "High"
)

// EditWindow is how long after creation the submitter may revise a complaint.
const EditWindow = 24 * time.Hour

// Complaint is the aggregate for filed complaints.
type Complaint struct {
	ID             int64
	OrganizationID int64
	DepartmentID   *int64
	SubmitterID    *int64
	Title          string
	Description    string
	Priority       ComplaintPriority
	Status         ComplaintStatus
	IsAnonymous    bool
	AttachmentRef  *string
	TrackingCode   string
	Votes          int
	CreatedAt      time.Time
	EditedAt       *time.Time
	WithdrawnAt    *time.Time
}

// organizationTargets are the statuses an organization may set directly.
// Withdrawn is reserved for the submitter.
var organizationTargets = map[ComplaintStatus]struct{}{
	ComplaintStatusOpen:       {},
	ComplaintStatusPending:    {},
	ComplaintStatusInProgress: {},
	ComplaintStatusResolved:   {},
	ComplaintStatusRejected:   {},
	ComplaintStatusClosed:     {},
}

var editableStatuses = map[ComplaintStatus]struct{}{
	ComplaintStatusOpen:    {},
	ComplaintStatusPending: {},
}

// IsOrganizationTarget reports whether an organization may move a complaint to status.
func IsOrganizationTarget(status ComplaintStatus) bool {
	_, ok := organizationTargets[status]
	return ok
}

// IsValidPriority reports whether p is a known priority.
func IsValidPriority(p ComplaintPriority) bool {
	switch p {
	case ComplaintPriorityLow, ComplaintPriorityMedium, ComplaintPriorityHigh:
		return true
	}
	return false
}

// Editable reports whether title and description may still change in the current status.
func (c *Complaint) Editable() bool {
	_, ok := editableStatuses[c.Status]
	return ok
}

// IsSubmitter reports whether actor filed the complaint under their own account.
func (c *Complaint) IsSubmitter(actor Actor) bool {
	return c.SubmitterID != nil && actor.IsUser(*c.SubmitterID)
}

// IsOwnedBy reports whether actor is the organization the complaint was filed against.
func (c *Complaint) IsOwnedBy(actor Actor) bool {
	return actor.IsOrganization(c.OrganizationID)
}

// WithinEditWindow reports whether now is at most EditWindow after creation.
func (c *Complaint) WithinEditWindow(now time.Time) bool {
	return now.Sub(c.CreatedAt) <= EditWindow
}

// Restorable reports whether a withdrawn complaint is still inside the retention window.
func (c *Complaint) Restorable(now time.Time, retention time.Duration) bool {
	if c.Status != ComplaintStatusWithdrawn || c.WithdrawnAt == nil {
		return false
	}
	return now.Sub(*c.WithdrawnAt) < retention
}
