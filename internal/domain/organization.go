package domain

import "time"

// OrganizationVisibility controls who may interact with an organization's complaints.
type OrganizationVisibility string

const (
	VisibilityPublic  OrganizationVisibility = "Public"
	VisibilityPrivate OrganizationVisibility = "Private"
)

// Organization owns complaints. Profile management lives outside this service.
type Organization struct {
	ID         int64
	Name       string
	Slug       string
	Visibility OrganizationVisibility
	CreatedAt  time.Time
}

// IsPrivate reports whether membership is required to vote.
func (o *Organization) IsPrivate() bool {
	return o != nil && o.Visibility == VisibilityPrivate
}
