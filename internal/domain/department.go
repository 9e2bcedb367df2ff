package domain

// Department is a sub-unit of an organization a complaint may be filed against.
type Department struct {
	ID             int64
	OrganizationID int64
	Name           string
}
