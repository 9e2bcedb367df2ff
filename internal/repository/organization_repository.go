package repository

import (
	"context"

	"github.com/civicdesk/complaint-service/internal/domain"
)

// OrganizationRepository exposes the organization data the complaint lifecycle reads.
// Organizations, members and departments are managed elsewhere.
type OrganizationRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Organization, error)
	IsMember(ctx context.Context, orgID, userID int64) (bool, error)
	ListMemberIDs(ctx context.Context, orgID int64) ([]int64, error)
	HasDepartment(ctx context.Context, orgID, departmentID int64) (bool, error)
}

type organizationRepository struct {
	db DBTX
}

// NewOrganizationRepository builds repository.
func NewOrganizationRepository(db DBTX) OrganizationRepository {
	return &organizationRepository{db: db}
}

func (r *organizationRepository) GetByID(ctx context.Context, id int64) (*domain.Organization, error) {
	var org domain.Organization
	err := r.db.QueryRow(ctx,
		`SELECT id, name, slug, visibility, created_at FROM organizations WHERE id=$1`, id,
	).Scan(&org.ID, &org.Name, &org.Slug, &org.Visibility, &org.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *organizationRepository) IsMember(ctx context.Context, orgID, userID int64) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM organization_members WHERE org_id=$1 AND user_id=$2)`, orgID, userID,
	).Scan(&ok)
	return ok, err
}

func (r *organizationRepository) ListMemberIDs(ctx context.Context, orgID int64) ([]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT user_id FROM organization_members WHERE org_id=$1 ORDER BY user_id`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *organizationRepository) HasDepartment(ctx context.Context, orgID, departmentID int64) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM departments WHERE id=$1 AND org_id=$2)`, departmentID, orgID,
	).Scan(&ok)
	return ok, err
}
