package repository

import (
	"context"

	"github.com/civicdesk/complaint-service/internal/domain"
)

// EditRepository stores the append-only complaint edit trail.
type EditRepository interface {
	Create(ctx context.Context, edit *domain.ComplaintEdit) error
	ListByComplaint(ctx context.Context, complaintID int64) ([]domain.ComplaintEdit, error)
}

type editRepository struct {
	db DBTX
}

// NewEditRepository builds repository.
func NewEditRepository(db DBTX) EditRepository {
	return &editRepository{db: db}
}

func (r *editRepository) Create(ctx context.Context, edit *domain.ComplaintEdit) error {
	const query = `
        INSERT INTO complaint_edits (complaint_id, old_title, old_description, new_title, new_description, edited_by, edited_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id`
	return r.db.QueryRow(ctx, query,
		edit.ComplaintID,
		edit.OldTitle,
		edit.OldDescription,
		edit.NewTitle,
		edit.NewDescription,
		edit.EditorID,
		edit.EditedAt,
	).Scan(&edit.ID)
}

func (r *editRepository) ListByComplaint(ctx context.Context, complaintID int64) ([]domain.ComplaintEdit, error) {
	const query = `
        SELECT id, complaint_id, old_title, old_description, new_title, new_description, edited_by, edited_at
        FROM complaint_edits WHERE complaint_id=$1 ORDER BY edited_at DESC, id DESC`
	rows, err := r.db.Query(ctx, query, complaintID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.ComplaintEdit{}
	for rows.Next() {
		var edit domain.ComplaintEdit
		if err := rows.Scan(
			&edit.ID,
			&edit.ComplaintID,
			&edit.OldTitle,
			&edit.OldDescription,
			&edit.NewTitle,
			&edit.NewDescription,
			&edit.EditorID,
			&edit.EditedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, edit)
	}
	return result, rows.Err()
}
