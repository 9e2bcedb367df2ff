package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/civicdesk/complaint-service/internal/domain"
)

// ErrDuplicateTrackingCode is returned when a generated tracking code collides.
var ErrDuplicateTrackingCode = errors.New("tracking code already in use")

const uniqueViolation = "23505"

// ComplaintRepository encapsulates complaint persistence.
type ComplaintRepository interface {
	Create(ctx context.Context, complaint *domain.Complaint) error
	GetByID(ctx context.Context, id int64) (*domain.Complaint, error)
	GetByTrackingCode(ctx context.Context, code string) (*domain.Complaint, error)
	// GetForUpdate loads the complaint and holds its row lock until the
	// surrounding transaction ends.
	GetForUpdate(ctx context.Context, id int64) (*domain.Complaint, error)
	UpdateStatus(ctx context.Context, id int64, status domain.ComplaintStatus, withdrawnAt *time.Time) error
	UpdateContent(ctx context.Context, id int64, title, description string, editedAt time.Time) error
	SetVotes(ctx context.Context, id int64, votes int) error
	DeleteWithdrawnBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type complaintRepository struct {
	db DBTX
}

// NewComplaintRepository instantiates repository.
func NewComplaintRepository(db DBTX) ComplaintRepository {
	return &complaintRepository{db: db}
}

const complaintColumns = `id, org_id, department_id, user_id, title, description, priority, status,
               is_anonymous, attachment_ref, tracking_code, votes, created_at, edited_at, withdrawn_at`

func (r *complaintRepository) Create(ctx context.Context, complaint *domain.Complaint) error {
	const query = `
        INSERT INTO complaints (org_id, department_id, user_id, title, description, priority, status,
                                is_anonymous, attachment_ref, tracking_code, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING id, votes`
	err := r.db.QueryRow(ctx, query,
		complaint.OrganizationID,
		complaint.DepartmentID,
		complaint.SubmitterID,
		complaint.Title,
		complaint.Description,
		complaint.Priority,
		complaint.Status,
		complaint.IsAnonymous,
		complaint.AttachmentRef,
		complaint.TrackingCode,
		complaint.CreatedAt,
	).Scan(&complaint.ID, &complaint.Votes)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == "complaints_tracking_code_key" {
		return ErrDuplicateTrackingCode
	}
	return err
}

func (r *complaintRepository) GetByID(ctx context.Context, id int64) (*domain.Complaint, error) {
	return r.fetchSingle(ctx, `SELECT `+complaintColumns+` FROM complaints WHERE id=$1`, id)
}

func (r *complaintRepository) GetByTrackingCode(ctx context.Context, code string) (*domain.Complaint, error) {
	return r.fetchSingle(ctx, `SELECT `+complaintColumns+` FROM complaints WHERE tracking_code=$1`, code)
}

func (r *complaintRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Complaint, error) {
	return r.fetchSingle(ctx, `SELECT `+complaintColumns+` FROM complaints WHERE id=$1 FOR UPDATE`, id)
}

func (r *complaintRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Complaint, error) {
	var c domain.Complaint
	if err := r.db.QueryRow(ctx, query, arg).Scan(
		&c.ID,
		&c.OrganizationID,
		&c.DepartmentID,
		&c.SubmitterID,
		&c.Title,
		&c.Description,
		&c.Priority,
		&c.Status,
		&c.IsAnonymous,
		&c.AttachmentRef,
		&c.TrackingCode,
		&c.Votes,
		&c.CreatedAt,
		&c.EditedAt,
		&c.WithdrawnAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *complaintRepository) UpdateStatus(ctx context.Context, id int64, status domain.ComplaintStatus, withdrawnAt *time.Time) error {
	return r.execOne(ctx, `UPDATE complaints SET status=$1, withdrawn_at=$2 WHERE id=$3`, status, withdrawnAt, id)
}

func (r *complaintRepository) UpdateContent(ctx context.Context, id int64, title, description string, editedAt time.Time) error {
	return r.execOne(ctx, `UPDATE complaints SET title=$1, description=$2, edited_at=$3 WHERE id=$4`, title, description, editedAt, id)
}

func (r *complaintRepository) SetVotes(ctx context.Context, id int64, votes int) error {
	return r.execOne(ctx, `UPDATE complaints SET votes=$1 WHERE id=$2`, votes, id)
}

func (r *complaintRepository) DeleteWithdrawnBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	const query = `
        DELETE FROM complaints
        WHERE status='Withdrawn' AND withdrawn_at IS NOT NULL AND withdrawn_at < $1`
	cmd, err := r.db.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *complaintRepository) execOne(ctx context.Context, query string, args ...any) error {
	cmd, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
