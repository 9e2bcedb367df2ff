package repository

import (
	"context"

	"github.com/civicdesk/complaint-service/internal/domain"
)

// VoteRepository is the storage side of the vote ledger.
type VoteRepository interface {
	// Insert records a vote; it reports false when the voter already holds one.
	Insert(ctx context.Context, complaintID int64, key domain.VoterKey) (bool, error)
	// Delete removes a vote; it reports false when there was none.
	Delete(ctx context.Context, complaintID int64, key domain.VoterKey) (bool, error)
	Exists(ctx context.Context, complaintID int64, key domain.VoterKey) (bool, error)
	Count(ctx context.Context, complaintID int64) (int, error)
}

type voteRepository struct {
	db DBTX
}

// NewVoteRepository builds repository.
func NewVoteRepository(db DBTX) VoteRepository {
	return &voteRepository{db: db}
}

func (r *voteRepository) Insert(ctx context.Context, complaintID int64, key domain.VoterKey) (bool, error) {
	const query = `
        INSERT INTO complaint_votes (complaint_id, voter_key)
        VALUES ($1,$2)
        ON CONFLICT (complaint_id, voter_key) DO NOTHING`
	cmd, err := r.db.Exec(ctx, query, complaintID, string(key))
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *voteRepository) Delete(ctx context.Context, complaintID int64, key domain.VoterKey) (bool, error) {
	cmd, err := r.db.Exec(ctx, `DELETE FROM complaint_votes WHERE complaint_id=$1 AND voter_key=$2`, complaintID, string(key))
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *voteRepository) Exists(ctx context.Context, complaintID int64, key domain.VoterKey) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM complaint_votes WHERE complaint_id=$1 AND voter_key=$2)`,
		complaintID, string(key),
	).Scan(&exists)
	return exists, err
}

func (r *voteRepository) Count(ctx context.Context, complaintID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM complaint_votes WHERE complaint_id=$1`, complaintID).Scan(&count)
	return count, err
}
