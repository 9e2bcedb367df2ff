package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is the query surface shared by *pgxpool.Pool and pgx.Tx, so every
// repository can run either standalone or inside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repositories bundles the repositories bound to one connection or transaction.
type Repositories struct {
	Complaints    ComplaintRepository
	Votes         VoteRepository
	Edits         EditRepository
	Organizations OrganizationRepository
	Notifications NotificationRepository
}

// Store hands out repositories and runs units of work atomically. Either every
// write inside fn commits or none does.
type Store interface {
	Repos() Repositories
	WithinTx(ctx context.Context, fn func(repos Repositories) error) error
}

type postgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore returns a Store backed by a pgx pool.
func NewPostgresStore(pool *pgxpool.Pool) Store {
	return &postgresStore{pool: pool}
}

func (s *postgresStore) Repos() Repositories {
	return reposFor(s.pool)
}

func (s *postgresStore) WithinTx(ctx context.Context, fn func(repos Repositories) error) error {
	return pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(tx pgx.Tx) error {
		return fn(reposFor(tx))
	})
}

func reposFor(db DBTX) Repositories {
	return Repositories{
		Complaints:    NewComplaintRepository(db),
		Votes:         NewVoteRepository(db),
		Edits:         NewEditRepository(db),
		Organizations: NewOrganizationRepository(db),
		Notifications: NewNotificationRepository(db),
	}
}
