//go:build integration

package repository_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"go.uber.org/zap/zaptest"

	"github.com/civicdesk/complaint-service/internal/domain"
	"github.com/civicdesk/complaint-service/internal/persistence"
	"github.com/civicdesk/complaint-service/internal/repository"
	"github.com/civicdesk/complaint-service/internal/service"
)

type PostgresSuite struct {
	suite.Suite
	container testcontainers.Container
	pool      *pgxpool.Pool
	store     repository.Store
	orgID     int64
	userID    int64
}

func TestPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres integration tests in short mode")
	}
	suite.Run(t, new(PostgresSuite))
}

func (s *PostgresSuite) SetupSuite() {
	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("complaints"),
		tcpostgres.WithUsername("complaints"),
		tcpostgres.WithPassword("complaints"),
		tcpostgres.BasicWaitStrategies(),
	)
	s.Require().NoError(err)
	s.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)
	s.pool, err = pgxpool.New(ctx, dsn)
	s.Require().NoError(err)

	s.Require().NoError(persistence.RunMigrations(ctx, s.pool, "../../migrations", zaptest.NewLogger(s.T())))
	// Applying twice must be a no-op.
	s.Require().NoError(persistence.RunMigrations(ctx, s.pool, "../../migrations", zaptest.NewLogger(s.T())))
	s.store = repository.NewPostgresStore(s.pool)
}

func (s *PostgresSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(context.Background())
	}
}

func (s *PostgresSuite) SetupTest() {
	ctx := context.Background()
	_, err := s.pool.Exec(ctx, `TRUNCATE notifications, complaint_edits, complaint_votes, complaints,
		departments, organization_members, users, organizations RESTART IDENTITY CASCADE`)
	s.Require().NoError(err)

	s.Require().NoError(s.pool.QueryRow(ctx,
		`INSERT INTO organizations (name, slug, visibility) VALUES ('Transit', 'transit', 'Private') RETURNING id`).Scan(&s.orgID))
	s.Require().NoError(s.pool.QueryRow(ctx,
		`INSERT INTO users (name, email) VALUES ('Ana', 'ana@example.com') RETURNING id`).Scan(&s.userID))
}

func (s *PostgresSuite) newComplaint(code string) *domain.Complaint {
	submitter := s.userID
	c := &domain.Complaint{
		OrganizationID: s.orgID,
		SubmitterID:    &submitter,
		Title:          "Late buses",
		Description:    "Route 9 is always late",
		Priority:       domain.ComplaintPriorityHigh,
		Status:         domain.ComplaintStatusOpen,
		TrackingCode:   code,
		CreatedAt:      time.Now().UTC().Truncate(time.Microsecond),
	}
	s.Require().NoError(s.store.Repos().Complaints.Create(context.Background(), c))
	return c
}

func (s *PostgresSuite) TestCreateAndLookup() {
	ctx := context.Background()
	c := s.newComplaint("ABCD1234")
	s.NotZero(c.ID)

	got, err := s.store.Repos().Complaints.GetByTrackingCode(ctx, "ABCD1234")
	s.Require().NoError(err)
	s.Equal(c.ID, got.ID)
	s.Equal(domain.ComplaintPriorityHigh, got.Priority)
	s.Equal(s.userID, *got.SubmitterID)
	s.Nil(got.WithdrawnAt)

	dup := *c
	dup.ID = 0
	err = s.store.Repos().Complaints.Create(ctx, &dup)
	s.ErrorIs(err, repository.ErrDuplicateTrackingCode)

	_, err = s.store.Repos().Complaints.GetByID(ctx, 999999)
	s.ErrorIs(err, pgx.ErrNoRows)
}

func (s *PostgresSuite) TestWithdrawnAtConstraint() {
	ctx := context.Background()
	c := s.newComplaint("CONSTR01")

	err := s.store.Repos().Complaints.UpdateStatus(ctx, c.ID, domain.ComplaintStatusWithdrawn, nil)
	s.Error(err)

	now := time.Now()
	err = s.store.Repos().Complaints.UpdateStatus(ctx, c.ID, domain.ComplaintStatusOpen, &now)
	s.Error(err)
}

func (s *PostgresSuite) TestWithinTxRollsBack() {
	ctx := context.Background()
	c := s.newComplaint("ROLLBK01")

	err := s.store.WithinTx(ctx, func(repos repository.Repositories) error {
		if _, err := repos.Votes.Insert(ctx, c.ID, "user:77"); err != nil {
			return err
		}
		if err := repos.Complaints.SetVotes(ctx, c.ID, 1); err != nil {
			return err
		}
		return fmt.Errorf("abort")
	})
	s.EqualError(err, "abort")

	count, err := s.store.Repos().Votes.Count(ctx, c.ID)
	s.Require().NoError(err)
	s.Zero(count)
	got, err := s.store.Repos().Complaints.GetByID(ctx, c.ID)
	s.Require().NoError(err)
	s.Zero(got.Votes)
}

func (s *PostgresSuite) TestConcurrentTogglesMatchLedger() {
	ctx := context.Background()
	c := s.newComplaint("RACE0001")
	_, err := s.pool.Exec(ctx, `UPDATE organizations SET visibility='Public' WHERE id=$1`, s.orgID)
	s.Require().NoError(err)

	votes := service.NewVoteService(service.VoteDependencies{Store: s.store})
	const voters = 25
	var wg sync.WaitGroup
	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := votes.ToggleVote(ctx, c.ID, domain.AnonymousActor(fmt.Sprintf("%032x", i)))
			s.NoError(err)
		}(i)
	}
	wg.Wait()

	count, err := s.store.Repos().Votes.Count(ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(voters, count)
	got, err := s.store.Repos().Complaints.GetByID(ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(voters, got.Votes)
}

func (s *PostgresSuite) TestPrivateOrganizationMembership() {
	ctx := context.Background()
	c := s.newComplaint("PRIV0001")
	var memberID int64
	s.Require().NoError(s.pool.QueryRow(ctx,
		`INSERT INTO users (name, email) VALUES ('Bo', 'bo@example.com') RETURNING id`).Scan(&memberID))
	_, err := s.pool.Exec(ctx, `INSERT INTO organization_members (org_id, user_id) VALUES ($1, $2)`, s.orgID, memberID)
	s.Require().NoError(err)

	votes := service.NewVoteService(service.VoteDependencies{Store: s.store})
	_, err = votes.ToggleVote(ctx, c.ID, domain.UserActor(memberID+100))
	s.Error(err)
	res, err := votes.ToggleVote(ctx, c.ID, domain.UserActor(memberID))
	s.Require().NoError(err)
	s.True(res.Liked)

	ids, err := s.store.Repos().Organizations.ListMemberIDs(ctx, s.orgID)
	s.Require().NoError(err)
	s.Equal([]int64{memberID}, ids)
}

func (s *PostgresSuite) TestPurgeCascades() {
	ctx := context.Background()
	c := s.newComplaint("PURGE001")
	withdrawnAt := time.Now().Add(-31 * 24 * time.Hour)
	repos := s.store.Repos()

	_, err := repos.Votes.Insert(ctx, c.ID, "user:5")
	s.Require().NoError(err)
	s.Require().NoError(repos.Edits.Create(ctx, &domain.ComplaintEdit{
		ComplaintID: c.ID, OldTitle: "a", OldDescription: "b", NewTitle: "c", NewDescription: "d",
		EditorID: s.userID, EditedAt: time.Now(),
	}))
	complaintID := c.ID
	s.Require().NoError(repos.Notifications.Create(ctx, &domain.Notification{
		RecipientKind: domain.RecipientOrganization, RecipientID: s.orgID, ComplaintID: &complaintID,
		Type: domain.NotificationWithdrawn, Message: "Complaint withdrawn by the user", CreatedAt: time.Now(),
	}))
	s.Require().NoError(repos.Complaints.UpdateStatus(ctx, c.ID, domain.ComplaintStatusWithdrawn, &withdrawnAt))

	purged, err := repos.Complaints.DeleteWithdrawnBefore(ctx, time.Now().Add(-30*24*time.Hour))
	s.Require().NoError(err)
	s.EqualValues(1, purged)

	count, err := repos.Votes.Count(ctx, c.ID)
	s.Require().NoError(err)
	s.Zero(count)
	edits, err := repos.Edits.ListByComplaint(ctx, c.ID)
	s.Require().NoError(err)
	s.Empty(edits)

	inbox, err := repos.Notifications.ListByRecipient(ctx, domain.RecipientOrganization, s.orgID, 10)
	s.Require().NoError(err)
	s.Require().Len(inbox, 1)
	s.Nil(inbox[0].ComplaintID)
}
