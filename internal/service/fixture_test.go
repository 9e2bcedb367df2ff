package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/civicdesk/complaint-service/internal/domain"
	"github.com/civicdesk/complaint-service/internal/events"
	"github.com/civicdesk/complaint-service/internal/repository/memstore"
)

const testRetention = 30 * 24 * time.Hour

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) handle(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	store         *memstore.Store
	clock         *fakeClock
	events        *recorder
	complaints    *ComplaintService
	votes         *VoteService
	retention     *RetentionService
	notifications *NotificationService

	publicOrg  int64
	privateOrg int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memstore.New()
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	dispatcher := events.NewInMemoryDispatcher(zaptest.NewLogger(t))
	rec := &recorder{}
	for _, typ := range events.AllEventTypes {
		dispatcher.Subscribe(typ, rec.handle)
	}

	f := &fixture{
		store:  store,
		clock:  clock,
		events: rec,
		complaints: NewComplaintService(ComplaintDependencies{
			Store: store, Dispatcher: dispatcher, Retention: testRetention, Clock: clock.Now,
		}),
		votes: NewVoteService(VoteDependencies{
			Store: store, Dispatcher: dispatcher, Clock: clock.Now,
		}),
		retention: NewRetentionService(RetentionDependencies{
			Store: store, Retention: testRetention, Logger: zaptest.NewLogger(t), Clock: clock.Now,
		}),
		notifications: NewNotificationService(NotificationDependencies{
			Store: store, Dispatcher: dispatcher, Logger: zaptest.NewLogger(t), Clock: clock.Now,
		}),
	}
	f.notifications.RegisterHandlers()

	f.publicOrg = store.AddOrganization(domain.Organization{Name: "City Water", Slug: "city-water", Visibility: domain.VisibilityPublic})
	f.privateOrg = store.AddOrganization(domain.Organization{Name: "Campus", Slug: "campus", Visibility: domain.VisibilityPrivate})
	return f
}

func (f *fixture) submit(t *testing.T, actor domain.Actor, orgID int64) *domain.Complaint {
	t.Helper()
	c, err := f.complaints.Submit(context.Background(), actor, SubmitInput{
		OrganizationID: orgID,
		Title:          "Broken street light",
		Description:    "The light on 5th avenue has been out for a week.",
		Priority:       domain.ComplaintPriorityMedium,
	})
	require.NoError(t, err)
	return c
}

func (f *fixture) reload(t *testing.T, id int64) *domain.Complaint {
	t.Helper()
	c, err := f.complaints.Get(context.Background(), id)
	require.NoError(t, err)
	return c
}
