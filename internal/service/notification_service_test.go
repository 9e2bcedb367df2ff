package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicdesk/complaint-service/internal/domain"
	apperrors "github.com/civicdesk/complaint-service/pkg/util/errorutil"
)

func TestStatusChangeNotifiesSubmitterAndMembers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.AddMember(f.publicOrg, 1)
	f.store.AddMember(f.publicOrg, 10)
	f.store.AddMember(f.publicOrg, 11)

	c := f.submit(t, domain.UserActor(1), f.publicOrg)
	_, err := f.complaints.ChangeStatus(ctx, domain.OrganizationActor(f.publicOrg), c.ID, domain.ComplaintStatusResolved)
	require.NoError(t, err)

	inbox, err := f.notifications.List(ctx, domain.UserActor(1), 0)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, "Complaint status updated to: Resolved", inbox[0].Message)
	assert.Equal(t, domain.NotificationStatusChanged, inbox[0].Type)

	for _, member := range []int64{10, 11} {
		inbox, err := f.notifications.List(ctx, domain.UserActor(member), 0)
		require.NoError(t, err)
		require.Len(t, inbox, 1)
		assert.Contains(t, inbox[0].Message, "status changed to: Resolved")
	}
}

func TestAnonymousComplaintStatusChangeNotifiesMembersOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.AddMember(f.publicOrg, 10)

	c := f.submit(t, domain.AnonymousActor("tok"), f.publicOrg)
	_, err := f.complaints.ChangeStatus(ctx, domain.OrganizationActor(f.publicOrg), c.ID, domain.ComplaintStatusPending)
	require.NoError(t, err)

	count, err := f.notifications.UnreadCount(ctx, domain.UserActor(10))
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestWithdrawRestoreNotifyOrganizationInbox(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	org := domain.OrganizationActor(f.publicOrg)
	c := f.submit(t, domain.UserActor(1), f.publicOrg)

	_, err := f.complaints.Withdraw(ctx, domain.UserActor(1), c.ID)
	require.NoError(t, err)
	_, err = f.complaints.Withdraw(ctx, domain.UserActor(1), c.ID)
	require.NoError(t, err)
	_, err = f.complaints.Restore(ctx, domain.UserActor(1), c.ID)
	require.NoError(t, err)

	inbox, err := f.notifications.List(ctx, org, 10)
	require.NoError(t, err)
	require.Len(t, inbox, 2)
	assert.Equal(t, domain.NotificationRestored, inbox[0].Type)
	assert.Equal(t, domain.NotificationWithdrawn, inbox[1].Type)

	unread, err := f.notifications.UnreadCount(ctx, org)
	require.NoError(t, err)
	assert.Equal(t, 2, unread)

	require.NoError(t, f.notifications.MarkRead(ctx, org, inbox[0].ID))
	require.NoError(t, f.notifications.MarkRead(ctx, org, inbox[0].ID))
	unread, err = f.notifications.UnreadCount(ctx, org)
	require.NoError(t, err)
	assert.Equal(t, 1, unread)

	err = f.notifications.MarkRead(ctx, domain.UserActor(1), inbox[1].ID)
	requireCode(t, err, apperrors.CodeNotFound)

	_, err = f.notifications.List(ctx, domain.AnonymousActor("tok"), 0)
	requireCode(t, err, apperrors.CodeUnauthorized)
}
