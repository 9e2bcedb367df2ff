package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicdesk/complaint-service/internal/domain"
	apperrors "github.com/civicdesk/complaint-service/pkg/util/errorutil"
)

func TestPurgeExpiredWithdrawals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	submitter := domain.UserActor(1)

	old := f.submit(t, submitter, f.publicOrg)
	_, err := f.complaints.Withdraw(ctx, submitter, old.ID)
	require.NoError(t, err)
	_, err = f.votes.ToggleVote(ctx, old.ID, domain.UserActor(2))
	require.NoError(t, err)

	f.clock.Advance(10 * 24 * time.Hour)
	recent := f.submit(t, submitter, f.publicOrg)
	_, err = f.complaints.Withdraw(ctx, submitter, recent.ID)
	require.NoError(t, err)
	active := f.submit(t, submitter, f.publicOrg)

	purged, err := f.retention.PurgeExpiredWithdrawals(ctx)
	require.NoError(t, err)
	assert.Zero(t, purged)

	f.clock.Advance(20*24*time.Hour + time.Second)
	purged, err = f.retention.PurgeExpiredWithdrawals(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, purged)

	_, err = f.complaints.Get(ctx, old.ID)
	requireCode(t, err, apperrors.CodeNotFound)
	voted, err := f.votes.HasVoted(ctx, old.ID, domain.UserActor(2))
	require.NoError(t, err)
	assert.False(t, voted)

	assert.Equal(t, domain.ComplaintStatusWithdrawn, f.reload(t, recent.ID).Status)
	assert.Equal(t, domain.ComplaintStatusOpen, f.reload(t, active.ID).Status)

	// Restore and purge agree on the boundary: once restore is refused, the sweep may delete.
	f.clock.Advance(10 * 24 * time.Hour)
	_, err = f.complaints.Restore(ctx, submitter, recent.ID)
	requireCode(t, err, apperrors.CodeWindowExpired)
	f.clock.Advance(time.Second)
	purged, err = f.retention.PurgeExpiredWithdrawals(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, purged)
}
