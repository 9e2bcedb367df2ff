package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/civicdesk/complaint-service/internal/domain"
	"github.com/civicdesk/complaint-service/internal/events"
	"github.com/civicdesk/complaint-service/internal/repository"
	apperrors "github.com/civicdesk/complaint-service/pkg/util/errorutil"
)

// Clock returns the current time. Services take one so window checks can be tested.
type Clock func() time.Time

func clockOrDefault(c Clock) Clock {
	if c == nil {
		return time.Now
	}
	return c
}

// publishEvent fires an event after the surrounding transaction committed.
func publishEvent(ctx context.Context, dispatcher events.Dispatcher, now Clock, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = now()
	}
	_ = dispatcher.Publish(ctx, event)
}

func complaintEvent(t events.EventType, c *domain.Complaint, actor domain.Actor, payload any) events.Event {
	return events.Event{
		Type:           t,
		ComplaintID:    c.ID,
		OrganizationID: c.OrganizationID,
		SubmitterID:    c.SubmitterID,
		Actor:          events.ActorFrom(actor),
		Payload:        payload,
	}
}

// lockComplaint reads the complaint row under a row lock for the rest of the transaction.
func lockComplaint(ctx context.Context, repos repository.Repositories, id int64) (*domain.Complaint, error) {
	c, err := repos.Complaints.GetForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("Complaint", nil)
		}
		return nil, err
	}
	return c, nil
}
