package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/civicdesk/complaint-service/internal/domain"
	"github.com/civicdesk/complaint-service/internal/events"
	"github.com/civicdesk/complaint-service/internal/repository"
	apperrors "github.com/civicdesk/complaint-service/pkg/util/errorutil"
)

const defaultInboxLimit = 50

// NotificationService turns lifecycle events into inbox notifications and serves the inboxes.
type NotificationService struct {
	store      repository.Store
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        Clock
}

// NotificationDependencies bundles collaborators for the notification service.
type NotificationDependencies struct {
	Store      repository.Store
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Clock      Clock
}

// NewNotificationService creates the service.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		store:      deps.Store,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        clockOrDefault(deps.Clock),
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventComplaintStatusChanged, n.handleStatusChanged)
	n.dispatcher.Subscribe(events.EventComplaintWithdrawn, n.handleWithdrawn)
	n.dispatcher.Subscribe(events.EventComplaintRestored, n.handleRestored)
}

func (n *NotificationService) handleStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.StatusChangedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	n.logger.Info("ComplaintStatusChanged",
		zap.Int64("complaint_id", event.ComplaintID),
		zap.String("old_status", string(payload.OldStatus)),
		zap.String("new_status", string(payload.NewStatus)))

	repos := n.store.Repos()
	if event.SubmitterID != nil {
		msg := fmt.Sprintf("Complaint status updated to: %s", payload.NewStatus)
		if err := n.deliver(ctx, repos, event, domain.RecipientUser, *event.SubmitterID, domain.NotificationStatusChanged, msg); err != nil {
			return err
		}
	}

	members, err := repos.Organizations.ListMemberIDs(ctx, event.OrganizationID)
	if err != nil {
		return err
	}
	msg := fmt.Sprintf("Complaint #%d status changed to: %s", event.ComplaintID, payload.NewStatus)
	for _, userID := range members {
		if event.SubmitterID != nil && *event.SubmitterID == userID {
			continue
		}
		if err := n.deliver(ctx, repos, event, domain.RecipientUser, userID, domain.NotificationStatusChanged, msg); err != nil {
			return err
		}
	}
	return nil
}

func (n *NotificationService) handleWithdrawn(ctx context.Context, event events.Event) error {
	n.logger.Info("ComplaintWithdrawn", zap.Int64("complaint_id", event.ComplaintID))
	return n.deliver(ctx, n.store.Repos(), event, domain.RecipientOrganization, event.OrganizationID,
		domain.NotificationWithdrawn, "Complaint withdrawn by the user")
}

func (n *NotificationService) handleRestored(ctx context.Context, event events.Event) error {
	n.logger.Info("ComplaintRestored", zap.Int64("complaint_id", event.ComplaintID))
	return n.deliver(ctx, n.store.Repos(), event, domain.RecipientOrganization, event.OrganizationID,
		domain.NotificationRestored, "Complaint restored by the user")
}

func (n *NotificationService) deliver(ctx context.Context, repos repository.Repositories, event events.Event, kind domain.RecipientKind, recipientID int64, typ domain.NotificationType, message string) error {
	complaintID := event.ComplaintID
	return repos.Notifications.Create(ctx, &domain.Notification{
		RecipientKind: kind,
		RecipientID:   recipientID,
		ComplaintID:   &complaintID,
		Type:          typ,
		Message:       message,
		CreatedAt:     n.now(),
	})
}

// List returns the actor's newest notifications.
func (n *NotificationService) List(ctx context.Context, actor domain.Actor, limit int) ([]domain.Notification, error) {
	kind, err := inboxFor(actor)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultInboxLimit
	}
	return n.store.Repos().Notifications.ListByRecipient(ctx, kind, actor.ID, limit)
}

// UnreadCount returns how many of the actor's notifications are unread.
func (n *NotificationService) UnreadCount(ctx context.Context, actor domain.Actor) (int, error) {
	kind, err := inboxFor(actor)
	if err != nil {
		return 0, err
	}
	return n.store.Repos().Notifications.CountUnread(ctx, kind, actor.ID)
}

// MarkRead marks one of the actor's notifications as read.
func (n *NotificationService) MarkRead(ctx context.Context, actor domain.Actor, id int64) error {
	kind, err := inboxFor(actor)
	if err != nil {
		return err
	}
	found, err := n.store.Repos().Notifications.MarkRead(ctx, id, kind, actor.ID, n.now())
	if err != nil {
		return err
	}
	if !found {
		return apperrors.NewNotFound("Notification", nil)
	}
	return nil
}

func inboxFor(actor domain.Actor) (domain.RecipientKind, error) {
	switch actor.Kind {
	case domain.ActorKindUser:
		return domain.RecipientUser, nil
	case domain.ActorKindOrganization:
		return domain.RecipientOrganization, nil
	default:
		return "", apperrors.NewUnauthorized("login required")
	}
}
