package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/civicdesk/complaint-service/internal/domain"
	"github.com/civicdesk/complaint-service/internal/events"
	"github.com/civicdesk/complaint-service/internal/observability"
	"github.com/civicdesk/complaint-service/internal/repository"
	apperrors "github.com/civicdesk/complaint-service/pkg/util/errorutil"
)

const trackingCodeAttempts = 5

// ComplaintService coordinates the complaint lifecycle.
type ComplaintService struct {
	store      repository.Store
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	retention  time.Duration
	now        Clock
}

// ComplaintDependencies bundles collaborators for the complaint service.
type ComplaintDependencies struct {
	Store      repository.Store
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Retention  time.Duration
	Clock      Clock
}

// SubmitInput describes a new complaint.
type SubmitInput struct {
	OrganizationID int64
	DepartmentID   *int64
	Title          string
	Description    string
	Priority       domain.ComplaintPriority
	Anonymous      *bool
	AttachmentRef  *string
}

// EditInput carries the submitter's revision. Nil or blank fields are left unchanged.
type EditInput struct {
	Title       *string
	Description *string
}

// WithdrawResult reports the outcome of a withdraw request.
type WithdrawResult struct {
	Complaint        *domain.Complaint
	AlreadyWithdrawn bool
}

// NewComplaintService constructs the service.
func NewComplaintService(deps ComplaintDependencies) *ComplaintService {
	retention := deps.Retention
	if retention <= 0 {
		retention = 30 * 24 * time.Hour
	}
	return &ComplaintService{
		store:      deps.Store,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		retention:  retention,
		now:        clockOrDefault(deps.Clock),
	}
}

// RetentionDays is the restore window in whole days.
func (s *ComplaintService) RetentionDays() int {
	return int(s.retention / (24 * time.Hour))
}

// Submit files a complaint against an organization. Users may file under their
// own account or anonymously; visitors without a bearer token always file anonymously.
func (s *ComplaintService) Submit(ctx context.Context, actor domain.Actor, input SubmitInput) (*domain.Complaint, error) {
	if actor.Kind == domain.ActorKindOrganization {
		return nil, apperrors.NewForbidden("Organizations cannot file complaints")
	}
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" || input.OrganizationID <= 0 {
		return nil, apperrors.NewValidationError("title, description, organizationId required", nil)
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.ComplaintPriorityLow
	}
	if !domain.IsValidPriority(priority) {
		return nil, apperrors.NewValidationError("Invalid priority value", map[string]any{"priority": priority})
	}

	repos := s.store.Repos()
	if _, err := repos.Organizations.GetByID(ctx, input.OrganizationID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("Organization", nil)
		}
		return nil, err
	}
	if input.DepartmentID != nil {
		ok, err := repos.Organizations.HasDepartment(ctx, input.OrganizationID, *input.DepartmentID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperrors.NewValidationError("Invalid department for this organization", nil)
		}
	}

	anonymous := actor.Kind != domain.ActorKindUser
	if input.Anonymous != nil && actor.Kind == domain.ActorKindUser {
		anonymous = *input.Anonymous
	}

	complaint := &domain.Complaint{
		OrganizationID: input.OrganizationID,
		DepartmentID:   input.DepartmentID,
		Title:          title,
		Description:    description,
		Priority:       priority,
		Status:         domain.ComplaintStatusOpen,
		IsAnonymous:    anonymous,
		AttachmentRef:  input.AttachmentRef,
		CreatedAt:      s.now(),
	}
	if !anonymous {
		id := actor.ID
		complaint.SubmitterID = &id
	}

	for attempt := 0; ; attempt++ {
		complaint.TrackingCode = generateTrackingCode()
		err := repos.Complaints.Create(ctx, complaint)
		if err == nil {
			break
		}
		if !errors.Is(err, repository.ErrDuplicateTrackingCode) || attempt+1 >= trackingCodeAttempts {
			return nil, err
		}
	}
	s.metrics.RecordTransition("submit", string(complaint.Status))
	return complaint, nil
}

// Get returns a complaint by id.
func (s *ComplaintService) Get(ctx context.Context, id int64) (*domain.Complaint, error) {
	c, err := s.store.Repos().Complaints.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("Complaint", nil)
		}
		return nil, err
	}
	return c, nil
}

// GetByTrackingCode looks up a complaint by the code handed to its submitter.
func (s *ComplaintService) GetByTrackingCode(ctx context.Context, code string) (*domain.Complaint, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, apperrors.NewValidationError("tracking code required", nil)
	}
	c, err := s.store.Repos().Complaints.GetByTrackingCode(ctx, code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("Complaint", nil)
		}
		return nil, err
	}
	return c, nil
}

// ChangeStatus moves a complaint to a new status on behalf of its organization.
func (s *ComplaintService) ChangeStatus(ctx context.Context, actor domain.Actor, id int64, target domain.ComplaintStatus) (*domain.Complaint, error) {
	if actor.Kind != domain.ActorKindOrganization {
		return nil, apperrors.NewForbidden("Only the organization can update complaint status")
	}

	var (
		updated  *domain.Complaint
		previous domain.ComplaintStatus
	)
	err := s.store.WithinTx(ctx, func(repos repository.Repositories) error {
		c, err := lockComplaint(ctx, repos, id)
		if err != nil {
			return err
		}
		if !c.IsOwnedBy(actor) {
			return apperrors.NewForbidden("Only the organization can update complaint status")
		}
		if !domain.IsOrganizationTarget(target) {
			return apperrors.NewInvalidTransition("Invalid status value")
		}
		if c.Status == domain.ComplaintStatusWithdrawn {
			return apperrors.NewInvalidTransition("Withdrawn complaints can only be restored by the submitter")
		}
		if err := repos.Complaints.UpdateStatus(ctx, c.ID, target, nil); err != nil {
			return err
		}
		previous = c.Status
		c.Status = target
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordTransition("status_change", string(target))
	publishEvent(ctx, s.dispatcher, s.now, complaintEvent(events.EventComplaintStatusChanged, updated, actor, events.StatusChangedPayload{
		OldStatus: previous,
		NewStatus: target,
	}))
	return updated, nil
}

// Edit revises title and description. Only the submitter may edit, only while the
// complaint is Open or Pending, and only within EditWindow of creation.
func (s *ComplaintService) Edit(ctx context.Context, actor domain.Actor, id int64, input EditInput) (*domain.Complaint, error) {
	newTitle := trimmed(input.Title)
	newDescription := trimmed(input.Description)

	var (
		updated *domain.Complaint
		edit    domain.ComplaintEdit
	)
	err := s.store.WithinTx(ctx, func(repos repository.Repositories) error {
		c, err := lockComplaint(ctx, repos, id)
		if err != nil {
			return err
		}
		if !c.IsSubmitter(actor) {
			return apperrors.NewForbidden("Not allowed to edit this complaint")
		}
		if !c.Editable() {
			return apperrors.NewInvalidTransition("Complaint can no longer be edited in its current status")
		}
		now := s.now()
		if !c.WithinEditWindow(now) {
			return apperrors.NewInvalidTransition("Edit window has passed. Complaints can only be edited within 24 hours.")
		}
		if newTitle == "" && newDescription == "" {
			return apperrors.NewValidationError("No valid fields to update", nil)
		}

		edit = domain.ComplaintEdit{
			ComplaintID:    c.ID,
			OldTitle:       c.Title,
			OldDescription: c.Description,
			NewTitle:       c.Title,
			NewDescription: c.Description,
			EditorID:       actor.ID,
			EditedAt:       now,
		}
		if newTitle != "" {
			edit.NewTitle = newTitle
		}
		if newDescription != "" {
			edit.NewDescription = newDescription
		}
		if err := repos.Edits.Create(ctx, &edit); err != nil {
			return err
		}
		if err := repos.Complaints.UpdateContent(ctx, c.ID, edit.NewTitle, edit.NewDescription, now); err != nil {
			return err
		}
		c.Title = edit.NewTitle
		c.Description = edit.NewDescription
		c.EditedAt = &now
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	publishEvent(ctx, s.dispatcher, s.now, complaintEvent(events.EventComplaintEdited, updated, actor, events.EditedPayload{EditID: edit.ID}))
	return updated, nil
}

// Withdraw retracts a complaint on behalf of its submitter. Withdrawing twice is a no-op.
func (s *ComplaintService) Withdraw(ctx context.Context, actor domain.Actor, id int64) (*WithdrawResult, error) {
	var (
		result   WithdrawResult
		previous domain.ComplaintStatus
	)
	err := s.store.WithinTx(ctx, func(repos repository.Repositories) error {
		c, err := lockComplaint(ctx, repos, id)
		if err != nil {
			return err
		}
		if !c.IsSubmitter(actor) {
			return apperrors.NewForbidden("Only the submitter can withdraw this complaint")
		}
		result.Complaint = c
		if c.Status == domain.ComplaintStatusWithdrawn {
			result.AlreadyWithdrawn = true
			return nil
		}
		now := s.now()
		if err := repos.Complaints.UpdateStatus(ctx, c.ID, domain.ComplaintStatusWithdrawn, &now); err != nil {
			return err
		}
		previous = c.Status
		c.Status = domain.ComplaintStatusWithdrawn
		c.WithdrawnAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	if result.AlreadyWithdrawn {
		return &result, nil
	}

	s.metrics.RecordTransition("withdraw", string(domain.ComplaintStatusWithdrawn))
	publishEvent(ctx, s.dispatcher, s.now, complaintEvent(events.EventComplaintWithdrawn, result.Complaint, actor, events.WithdrawnPayload{
		PreviousStatus: previous,
		RetentionDays:  s.RetentionDays(),
	}))
	return &result, nil
}

// Restore reopens a withdrawn complaint while it is still inside the retention window.
func (s *ComplaintService) Restore(ctx context.Context, actor domain.Actor, id int64) (*domain.Complaint, error) {
	var (
		restored    *domain.Complaint
		withdrawnAt time.Time
	)
	err := s.store.WithinTx(ctx, func(repos repository.Repositories) error {
		c, err := lockComplaint(ctx, repos, id)
		if err != nil {
			return err
		}
		if !c.IsSubmitter(actor) {
			return apperrors.NewForbidden("Only the submitter can restore this complaint")
		}
		if c.Status != domain.ComplaintStatusWithdrawn || c.WithdrawnAt == nil {
			return apperrors.NewInvalidTransition("Complaint is not withdrawn.")
		}
		if !c.Restorable(s.now(), s.retention) {
			return apperrors.NewWindowExpired("Retention window passed. The complaint can no longer be restored.")
		}
		if err := repos.Complaints.UpdateStatus(ctx, c.ID, domain.ComplaintStatusOpen, nil); err != nil {
			return err
		}
		withdrawnAt = *c.WithdrawnAt
		c.Status = domain.ComplaintStatusOpen
		c.WithdrawnAt = nil
		restored = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordTransition("restore", string(domain.ComplaintStatusOpen))
	publishEvent(ctx, s.dispatcher, s.now, complaintEvent(events.EventComplaintRestored, restored, actor, events.RestoredPayload{
		WithdrawnAt: withdrawnAt,
	}))
	return restored, nil
}

// ListEdits returns the edit history, newest first, to the submitter or the owning organization.
func (s *ComplaintService) ListEdits(ctx context.Context, actor domain.Actor, id int64) ([]domain.ComplaintEdit, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.IsSubmitter(actor) && !c.IsOwnedBy(actor) {
		return nil, apperrors.NewForbidden("Not allowed to view edit history")
	}
	return s.store.Repos().Edits.ListByComplaint(ctx, id)
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func generateTrackingCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
