package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/civicdesk/complaint-service/internal/api/dto"
	"github.com/civicdesk/complaint-service/internal/auth"
	"github.com/civicdesk/complaint-service/internal/domain"
	"github.com/civicdesk/complaint-service/internal/service"
	apperrors "github.com/civicdesk/complaint-service/pkg/util/errorutil"
)

// ComplaintsHandler manages complaint lifecycle and voting endpoints.
type ComplaintsHandler struct {
	complaints *service.ComplaintService
	votes      *service.VoteService
	identity   *auth.IdentityResolver
}

// NewComplaintsHandler constructs handler.
func NewComplaintsHandler(complaints *service.ComplaintService, votes *service.VoteService, identity *auth.IdentityResolver) *ComplaintsHandler {
	return &ComplaintsHandler{complaints: complaints, votes: votes, identity: identity}
}

// Create POST /complaints.
func (h *ComplaintsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateComplaintRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		actor = domain.Actor{Kind: domain.ActorKindAnonymous}
	}

	complaint, err := h.complaints.Submit(c.UserContext(), actor, service.SubmitInput{
		OrganizationID: req.OrganizationID,
		DepartmentID:   req.DepartmentID,
		Title:          req.Title,
		Description:    req.Description,
		Priority:       req.Priority,
		Anonymous:      req.IsAnonymous,
		AttachmentRef:  req.AttachmentRef,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":      true,
		"id":           complaint.ID,
		"trackingCode": complaint.TrackingCode,
	})
}

// Get GET /complaints/:id. liked tells the caller whether they hold a vote on it.
func (h *ComplaintsHandler) Get(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	complaint, err := h.complaints.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	liked, err := h.votes.HasVoted(c.UserContext(), id, actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "complaint": dto.NewComplaintResponse(complaint), "liked": liked})
}

// Track GET /complaints/track/:code.
func (h *ComplaintsHandler) Track(c *fiber.Ctx) error {
	complaint, err := h.complaints.GetByTrackingCode(c.UserContext(), c.Params("code"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "complaint": dto.NewTrackingResponse(complaint)})
}

// Vote POST /complaints/:id/vote. Works for users, organizations and anonymous
// visitors; the latter may receive a fresh identity cookie.
func (h *ComplaintsHandler) Vote(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	actor, err := h.identity.Resolve(c)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	result, err := h.votes.ToggleVote(c.UserContext(), id, actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "votes": result.Votes, "liked": result.Liked})
}

// Withdraw POST /complaints/:id/withdraw.
func (h *ComplaintsHandler) Withdraw(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	result, err := h.complaints.Withdraw(c.UserContext(), actor, id)
	if err != nil {
		return err
	}
	message := "Complaint withdrawn."
	if result.AlreadyWithdrawn {
		message = "Complaint already withdrawn."
	}
	return c.JSON(fiber.Map{
		"success":       true,
		"message":       message,
		"retentionDays": h.complaints.RetentionDays(),
	})
}

// Restore POST /complaints/:id/restore.
func (h *ComplaintsHandler) Restore(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if _, err := h.complaints.Restore(c.UserContext(), actor, id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "message": "Complaint restored to Open."})
}

// Update PATCH /complaints/:id. Organizations send a status; submitters send
// a title and/or description. Mixing both is rejected.
func (h *ComplaintsHandler) Update(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateComplaintRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	contentChange := req.Title != nil || req.Description != nil
	switch {
	case req.Status != nil && contentChange:
		return apperrors.NewValidationError("Status and content cannot be changed in the same request", nil)
	case req.Status != nil:
		complaint, err := h.complaints.ChangeStatus(c.UserContext(), actor, id, *req.Status)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"success": true,
			"message": "Status updated successfully",
			"status":  complaint.Status,
			"votes":   complaint.Votes,
		})
	case contentChange:
		complaint, err := h.complaints.Edit(c.UserContext(), actor, id, service.EditInput{
			Title:       req.Title,
			Description: req.Description,
		})
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"success":   true,
			"message":   "Complaint updated successfully",
			"complaint": dto.NewComplaintResponse(complaint),
		})
	default:
		return apperrors.NewValidationError("No valid fields to update", nil)
	}
}

// ListEdits GET /complaints/:id/edits.
func (h *ComplaintsHandler) ListEdits(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	edits, err := h.complaints.ListEdits(c.UserContext(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "edits": dto.NewComplaintEditResponses(edits)})
}
