package service

import (
	"context"

	"github.com/civicdesk/complaint-service/internal/domain"
	"github.com/civicdesk/complaint-service/internal/events"
	"github.com/civicdesk/complaint-service/internal/observability"
	"github.com/civicdesk/complaint-service/internal/repository"
	apperrors "github.com/civicdesk/complaint-service/pkg/util/errorutil"
)

// VoteService maintains the vote ledger.
type VoteService struct {
	store      repository.Store
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	now        Clock
}

// VoteDependencies bundles collaborators for the vote service.
type VoteDependencies struct {
	Store      repository.Store
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Clock      Clock
}

// VoteResult is the state of the ledger for one voter after a toggle.
type VoteResult struct {
	Votes int
	Liked bool
}

// NewVoteService constructs the service.
func NewVoteService(deps VoteDependencies) *VoteService {
	return &VoteService{
		store:      deps.Store,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		now:        clockOrDefault(deps.Clock),
	}
}

// ToggleVote adds the actor's vote if absent and removes it otherwise. The
// complaint row stays locked from the first read until commit, so concurrent
// toggles on the same complaint apply one after another.
func (s *VoteService) ToggleVote(ctx context.Context, complaintID int64, actor domain.Actor) (VoteResult, error) {
	var (
		result    VoteResult
		complaint *domain.Complaint
	)
	err := s.store.WithinTx(ctx, func(repos repository.Repositories) error {
		c, err := lockComplaint(ctx, repos, complaintID)
		if err != nil {
			return err
		}
		key, err := domain.VoterKeyFor(actor)
		if err != nil {
			return apperrors.NewUnauthorized("voter identity required")
		}
		if err := s.checkEligible(ctx, repos, c, actor); err != nil {
			return err
		}

		removed, err := repos.Votes.Delete(ctx, c.ID, key)
		if err != nil {
			return err
		}
		if removed {
			result = VoteResult{Votes: max(0, c.Votes-1), Liked: false}
		} else {
			inserted, err := repos.Votes.Insert(ctx, c.ID, key)
			if err != nil {
				return err
			}
			result = VoteResult{Votes: c.Votes, Liked: true}
			if inserted {
				result.Votes++
			}
		}
		if err := repos.Complaints.SetVotes(ctx, c.ID, result.Votes); err != nil {
			return err
		}
		c.Votes = result.Votes
		complaint = c
		return nil
	})
	if err != nil {
		s.metrics.RecordVote(apperrors.ToDomainError(err).Code)
		return VoteResult{}, err
	}

	outcome := "unliked"
	if result.Liked {
		outcome = "liked"
	}
	s.metrics.RecordVote(outcome)
	publishEvent(ctx, s.dispatcher, s.now, complaintEvent(events.EventComplaintVoted, complaint, actor, events.VotedPayload{
		Votes: result.Votes,
		Liked: result.Liked,
	}))
	return result, nil
}

// HasVoted reports whether the actor currently holds a vote on the complaint.
// Actors without a voter identity have never voted.
func (s *VoteService) HasVoted(ctx context.Context, complaintID int64, actor domain.Actor) (bool, error) {
	key, err := domain.VoterKeyFor(actor)
	if err != nil {
		return false, nil
	}
	return s.store.Repos().Votes.Exists(ctx, complaintID, key)
}

func (s *VoteService) checkEligible(ctx context.Context, repos repository.Repositories, c *domain.Complaint, actor domain.Actor) error {
	if c.IsSubmitter(actor) {
		return apperrors.NewForbidden("Cannot vote on your own complaint")
	}
	if c.IsOwnedBy(actor) {
		return apperrors.NewForbidden("Organization cannot vote on its own complaints")
	}

	org, err := repos.Organizations.GetByID(ctx, c.OrganizationID)
	if err != nil {
		return err
	}
	if !org.IsPrivate() {
		return nil
	}
	if !actor.Authenticated() {
		return apperrors.NewForbidden("Login required for private organization")
	}
	if actor.Kind != domain.ActorKindUser {
		return apperrors.NewForbidden("Not a member of this organization")
	}
	member, err := repos.Organizations.IsMember(ctx, org.ID, actor.ID)
	if err != nil {
		return err
	}
	if !member {
		return apperrors.NewForbidden("Not a member of this organization")
	}
	return nil
}
