package domain

import "strconv"

// ActorKind differentiates the identities that may act on a complaint.
type ActorKind string

const (
	ActorKindUser         ActorKind = "user"
	ActorKindOrganization ActorKind = "organization"
	ActorKindAnonymous    ActorKind = "anonymous"
)

// Actor is the resolved caller of a complaint operation. ID is set for users and
// organizations, Token for anonymous visitors.
type Actor struct {
	Kind  ActorKind
	ID    int64
	Token string
}

// UserActor builds an authenticated user identity.
func UserActor(id int64) Actor {
	return Actor{Kind: ActorKindUser, ID: id}
}

// OrganizationActor builds an authenticated organization identity.
func OrganizationActor(id int64) Actor {
	return Actor{Kind: ActorKindOrganization, ID: id}
}

// AnonymousActor builds a cookie-bound anonymous identity.
func AnonymousActor(token string) Actor {
	return Actor{Kind: ActorKindAnonymous, Token: token}
}

// IsUser reports whether the actor is the given authenticated user.
func (a Actor) IsUser(id int64) bool {
	return a.Kind == ActorKindUser && a.ID == id
}

// IsOrganization reports whether the actor is the given authenticated organization.
func (a Actor) IsOrganization(id int64) bool {
	return a.Kind == ActorKindOrganization && a.ID == id
}

// Authenticated reports whether the actor carried a valid bearer token.
func (a Actor) Authenticated() bool {
	return a.Kind == ActorKindUser || a.Kind == ActorKindOrganization
}

func (a Actor) String() string {
	switch a.Kind {
	case ActorKindUser, ActorKindOrganization:
		return string(a.Kind) + ":" + strconv.FormatInt(a.ID, 10)
	default:
		return string(a.Kind)
	}
}
