package domain

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// VoterKey is the storage form of a voting identity. The prefixes keep user,
// organization and anonymous key spaces from colliding.
type VoterKey string

const (
	voterPrefixUser         = "user:"
	voterPrefixOrganization = "org:"
	voterPrefixAnonymous    = "anon:"
)

// ErrNoVoterIdentity is returned when an anonymous actor carries no token.
var ErrNoVoterIdentity = errors.New("actor has no voter identity")

// VoterKeyFor derives the ledger key for an actor.
func VoterKeyFor(actor Actor) (VoterKey, error) {
	switch actor.Kind {
	case ActorKindUser:
		return VoterKey(voterPrefixUser + strconv.FormatInt(actor.ID, 10)), nil
	case ActorKindOrganization:
		return VoterKey(voterPrefixOrganization + strconv.FormatInt(actor.ID, 10)), nil
	case ActorKindAnonymous:
		if strings.TrimSpace(actor.Token) == "" {
			return "", ErrNoVoterIdentity
		}
		return VoterKey(voterPrefixAnonymous + actor.Token), nil
	default:
		return "", ErrNoVoterIdentity
	}
}

// Vote is one row of the vote ledger.
type Vote struct {
	ComplaintID int64
	VoterKey    VoterKey
	CreatedAt   time.Time
}
