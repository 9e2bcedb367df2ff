package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicdesk/complaint-service/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 0)

	token, expiresAt, err := tm.GenerateToken(domain.OrganizationActor(42))
	require.NoError(t, err)
	assert.False(t, expiresAt.IsZero())

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.Subject)

	actor, err := claims.Actor()
	require.NoError(t, err)
	assert.Equal(t, domain.OrganizationActor(42), actor)
}

func TestGenerateTokenRejectsAnonymous(t *testing.T) {
	_, _, err := NewTokenManager("secret", 5).GenerateToken(domain.AnonymousActor("abc"))
	assert.Error(t, err)
}

func TestClaimsActorRejectsBadSubjects(t *testing.T) {
	tests := []struct {
		kind    domain.ActorKind
		subject string
	}{
		{domain.ActorKindUser, "abc"},
		{domain.ActorKindUser, "0"},
		{domain.ActorKindAnonymous, "7"},
		{"staff", "7"},
	}
	for _, tc := range tests {
		c := &Claims{Kind: tc.kind}
		c.Subject = tc.subject
		_, err := c.Actor()
		assert.Error(t, err, "kind %q subject %q", tc.kind, tc.subject)
	}
}
