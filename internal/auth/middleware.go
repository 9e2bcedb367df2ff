package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/civicdesk/complaint-service/internal/domain"
	apperrors "github.com/civicdesk/complaint-service/pkg/util/errorutil"
)

const actorKey = "auth_actor"

// AuthMiddleware validates bearer tokens and stores the caller on the request.
type AuthMiddleware struct {
	identity *IdentityResolver
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(identity *IdentityResolver) *AuthMiddleware {
	return &AuthMiddleware{identity: identity}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	if c.Get(fiber.HeaderAuthorization) == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}
	actor, ok := m.identity.Authenticate(c)
	if !ok {
		return apperrors.NewUnauthorized("invalid token")
	}
	c.Locals(actorKey, actor)
	return c.Next()
}

// Optional stores the bearer identity when one is valid and otherwise lets the
// request through without one.
func (m *AuthMiddleware) Optional(c *fiber.Ctx) error {
	if actor, ok := m.identity.Authenticate(c); ok {
		c.Locals(actorKey, actor)
	}
	return c.Next()
}

// ActorFromContext retrieves the authenticated caller.
func ActorFromContext(c *fiber.Ctx) (domain.Actor, bool) {
	actor, ok := c.Locals(actorKey).(domain.Actor)
	return actor, ok
}
