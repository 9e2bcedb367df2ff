package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/civicdesk/complaint-service/internal/domain"
	apperrors "github.com/civicdesk/complaint-service/pkg/util/errorutil"
)

// RequireUser ensures a user account is authenticated.
func RequireUser() fiber.Handler {
	return requireKind(domain.ActorKindUser, "user account required")
}

func requireKind(kind domain.ActorKind, message string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := ActorFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if actor.Kind != kind {
			return apperrors.NewForbidden(message)
		}
		return c.Next()
	}
}
