package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/suportehub/helpdesk-service/pkg/util"
)

// RequireAuthenticated ensures a caller is logged in.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}

// RequireAgent ensures the caller holds the AGENT role. Role checks are
// enforced here at the route boundary, never left to clients.
func RequireAgent() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !principal.IsAgent() {
			return apperrors.NewForbidden("agent role required")
		}
		return c.Next()
	}
}
