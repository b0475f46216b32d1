package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/RealCodeCrafter/trt-backend/internal/domain"
)

// RequireRoles allows the request only when the caller's role is listed.
// Roles are matched exactly; no role implies another.
func RequireRoles(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFromContext(c)
		if !ok {
			// Only reachable when the route skipped the access guard.
			return forbidden(reasonMissingIdentity, "no authenticated identity on request")
		}
		if _, exists := allowedSet[identity.Role]; !exists {
			return forbidden(reasonRoleNotAllowed, "insufficient role")
		}
		return c.Next()
	}
}
