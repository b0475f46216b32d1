package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const identityKey = "auth_identity"

// AccessGuard validates bearer tokens and attaches the caller identity.
type AccessGuard struct {
	tokens *TokenManager
}

// NewAccessGuard constructs middleware.
func NewAccessGuard(tokens *TokenManager) *AccessGuard {
	return &AccessGuard{tokens: tokens}
}

// Handle enforces authentication for protected routes.
func (g *AccessGuard) Handle(c *fiber.Ctx) error {
	authHeader := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if authHeader == "" {
		return unauthorized(&AuthError{Kind: KindMissing})
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return unauthorized(&AuthError{Kind: KindMalformed})
	}

	claims, err := g.tokens.Verify(strings.TrimSpace(parts[1]))
	if err != nil {
		authErr, ok := err.(*AuthError)
		if !ok {
			authErr = &AuthError{Kind: KindMalformed, Err: err}
		}
		return unauthorized(authErr)
	}

	identity := claims.Identity()
	c.Locals(identityKey, &identity)
	return c.Next()
}

// IdentityFromContext retrieves the authenticated caller.
func IdentityFromContext(c *fiber.Ctx) (*Identity, bool) {
	val := c.Locals(identityKey)
	if val == nil {
		return nil, false
	}
	identity, ok := val.(*Identity)
	return identity, ok && identity != nil
}
