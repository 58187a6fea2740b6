package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Behnamfe76/contacts-directory/internal/domain"
	apperrors "github.com/Behnamfe76/contacts-directory/pkg/util/errorutil"
)

// RequireRole ensures the principal has one of the allowed roles.
// With no roles listed any authenticated caller passes.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.Role]; !exists {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

// RequireAuthenticated ensures a principal was attached by AuthMiddleware.
func RequireAuthenticated() fiber.Handler {
	return RequireRole()
}

// HasRole reports whether role matches any of allowed.
func HasRole(role domain.Role, allowed ...domain.Role) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
