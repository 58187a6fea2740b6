package auth

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Behnamfe76/contacts-directory/internal/domain"
	apperrors "github.com/Behnamfe76/contacts-directory/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	Username  string
	Role      domain.Role
	ExpiresAt time.Time
}

// AuthMiddleware validates bearer tokens from the signed payload alone.
type AuthMiddleware struct {
	tokens *TokenManager
	logger *zap.Logger
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, logger *zap.Logger) *AuthMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthMiddleware{tokens: tokens, logger: logger}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}
	return m.authenticate(c, authHeader)
}

// Optional attaches a principal when a bearer token is sent and lets anonymous
// requests through. A token that is sent but invalid is still rejected.
func (m *AuthMiddleware) Optional(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return c.Next()
	}
	return m.authenticate(c, authHeader)
}

func (m *AuthMiddleware) authenticate(c *fiber.Ctx, authHeader string) error {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	verified, err := m.tokens.Verify(strings.TrimSpace(parts[1]))
	if err != nil {
		m.logger.Debug("token rejected", zap.Error(err), zap.String("path", c.Path()))
		return apperrors.NewUnauthorized("invalid token")
	}

	c.Locals(principalKey, &Principal{
		Username:  verified.Subject,
		Role:      verified.Role,
		ExpiresAt: verified.ExpiresAt,
	})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
