package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Behnamfe76/contacts-directory/internal/api/dto"
	"github.com/Behnamfe76/contacts-directory/internal/service"
	apperrors "github.com/Behnamfe76/contacts-directory/pkg/util/errorutil"
)

// TokenHandler exposes the login endpoint.
type TokenHandler struct {
	auth *service.AuthService
}

// NewTokenHandler constructs handler.
func NewTokenHandler(authService *service.AuthService) *TokenHandler {
	return &TokenHandler{auth: authService}
}

// Issue handles POST /api/token.
func (h *TokenHandler) Issue(c *fiber.Ctx) error {
	var req dto.TokenRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}

	issued, err := h.auth.IssueToken(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if issued == nil {
		return apperrors.NewUnauthorized("invalid username or password")
	}

	return c.JSON(fiber.Map{
		"data": dto.TokenResponse{Token: issued.Token, ExpiresAt: issued.ExpiresAt},
	})
}
